package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_DSN", "HTTP_ADDR", "AI_PROVIDER", "OPENAI_API_KEY", "GENERATION_TIMEOUT_SECONDS", "GENERATION_MAX_OPTION_LEN", "RABBIT_QUEUE", "SEED_ON_START", "WORKER_CONCURRENCY", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, defaultDSN, cfg.DBDSN)
	assert.Equal(t, "none", cfg.AIProvider)
	assert.Equal(t, 10*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 100, cfg.MaxOptionLen)
	assert.Equal(t, "generation_jobs", cfg.RabbitQueue)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.SeedOnStart)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "3")
	t.Setenv("WORKER_CONCURRENCY", "500")
	t.Setenv("GENERATION_MAX_OPTION_LEN", "junk")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, ,https://wyr.example")
	cfg := Load()

	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, 3*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 50, cfg.WorkerConcurrency)
	assert.Equal(t, 100, cfg.MaxOptionLen)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, []string{"http://localhost:3000", "https://wyr.example"}, cfg.CORSOrigins)

	t.Setenv("AI_PROVIDER", " Ollama ")
	assert.Equal(t, "ollama", Load().AIProvider)
}
