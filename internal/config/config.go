package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DBDSN       string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AI provider
	AIProvider        string
	AIModel           string
	OllamaBaseURL     string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterSiteURL string
	OpenRouterAppName string
	AnthropicAPIKey   string
	GeminiAPIKey      string

	GenerationTimeout time.Duration
	MaxOptionLen      int
	SeedOnStart       bool
	WorkerConcurrency int

	// rabbitMQ
	RabbitURL   string
	RabbitQueue string
}

const (
	defaultDSN        = "file:rather.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	defaultRabbitQ    = "generation_jobs"
	defaultTimeoutSec = 10
	defaultOptionLen  = 100
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env ignored err=%v", err)
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = defaultDSN
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	aiProvider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if aiProvider == "" {
		if openAIKey != "" {
			aiProvider = "openai"
		} else {
			aiProvider = "none"
		}
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = defaultRabbitQ
	}

	return Config{
		HTTPAddr:    httpAddr,
		DBDSN:       dsn,
		JWTSecret:   secret,
		TokenTTL:    time.Duration(envInt("TOKEN_TTL_HOURS", 24, 1, 24*365)) * time.Hour,
		CORSOrigins: envList("CORS_ORIGINS"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0, 0, 15),

		AIProvider:        aiProvider,
		AIModel:           os.Getenv("AI_MODEL"),
		OllamaBaseURL:     ollamaBaseURL,
		OpenAIAPIKey:      openAIKey,
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),

		GenerationTimeout: time.Duration(envInt("GENERATION_TIMEOUT_SECONDS", defaultTimeoutSec, 1, 120)) * time.Second,
		MaxOptionLen:      envInt("GENERATION_MAX_OPTION_LEN", defaultOptionLen, 10, 500),
		SeedOnStart:       os.Getenv("SEED_ON_START") != "false",
		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 2, 1, 50),

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,
	}
}

// envInt parses an integer variable, falling back to def when unset or
// unparsable and clamping the result into [min, max].
func envInt(key string, def, min, max int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// envList splits a comma-separated variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
