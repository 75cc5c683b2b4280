package generator

import (
	"context"
	"log"

	"github.com/suPer8Hu/wyr-platform/internal/ai"
	"github.com/suPer8Hu/wyr-platform/internal/config"
)

// NewFromConfig builds a generator for the configured provider. A provider
// that cannot be constructed is logged and the generator runs on the static
// table alone.
func NewFromConfig(ctx context.Context, cfg config.Config) (*Generator, error) {
	gc := Config{
		Timeout:      cfg.GenerationTimeout,
		MaxOptionLen: cfg.MaxOptionLen,
	}

	if cfg.AIProvider != "" && cfg.AIProvider != "none" {
		reg := ai.NewRegistry()
		ai.RegisterDefaults(reg, ai.Settings{
			OllamaBaseURL:     cfg.OllamaBaseURL,
			OpenAIAPIKey:      cfg.OpenAIAPIKey,
			OpenAIBaseURL:     cfg.OpenAIBaseURL,
			OpenRouterBaseURL: cfg.OpenRouterBaseURL,
			OpenRouterAPIKey:  cfg.OpenRouterAPIKey,
			OpenRouterSiteURL: cfg.OpenRouterSiteURL,
			OpenRouterAppName: cfg.OpenRouterAppName,
			AnthropicAPIKey:   cfg.AnthropicAPIKey,
			GeminiAPIKey:      cfg.GeminiAPIKey,
		})
		p, err := reg.Get(ctx, cfg.AIProvider, cfg.AIModel)
		if err != nil {
			log.Printf("[generator] remote tier disabled provider=%s err=%v", cfg.AIProvider, err)
		} else {
			gc.Provider = p
			gc.ProviderName = cfg.AIProvider
		}
	}

	g, err := New(gc)
	if err != nil {
		return nil, err
	}
	log.Printf("[generator] ready tiers=%v timeout=%s", g.Tiers(), gc.Timeout)
	return g, nil
}
