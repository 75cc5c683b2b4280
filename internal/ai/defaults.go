package ai

import "context"

// Settings carries the credentials and endpoints for the built-in providers.
type Settings struct {
	OllamaBaseURL     string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterSiteURL string
	OpenRouterAppName string
	AnthropicAPIKey   string
	GeminiAPIKey      string
}

// RegisterDefaults registers every built-in provider in JSON mode. Providers
// that need a key fail at Get time when the key is missing.
func RegisterDefaults(reg *Registry, s Settings) {
	reg.Register("ollama", func(ctx context.Context, model string) (Provider, error) {
		p := NewOllamaProvider(s.OllamaBaseURL, model)
		p.Format = "json"
		return p, nil
	})
	reg.Register("openai", func(ctx context.Context, model string) (Provider, error) {
		p, err := NewOpenAIProvider(s.OpenAIAPIKey, s.OpenAIBaseURL, model)
		if err != nil {
			return nil, err
		}
		p.JSONMode = true
		return p, nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (Provider, error) {
		p, err := NewOpenRouterProvider(s.OpenRouterBaseURL, s.OpenRouterAPIKey, model, s.OpenRouterSiteURL, s.OpenRouterAppName)
		if err != nil {
			return nil, err
		}
		p.JSONMode = true
		return p, nil
	})
	reg.Register("anthropic", func(ctx context.Context, model string) (Provider, error) {
		p, err := NewAnthropicProvider(s.AnthropicAPIKey, "", model)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	reg.Register("gemini", func(ctx context.Context, model string) (Provider, error) {
		p, err := NewGeminiProvider(ctx, s.GeminiAPIKey, model)
		if err != nil {
			return nil, err
		}
		p.JSONMode = true
		return p, nil
	})
}
