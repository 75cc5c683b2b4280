package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiProvider struct {
	client      *genai.Client
	model       string
	JSONMode    bool
	MaxTokens   int32
	Temperature float32
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		model:       model,
		MaxTokens:   200,
		Temperature: 0.8,
	}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	system, rest := splitSystem(messages)

	temp := p.Temperature
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: p.MaxTokens,
		Temperature:     &temp,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if p.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", mapGeminiError(err)
	}
	text := result.Text()
	if text == "" {
		return "", &ErrInvalidResponse{Provider: "gemini", Err: errors.New("empty text")}
	}
	return text, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 &&
		apiErr.Code != http.StatusTooManyRequests {
		return &ErrInvalidResponse{Provider: "gemini", Err: err}
	}
	return &ErrProviderUnavailable{Provider: "gemini", Err: err}
}
