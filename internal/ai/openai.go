package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider talks to OpenAI or any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	name        string
	client      *openai.Client
	model       string
	JSONMode    bool
	MaxTokens   int
	Temperature float32
}

func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", apiKey, baseURL, model, nil)
}

func newOpenAICompatible(name, apiKey, baseURL, model string, rt http.RoundTripper) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s: api key is required", name)
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: 90 * time.Second, Transport: rt}

	return &OpenAIProvider{
		name:        name,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		MaxTokens:   200,
		Temperature: 0.8,
	}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    buildOpenAIMessages(messages),
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
	if p.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ErrInvalidResponse{Provider: p.name, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

func buildOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
		apiErr.HTTPStatusCode != http.StatusTooManyRequests {
		return &ErrInvalidResponse{Provider: p.name, Err: err}
	}
	return &ErrProviderUnavailable{Provider: p.name, Err: err}
}
