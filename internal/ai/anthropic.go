package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

type AnthropicProvider struct {
	client      *anthropic.Client
	model       string
	MaxTokens   int64
	Temperature float64
}

func NewAnthropicProvider(apiKey, baseURL, model string) (*AnthropicProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client:      &client,
		model:       model,
		MaxTokens:   200,
		Temperature: 0.8,
	}, nil
}

func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	system, rest := splitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.MaxTokens,
		Messages:  buildAnthropicMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if p.Temperature > 0 {
		params.Temperature = anthropic.Float(p.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", mapAnthropicError(err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &ErrInvalidResponse{Provider: "anthropic", Err: errors.New("no text content")}
}

func buildAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		role := anthropic.MessageParamRoleUser
		if m.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		out = append(out, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
		})
	}
	return out
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
		apiErr.StatusCode != http.StatusTooManyRequests {
		return &ErrInvalidResponse{Provider: "anthropic", Err: err}
	}
	return &ErrProviderUnavailable{Provider: "anthropic", Err: err}
}
