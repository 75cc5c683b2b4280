package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/suPer8Hu/wyr-platform/internal/ai"
)

const systemPrompt = "You are a creative game designer specializing in 'Would You Rather' questions. Always respond with valid JSON only."

const userPromptTmpl = `Generate a creative and engaging "Would You Rather" question for the theme: %s
Theme description: %s

Rules:
1. Create two compelling options that are roughly equally appealing or difficult to choose
2. Make sure both options relate to the theme
3. Keep each option concise but descriptive (max %d characters each)
4. Make it thought-provoking and fun
5. Avoid overly dark or inappropriate content

Respond with ONLY a JSON object in this exact format:
{"option_a": "Your first option here", "option_b": "Your second option here"}`

// RemoteStrategy asks an LLM for a pair and validates the structured reply.
type RemoteStrategy struct {
	name         string
	provider     ai.Provider
	timeout      time.Duration
	maxOptionLen int
	schema       *jsonschema.Schema
}

func NewRemoteStrategy(name string, provider ai.Provider, timeout time.Duration, maxOptionLen int) (*RemoteStrategy, error) {
	if provider == nil {
		return nil, errors.New("generator: remote strategy needs a provider")
	}
	if name == "" {
		name = "remote"
	}
	schema, err := compileCandidateSchema(maxOptionLen)
	if err != nil {
		return nil, err
	}
	return &RemoteStrategy{
		name:         name,
		provider:     provider,
		timeout:      timeout,
		maxOptionLen: maxOptionLen,
		schema:       schema,
	}, nil
}

func (r *RemoteStrategy) Name() string { return r.name }

func (r *RemoteStrategy) Generate(ctx context.Context, theme ThemeInfo) (Candidate, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msgs := []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf(userPromptTmpl, theme.Name, theme.Description, r.maxOptionLen)},
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := r.provider.Chat(cctx, msgs)
		done <- result{text, err}
	}()

	// Providers that ignore ctx must not hold the caller past the deadline.
	var res result
	select {
	case res = <-done:
	case <-cctx.Done():
		return Candidate{}, &ai.ErrProviderUnavailable{Provider: r.name, Err: cctx.Err()}
	}
	if res.err != nil {
		return Candidate{}, res.err
	}
	return r.parse(res.text)
}

func (r *RemoteStrategy) parse(text string) (Candidate, error) {
	raw := stripCodeFence(text)

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Candidate{}, &ai.ErrInvalidResponse{Provider: r.name, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := r.schema.Validate(doc); err != nil {
		return Candidate{}, &ai.ErrInvalidResponse{Provider: r.name, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var c Candidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Candidate{}, &ai.ErrInvalidResponse{Provider: r.name, Err: err}
	}
	c.OptionA = strings.TrimSpace(c.OptionA)
	c.OptionB = strings.TrimSpace(c.OptionB)
	if c.OptionA == "" || c.OptionB == "" {
		return Candidate{}, &ai.ErrInvalidResponse{Provider: r.name, Err: errors.New("blank option")}
	}
	if strings.EqualFold(c.OptionA, c.OptionB) {
		return Candidate{}, &ai.ErrInvalidResponse{Provider: r.name, Err: errors.New("options are identical")}
	}
	return c, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func compileCandidateSchema(maxLen int) (*jsonschema.Schema, error) {
	option := map[string]any{"type": "string", "minLength": 1, "maxLength": maxLen}
	def := map[string]any{
		"type":     "object",
		"required": []any{"option_a", "option_b"},
		"properties": map[string]any{
			"option_a": option,
			"option_b": option,
		},
	}

	// The compiler wants decoded JSON values, not Go maps with int leaves.
	b, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://candidate-%d.json", maxLen)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return c.Compile(url)
}
