package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/wyr-platform/internal/ai"
)

type fakeProvider struct {
	reply string
	err   error
	delay time.Duration
	calls int
	last  []ai.Message
}

func (p *fakeProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	p.calls++
	p.last = append([]ai.Message(nil), messages...)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.reply, p.err
}

var food = ThemeInfo{Name: "Food", Description: "Food and dining related choices"}

func inTable(t *testing.T, theme string, c Candidate) {
	t.Helper()
	assert.Contains(t, DefaultFallback()[theme], c)
}

func TestPlan(t *testing.T) {
	static := NewStaticStrategy(DefaultFallback(), DefaultThemeName)
	assert.Equal(t, []Strategy{static}, plan(nil, static))

	remote, err := NewRemoteStrategy("fake", &fakeProvider{}, time.Second, 100)
	require.NoError(t, err)
	assert.Equal(t, []Strategy{remote, static}, plan(remote, static))
}

func TestGenerate_StaticOnly(t *testing.T) {
	g, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, []string{"static"}, g.Tiers())

	c, err := g.Generate(context.Background(), food)
	require.NoError(t, err)
	inTable(t, "Food", c)
}

func TestGenerate_UnknownThemeUsesDefault(t *testing.T) {
	g, err := New(Config{})
	require.NoError(t, err)

	c, err := g.Generate(context.Background(), ThemeInfo{Name: "Pirates"})
	require.NoError(t, err)
	inTable(t, DefaultThemeName, c)
}

func TestGenerate_EmptyTable(t *testing.T) {
	g, err := New(Config{Fallback: map[string][]Candidate{}})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), food)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestGenerate_RemoteSuccess(t *testing.T) {
	p := &fakeProvider{reply: `{"option_a": "Eat only soup", "option_b": "Eat only salad"}`}
	g, err := New(Config{Provider: p, ProviderName: "fake"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fake", "static"}, g.Tiers())

	c, err := g.Generate(context.Background(), food)
	require.NoError(t, err)
	assert.Equal(t, Candidate{OptionA: "Eat only soup", OptionB: "Eat only salad"}, c)

	require.Len(t, p.last, 2)
	assert.Equal(t, ai.RoleSystem, p.last[0].Role)
	assert.Contains(t, p.last[1].Content, "Food")
	assert.Contains(t, p.last[1].Content, "Food and dining related choices")
}

func TestGenerate_RemoteCodeFence(t *testing.T) {
	p := &fakeProvider{reply: "```json\n{\"option_a\": \"Swim\", \"option_b\": \"Climb\"}\n```"}
	g, err := New(Config{Provider: p})
	require.NoError(t, err)

	c, err := g.Generate(context.Background(), food)
	require.NoError(t, err)
	assert.Equal(t, Candidate{OptionA: "Swim", OptionB: "Climb"}, c)
}

func TestGenerate_RemoteFailuresFallBack(t *testing.T) {
	cases := []struct {
		name string
		p    *fakeProvider
	}{
		{"unavailable", &fakeProvider{err: &ai.ErrProviderUnavailable{Provider: "fake", Err: errors.New("dial tcp")}}},
		{"not json", &fakeProvider{reply: "Would you rather swim or climb?"}},
		{"missing field", &fakeProvider{reply: `{"option_a": "Swim"}`}},
		{"empty option", &fakeProvider{reply: `{"option_a": "", "option_b": "Climb"}`}},
		{"blank option", &fakeProvider{reply: `{"option_a": "   ", "option_b": "Climb"}`}},
		{"wrong type", &fakeProvider{reply: `{"option_a": 1, "option_b": "Climb"}`}},
		{"too long", &fakeProvider{reply: `{"option_a": "` + strings.Repeat("x", 101) + `", "option_b": "Climb"}`}},
		{"identical", &fakeProvider{reply: `{"option_a": "Swim", "option_b": "swim"}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := New(Config{Provider: tc.p, MaxOptionLen: 100})
			require.NoError(t, err)

			c, err := g.Generate(context.Background(), food)
			require.NoError(t, err)
			assert.Equal(t, 1, tc.p.calls)
			inTable(t, "Food", c)
		})
	}
}

func TestGenerate_RemoteTimeoutFallsBack(t *testing.T) {
	p := &fakeProvider{reply: `{"option_a": "Swim", "option_b": "Climb"}`, delay: 500 * time.Millisecond}
	g, err := New(Config{Provider: p, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	c, err := g.Generate(context.Background(), food)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	inTable(t, "Food", c)
}

func TestRemoteStrategy_TypedErrors(t *testing.T) {
	r, err := NewRemoteStrategy("fake", &fakeProvider{reply: "nope"}, time.Second, 100)
	require.NoError(t, err)

	_, err = r.Generate(context.Background(), food)
	var invalid *ai.ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid))
}

func TestStaticStrategy_UsesInjectedPick(t *testing.T) {
	s := NewStaticStrategy(DefaultFallback(), DefaultThemeName)
	s.intn = func(n int) int { return n - 1 }

	c, err := s.Generate(context.Background(), ThemeInfo{Name: "Travel"})
	require.NoError(t, err)
	assert.Equal(t, DefaultFallback()["Travel"][2], c)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1} "))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
}
