package generator

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/suPer8Hu/wyr-platform/internal/ai"
)

// ErrNoCandidate is returned when every tier came back empty.
var ErrNoCandidate = errors.New("generator: no candidate available")

// Candidate is a generated pair of options.
type Candidate struct {
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
}

// ThemeInfo is the theme metadata a strategy generates for.
type ThemeInfo struct {
	Name        string
	Description string
}

// Strategy produces one candidate for a theme.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, theme ThemeInfo) (Candidate, error)
}

// Config is everything the generator needs; it is not re-read after New.
type Config struct {
	// Provider backs the remote tier. Nil leaves only the static table.
	Provider     ai.Provider
	ProviderName string
	Timeout      time.Duration
	MaxOptionLen int

	// Fallback overrides the built-in table when non-nil.
	Fallback     map[string][]Candidate
	DefaultTheme string
}

type Generator struct {
	tiers []Strategy
}

func New(cfg Config) (*Generator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxOptionLen <= 0 {
		cfg.MaxOptionLen = 100
	}
	if cfg.Fallback == nil {
		cfg.Fallback = DefaultFallback()
	}
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = DefaultThemeName
	}

	var remote Strategy
	if cfg.Provider != nil {
		r, err := NewRemoteStrategy(cfg.ProviderName, cfg.Provider, cfg.Timeout, cfg.MaxOptionLen)
		if err != nil {
			return nil, err
		}
		remote = r
	}
	static := NewStaticStrategy(cfg.Fallback, cfg.DefaultTheme)
	return &Generator{tiers: plan(remote, static)}, nil
}

// plan orders the tiers: remote first when one is configured, the static
// table always last.
func plan(remote, static Strategy) []Strategy {
	if remote == nil {
		return []Strategy{static}
	}
	return []Strategy{remote, static}
}

// Tiers reports the strategy names in the order they are tried.
func (g *Generator) Tiers() []string {
	out := make([]string, 0, len(g.tiers))
	for _, s := range g.tiers {
		out = append(out, s.Name())
	}
	return out
}

// Generate walks the tiers in order. Failures of earlier tiers are logged and
// absorbed; only an exhausted chain yields ErrNoCandidate.
func (g *Generator) Generate(ctx context.Context, theme ThemeInfo) (Candidate, error) {
	for _, s := range g.tiers {
		start := time.Now()
		c, err := s.Generate(ctx, theme)
		if err == nil {
			return c, nil
		}
		log.Printf("[generator] tier failed tier=%s theme=%q cost=%s err=%v", s.Name(), theme.Name, time.Since(start), err)
	}
	return Candidate{}, ErrNoCandidate
}
