package generator

import (
	"context"
	"math/rand/v2"
)

const DefaultThemeName = "General"

// StaticStrategy picks a pre-authored pair for the theme, falling back to the
// default theme's pairs for names it does not know.
type StaticStrategy struct {
	table        map[string][]Candidate
	defaultTheme string
	intn         func(n int) int
}

func NewStaticStrategy(table map[string][]Candidate, defaultTheme string) *StaticStrategy {
	return &StaticStrategy{table: table, defaultTheme: defaultTheme, intn: rand.IntN}
}

func (s *StaticStrategy) Name() string { return "static" }

func (s *StaticStrategy) Generate(_ context.Context, theme ThemeInfo) (Candidate, error) {
	pairs := s.table[theme.Name]
	if len(pairs) == 0 {
		pairs = s.table[s.defaultTheme]
	}
	if len(pairs) == 0 {
		return Candidate{}, ErrNoCandidate
	}
	return pairs[s.intn(len(pairs))], nil
}

// DefaultFallback returns a fresh copy of the built-in table.
func DefaultFallback() map[string][]Candidate {
	return map[string][]Candidate{
		"General": {
			{"Have the ability to time travel but only backwards", "Have the ability to time travel but only forwards"},
			{"Be famous for something embarrassing", "Be completely unknown but respected"},
			{"Always tell the truth", "Always have to lie"},
		},
		"Food": {
			{"Only eat your favorite food for the rest of your life", "Never eat your favorite food again"},
			{"Have taste buds in your hands", "Have taste buds in your feet"},
			{"Only eat foods that are blue", "Only eat foods that are round"},
		},
		"Entertainment": {
			{"Live in your favorite movie", "Have your favorite movie character come to real life"},
			{"Only watch comedies for the rest of your life", "Only watch horror movies for the rest of your life"},
			{"Be able to pause real life", "Be able to rewind real life"},
		},
		"Travel": {
			{"Visit every country but only for one day each", "Live in one foreign country for your entire life"},
			{"Travel only by walking", "Travel only by flying"},
			{"Have free flights anywhere but horrible jet lag", "Never have jet lag but pay full price"},
		},
		"Career": {
			{"Have your dream job but low pay", "Have a boring job but amazing pay"},
			{"Work 4 days a week but longer hours", "Work 6 days a week but shorter hours"},
			{"Be your own boss but work alone", "Have a great team but strict management"},
		},
		"Superpowers": {
			{"Read minds but can't turn it off", "Be invisible but only when no one is looking"},
			{"Fly but only 3 feet off the ground", "Run at super speed but can't stop quickly"},
			{"Control fire but be vulnerable to water", "Control water but be vulnerable to electricity"},
		},
		"Technology": {
			{"Have the latest tech but it breaks every month", "Have old reliable tech that never breaks"},
			{"Live without internet but have all books", "Live without books but have unlimited internet"},
			{"Have a phone that never dies but is super slow", "Have a super fast phone that dies every hour"},
		},
		"Lifestyle": {
			{"Wake up at 5 AM every day but feel energized", "Sleep until noon but always feel tired"},
			{"Live in a mansion but never leave", "Travel the world but never have a permanent home"},
			{"Have unlimited money but no friends", "Have amazing friends but always struggle financially"},
		},
	}
}
