package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suPer8Hu/wyr-platform/internal/generator"
	"gorm.io/gorm"
)

// CandidateSource is the generator as seen by the resolver.
type CandidateSource interface {
	Generate(ctx context.Context, theme generator.ThemeInfo) (generator.Candidate, error)
}

type Service struct {
	repo         *Repo
	gen          CandidateSource
	newSessionID func() string
	now          func() time.Time
}

func NewService(repo *Repo, gen CandidateSource) *Service {
	return &Service{repo: repo, gen: gen, newSessionID: uuid.NewString, now: time.Now}
}

func (s *Service) getTheme(ctx context.Context, id uint64) (*Theme, error) {
	t, err := s.repo.GetTheme(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, err
	}
	return t, nil
}

func view(q *Question, t *Theme) *QuestionView {
	return &QuestionView{Question: *q, ThemeName: t.Name, ThemeDescription: t.Description}
}

// ResolveForTheme serves a random stored question of the theme, counting the
// use. A theme with no questions gets a freshly generated one, persisted and
// counted as served once.
func (s *Service) ResolveForTheme(ctx context.Context, themeID uint64) (*QuestionView, error) {
	theme, err := s.getTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}

	q, err := s.repo.PickAndUse(ctx, &theme.ID)
	if err == nil {
		return view(q, theme), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	q, err = s.generateAndStore(ctx, theme, true)
	if err != nil {
		return nil, err
	}
	log.Printf("[game] generated on miss theme_id=%d question_id=%d", theme.ID, q.ID)
	return view(q, theme), nil
}

// ResolveRandom serves a random question from any theme. It never generates.
func (s *Service) ResolveRandom(ctx context.Context) (*QuestionView, error) {
	q, err := s.repo.PickAndUse(ctx, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoQuestionsAvailable
		}
		return nil, err
	}
	theme, err := s.repo.GetTheme(ctx, q.ThemeID)
	if err != nil {
		return nil, err
	}
	return view(q, theme), nil
}

// GenerateForTheme always generates and stores a new question. The result
// has not been served, so its usage count stays at zero.
func (s *Service) GenerateForTheme(ctx context.Context, themeID uint64) (*Question, error) {
	theme, err := s.getTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	return s.generateAndStore(ctx, theme, false)
}

func (s *Service) generateAndStore(ctx context.Context, theme *Theme, used bool) (*Question, error) {
	c, err := s.gen.Generate(ctx, generator.ThemeInfo{Name: theme.Name, Description: theme.Description})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	q := &Question{
		ThemeID:     theme.ID,
		OptionA:     c.OptionA,
		OptionB:     c.OptionB,
		AIGenerated: true,
	}
	if err := s.repo.CreateQuestion(ctx, q, used); err != nil {
		return nil, err
	}
	return q, nil
}

// RecordResponse appends a choice and returns the session id it was filed
// under, minting one when the caller sent none.
func (s *Service) RecordResponse(ctx context.Context, questionID uint64, selected, sessionID string, userID *uint64) (string, error) {
	if selected != OptionA && selected != OptionB {
		return "", ErrInvalidSelection
	}
	if _, err := s.repo.GetQuestion(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrQuestionNotFound
		}
		return "", err
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = s.newSessionID()
	}
	if len(sessionID) > 64 {
		return "", fmt.Errorf("%w: session_id too long", ErrValidation)
	}

	resp := &Response{
		QuestionID:     questionID,
		SelectedOption: selected,
		SessionID:      sessionID,
		UserID:         userID,
	}
	if err := s.repo.InsertResponse(ctx, resp); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Stats tallies the responses of one question. Stored values other than A
// and B are left out of the total.
func (s *Service) Stats(ctx context.Context, questionID uint64) (*Stats, error) {
	if _, err := s.repo.GetQuestion(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	counts, err := s.repo.CountResponses(ctx, questionID)
	if err != nil {
		return nil, err
	}
	st := &Stats{
		QuestionID: questionID,
		CountA:     counts[OptionA],
		CountB:     counts[OptionB],
	}
	st.Total = st.CountA + st.CountB
	return st, nil
}
