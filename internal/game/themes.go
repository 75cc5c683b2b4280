package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// ListThemes returns the themes viewer may see. Anonymous callers (nil) get
// system themes only; a signed-in user also sees their own themes and other
// users' public ones.
func (s *Service) ListThemes(ctx context.Context, viewer *uint64) ([]Theme, error) {
	return s.repo.ListVisibleThemes(ctx, viewer)
}

func (s *Service) CreateTheme(ctx context.Context, owner uint64, name, description string, isPublic bool) (*Theme, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, fmt.Errorf("%w: theme name must be 2-50 characters", ErrValidation)
	}
	if utf8.RuneCountInString(description) > 200 {
		return nil, fmt.Errorf("%w: description must be at most 200 characters", ErrValidation)
	}

	_, err := s.repo.FindTheme(ctx, name, &owner)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	t := &Theme{
		Name:        name,
		Description: description,
		CreatedBy:   &owner,
		IsPublic:    isPublic,
	}
	if err := s.repo.CreateTheme(ctx, t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return t, nil
}
