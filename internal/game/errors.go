package game

import "errors"

var (
	ErrThemeNotFound        = errors.New("theme not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrGenerationFailed     = errors.New("failed to generate question")
	ErrInvalidSelection     = errors.New("selected option must be A or B")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("theme name already exists")
	ErrJobNotFound          = errors.New("job not found")
)
