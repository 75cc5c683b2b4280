package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/suPer8Hu/wyr-platform/internal/common"
	"gorm.io/gorm"
)

const maxIdempotencyKeyLen = 128

// jobLease is how long a running job may go without an update before another
// delivery may take it over. It is well above the longest generation timeout.
const jobLease = 5 * time.Minute

// CreateGenerationJob queues a force-generation for themeID. With an
// idempotency key, a repeat request returns the job created the first time
// and created is false.
func (s *Service) CreateGenerationJob(ctx context.Context, userID, themeID uint64, idempotencyKey string) (job *GenerationJob, created bool, err error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if len(idempotencyKey) > maxIdempotencyKeyLen {
		return nil, false, fmt.Errorf("%w: idempotency key too long", ErrValidation)
	}
	if _, err := s.getTheme(ctx, themeID); err != nil {
		return nil, false, err
	}

	jobID, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}
	j := &GenerationJob{
		ID:      jobID,
		UserID:  userID,
		ThemeID: themeID,
		Status:  JobQueued,
	}
	if idempotencyKey != "" {
		j.IdempotencyKey = &idempotencyKey
	}
	return s.repo.CreateJobOrGetExisting(ctx, j)
}

// GetJob returns a job owned by userID; other users' jobs read as missing.
func (s *Service) GetJob(ctx context.Context, userID uint64, jobID string) (*GenerationJob, error) {
	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if j.UserID != userID {
		return nil, ErrJobNotFound
	}
	return j, nil
}

// FailJob records a failure outside the worker, e.g. when enqueueing fails.
func (s *Service) FailJob(ctx context.Context, jobID string, reason string) error {
	return s.repo.MarkJobFailed(ctx, jobID, reason)
}

// RunGenerationJob executes a queued job: it generates and stores a question
// for the job's theme and records the outcome on the job row. A redelivered
// message for a finished or freshly running job is skipped. The outcome is
// written even if ctx is cancelled mid-run, so a job never stays running
// because its worker was shut down.
func (s *Service) RunGenerationJob(ctx context.Context, jobID string) error {
	claimed, err := s.repo.ClaimJob(ctx, jobID, s.now().Add(-jobLease))
	if err != nil {
		return err
	}
	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return err
	}
	if !claimed {
		return nil
	}

	q, genErr := s.GenerateForTheme(ctx, j.ThemeID)

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if genErr != nil {
		if markErr := s.repo.MarkJobFailed(wctx, jobID, genErr.Error()); markErr != nil {
			return errors.Join(genErr, markErr)
		}
		return genErr
	}
	return s.repo.MarkJobSucceeded(wctx, jobID, q.ID)
}
