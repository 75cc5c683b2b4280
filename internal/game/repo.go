package game

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// maxRowID is the largest id the SQL drivers accept as a parameter. Larger
// ids cannot name a row, so lookups report them as not found.
const maxRowID = math.MaxInt64

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// randomOrder is the dialect's uniform-random ORDER BY expression.
func randomOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}

func (r *Repo) GetTheme(ctx context.Context, id uint64) (*Theme, error) {
	if id > maxRowID {
		return nil, gorm.ErrRecordNotFound
	}
	var t Theme
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) GetQuestion(ctx context.Context, id uint64) (*Question, error) {
	if id > maxRowID {
		return nil, gorm.ErrRecordNotFound
	}
	var q Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// PickAndUse selects one question uniformly at random, optionally restricted
// to a theme, and bumps its usage counter in the same transaction. The
// increment is a single UPDATE so concurrent picks of one row never lose a
// count. Returns gorm.ErrRecordNotFound when nothing matches.
func (r *Repo) PickAndUse(ctx context.Context, themeID *uint64) (*Question, error) {
	var picked Question
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&Question{})
		if themeID != nil {
			q = q.Where("theme_id = ?", *themeID)
		}
		if err := q.Order(randomOrder(tx)).Limit(1).Take(&picked).Error; err != nil {
			return err
		}
		if err := incrementUsage(tx, picked.ID); err != nil {
			return err
		}
		return tx.First(&picked, picked.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &picked, nil
}

func incrementUsage(tx *gorm.DB, questionID uint64) error {
	res := tx.Model(&Question{}).
		Where("id = ?", questionID).
		UpdateColumn("times_used", gorm.Expr("times_used + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateQuestion inserts q. When used is set the new row is counted as
// served once, atomically with the insert.
func (r *Repo) CreateQuestion(ctx context.Context, q *Question, used bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		if !used {
			return nil
		}
		if err := incrementUsage(tx, q.ID); err != nil {
			return err
		}
		return tx.First(q, q.ID).Error
	})
}

func (r *Repo) InsertResponse(ctx context.Context, resp *Response) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

type optionCount struct {
	SelectedOption string
	N              int64
}

// CountResponses groups the responses of one question by selected option.
func (r *Repo) CountResponses(ctx context.Context, questionID uint64) (map[string]int64, error) {
	var rows []optionCount
	if err := r.db.WithContext(ctx).Model(&Response{}).
		Select("selected_option, COUNT(*) AS n").
		Where("question_id = ?", questionID).
		Group("selected_option").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.SelectedOption] = row.N
	}
	return out, nil
}

// ListVisibleThemes returns system themes first, then by name ignoring case.
// A nil viewer sees system themes only.
func (r *Repo) ListVisibleThemes(ctx context.Context, viewer *uint64) ([]Theme, error) {
	q := r.db.WithContext(ctx).Model(&Theme{})
	if viewer == nil {
		q = q.Where("created_by IS NULL")
	} else {
		q = q.Where("created_by IS NULL OR created_by = ? OR is_public = ?", *viewer, true)
	}

	var themes []Theme
	if err := q.Order("CASE WHEN created_by IS NULL THEN 0 ELSE 1 END").
		Order("LOWER(name) ASC").
		Order("name ASC").
		Order("id ASC").
		Find(&themes).Error; err != nil {
		return nil, err
	}
	return themes, nil
}

// FindTheme looks a theme up by name within an owner scope (nil = system).
func (r *Repo) FindTheme(ctx context.Context, name string, owner *uint64) (*Theme, error) {
	q := r.db.WithContext(ctx).Where("name = ?", name)
	if owner == nil {
		q = q.Where("created_by IS NULL")
	} else {
		q = q.Where("created_by = ?", *owner)
	}
	var t Theme
	if err := q.First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) CreateTheme(ctx context.Context, t *Theme) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Job CRUD
func (r *Repo) CreateJob(ctx context.Context, job *GenerationJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*GenerationJob, error) {
	var j GenerationJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) GetJobByUserAndIdempotencyKey(ctx context.Context, userID uint64, key string) (*GenerationJob, error) {
	var j GenerationJob
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJobOrGetExisting creates job, or returns the row already holding
// (user_id, idempotency_key). The bool reports whether a new row was written.
func (r *Repo) CreateJobOrGetExisting(ctx context.Context, job *GenerationJob) (*GenerationJob, bool, error) {
	if job.IdempotencyKey == nil || *job.IdempotencyKey == "" {
		job.IdempotencyKey = nil
		if err := r.CreateJob(ctx, job); err != nil {
			return nil, false, err
		}
		return job, true, nil
	}

	err := r.CreateJob(ctx, job)
	if err == nil {
		return job, true, nil
	}

	existing, getErr := r.GetJobByUserAndIdempotencyKey(ctx, job.UserID, *job.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}

// ClaimJob moves a job to running and refreshes its updated_at. Queued jobs
// are always claimable; running jobs only once their last update is older
// than staleBefore, which recovers jobs whose worker died mid-run. It
// reports false when nothing was claimed.
func (r *Repo) ClaimJob(ctx context.Context, id string, staleBefore time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&GenerationJob{}).
		Where("id = ? AND (status = ? OR (status = ? AND updated_at < ?))", id, JobQueued, JobRunning, staleBefore).
		Update("status", JobRunning)
	return res.RowsAffected > 0, res.Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, questionID uint64) error {
	return r.db.WithContext(ctx).Model(&GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":             JobSucceeded,
			"result_question_id": questionID,
			"error":              nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":             JobFailed,
			"error":              errMsg,
			"result_question_id": nil,
		}).Error
}
