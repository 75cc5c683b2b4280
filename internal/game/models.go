package game

import "time"

const (
	OptionA = "A"
	OptionB = "B"
)

// Theme is a question category. CreatedBy is nil for system themes.
type Theme struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex:uniq_theme_owner_name,priority:2" json:"name"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedBy   *uint64   `gorm:"uniqueIndex:uniq_theme_owner_name,priority:1" json:"created_by"`
	IsPublic    bool      `gorm:"not null" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Theme) TableName() string { return "themes" }

type Question struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ThemeID     uint64    `gorm:"not null;index" json:"theme_id"`
	OptionA     string    `gorm:"type:text;not null" json:"option_a"`
	OptionB     string    `gorm:"type:text;not null" json:"option_b"`
	AIGenerated bool      `gorm:"not null" json:"ai_generated"`
	TimesUsed   uint64    `gorm:"not null" json:"times_used"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Question) TableName() string { return "questions" }

// QuestionView is a question joined with its theme, as served to clients.
type QuestionView struct {
	Question
	ThemeName        string `json:"theme_name"`
	ThemeDescription string `json:"theme_description"`
}

// Response is one recorded choice. Rows are append-only.
type Response struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID     uint64    `gorm:"not null;index" json:"question_id"`
	SelectedOption string    `gorm:"type:varchar(1);not null" json:"selected_option"`
	SessionID      string    `gorm:"type:varchar(64);index" json:"session_id"`
	UserID         *uint64   `gorm:"index" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Response) TableName() string { return "user_responses" }

type Stats struct {
	QuestionID uint64 `json:"question_id"`
	Total      int64  `json:"total_responses"`
	CountA     int64  `json:"option_a_count"`
	CountB     int64  `json:"option_b_count"`
}

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// GenerationJob is a queued force-generation request.
type GenerationJob struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID

	UserID  uint64 `gorm:"not null;index:uniq_job_user_idempo,unique,priority:1" json:"-"`
	ThemeID uint64 `gorm:"not null;index" json:"theme_id"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_job_user_idempo,unique,priority:2" json:"-"`

	Status JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when succeeded
	ResultQuestionID *uint64 `gorm:"index" json:"result_question_id"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GenerationJob) TableName() string { return "generation_jobs" }

// Models lists the tables owned by this package, for db.Migrate.
func Models() []any {
	return []any{&Theme{}, &Question{}, &Response{}, &GenerationJob{}}
}
