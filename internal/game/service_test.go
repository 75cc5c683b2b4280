package game

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/wyr-platform/internal/db"
	"github.com/suPer8Hu/wyr-platform/internal/generator"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	err    error
	during func()
}

func (g *fakeGenerator) Generate(_ context.Context, theme generator.ThemeInfo) (generator.Candidate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.during != nil {
		g.during()
	}
	if g.err != nil {
		return generator.Candidate{}, g.err
	}
	return generator.Candidate{OptionA: theme.Name + " option A", OptionB: theme.Name + " option B"}, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, Models()...))
	return gdb
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeGenerator) {
	t.Helper()
	gdb := openTestDB(t)
	gen := &fakeGenerator{}
	return NewService(NewRepo(gdb), gen), gdb, gen
}

func mustTheme(t *testing.T, gdb *gorm.DB, name string, owner *uint64, public bool) *Theme {
	t.Helper()
	th := &Theme{Name: name, Description: name + " things", CreatedBy: owner, IsPublic: public}
	require.NoError(t, gdb.Create(th).Error)
	return th
}

func mustQuestion(t *testing.T, gdb *gorm.DB, themeID uint64, a, b string) *Question {
	t.Helper()
	q := &Question{ThemeID: themeID, OptionA: a, OptionB: b}
	require.NoError(t, gdb.Create(q).Error)
	return q
}

func countQuestions(t *testing.T, gdb *gorm.DB, themeID uint64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&Question{}).Where("theme_id = ?", themeID).Count(&n).Error)
	return n
}

func TestResolveForTheme_StoredQuestionNoGeneration(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)

	food := mustTheme(t, gdb, "Food", nil, true)
	other := mustTheme(t, gdb, "Travel", nil, true)
	mustQuestion(t, gdb, food.ID, "Soup", "Salad")
	mustQuestion(t, gdb, food.ID, "Tea", "Coffee")
	mustQuestion(t, gdb, other.ID, "Train", "Plane")

	for i := 0; i < 20; i++ {
		q, err := svc.ResolveForTheme(ctx, food.ID)
		require.NoError(t, err)
		assert.Equal(t, food.ID, q.ThemeID)
		assert.Equal(t, "Food", q.ThemeName)
		assert.Equal(t, "Food things", q.ThemeDescription)
		assert.False(t, q.AIGenerated)
	}
	assert.Zero(t, gen.calls)
	assert.EqualValues(t, 2, countQuestions(t, gdb, food.ID))
}

func TestResolveForTheme_MissGeneratesOnce(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)
	th := mustTheme(t, gdb, "Career", nil, true)

	q, err := svc.ResolveForTheme(ctx, th.ID)
	require.NoError(t, err)
	assert.NotZero(t, q.ID)
	assert.True(t, q.AIGenerated)
	assert.EqualValues(t, 1, q.TimesUsed)
	assert.Equal(t, "Career option A", q.OptionA)
	assert.Equal(t, 1, gen.calls)
	assert.EqualValues(t, 1, countQuestions(t, gdb, th.ID))

	// The generated question now satisfies later resolutions.
	q2, err := svc.ResolveForTheme(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, q2.ID)
	assert.EqualValues(t, 2, q2.TimesUsed)
	assert.Equal(t, 1, gen.calls)
}

func TestResolveForTheme_WithStaticGenerator(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	g, err := generator.New(generator.Config{})
	require.NoError(t, err)
	svc := NewService(NewRepo(gdb), g)

	th := mustTheme(t, gdb, "Technology", nil, true)
	q, err := svc.ResolveForTheme(ctx, th.ID)
	require.NoError(t, err)
	assert.Contains(t, generator.DefaultFallback()["Technology"],
		generator.Candidate{OptionA: q.OptionA, OptionB: q.OptionB})
	assert.EqualValues(t, 1, countQuestions(t, gdb, th.ID))
}

func TestResolveForTheme_Errors(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)

	_, err := svc.ResolveForTheme(ctx, 999)
	assert.ErrorIs(t, err, ErrThemeNotFound)
	assert.Zero(t, gen.calls)

	th := mustTheme(t, gdb, "Food", nil, true)
	gen.err = generator.ErrNoCandidate
	_, err = svc.ResolveForTheme(ctx, th.ID)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Zero(t, countQuestions(t, gdb, th.ID))
}

func TestResolveRandom(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)

	_, err := svc.ResolveRandom(ctx)
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)

	mustTheme(t, gdb, "Empty", nil, true)
	_, err = svc.ResolveRandom(ctx)
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
	assert.Zero(t, gen.calls)

	th := mustTheme(t, gdb, "Food", nil, true)
	stored := mustQuestion(t, gdb, th.ID, "Soup", "Salad")
	q, err := svc.ResolveRandom(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, q.ID)
	assert.Equal(t, "Food", q.ThemeName)
	assert.EqualValues(t, 1, q.TimesUsed)
}

func TestUsageCounter_ConcurrentResolutions(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)
	q := mustQuestion(t, gdb, th.ID, "Soup", "Salad")
	require.NoError(t, gdb.Model(q).UpdateColumn("times_used", 5).Error)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ResolveForTheme(ctx, th.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var got Question
	require.NoError(t, gdb.First(&got, q.ID).Error)
	assert.EqualValues(t, 5+n, got.TimesUsed)
}

func TestGenerateForTheme_LeavesUsageAtZero(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)
	mustQuestion(t, gdb, th.ID, "Soup", "Salad")

	q, err := svc.GenerateForTheme(ctx, th.ID)
	require.NoError(t, err)
	assert.True(t, q.AIGenerated)
	assert.Zero(t, q.TimesUsed)
	assert.EqualValues(t, 2, countQuestions(t, gdb, th.ID))

	// No dedup: generating again stores another identical pair.
	q2, err := svc.GenerateForTheme(ctx, th.ID)
	require.NoError(t, err)
	assert.NotEqual(t, q.ID, q2.ID)
	assert.Equal(t, q.OptionA, q2.OptionA)

	_, err = svc.GenerateForTheme(ctx, 404)
	assert.ErrorIs(t, err, ErrThemeNotFound)
}

func TestRecordResponseAndStats(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)
	q := mustQuestion(t, gdb, th.ID, "Soup", "Salad")

	st, err := svc.Stats(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, &Stats{QuestionID: q.ID}, st)

	svc.newSessionID = func() string { return "minted-session" }
	sid, err := svc.RecordResponse(ctx, q.ID, OptionA, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "minted-session", sid)

	uid := uint64(7)
	sid, err = svc.RecordResponse(ctx, q.ID, OptionA, "guest-1", &uid)
	require.NoError(t, err)
	assert.Equal(t, "guest-1", sid)

	_, err = svc.RecordResponse(ctx, q.ID, OptionB, "guest-1", nil)
	require.NoError(t, err)

	st, err = svc.Stats(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, &Stats{QuestionID: q.ID, Total: 3, CountA: 2, CountB: 1}, st)

	var stored Question
	require.NoError(t, gdb.First(&stored, q.ID).Error)
	assert.Zero(t, stored.TimesUsed)
}

func TestRecordResponse_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)
	q := mustQuestion(t, gdb, th.ID, "Soup", "Salad")

	for _, opt := range []string{"C", "", "a", "AB"} {
		_, err := svc.RecordResponse(ctx, q.ID, opt, "", nil)
		assert.ErrorIs(t, err, ErrInvalidSelection, "option %q", opt)
	}

	_, err := svc.RecordResponse(ctx, 12345, OptionA, "", nil)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = svc.Stats(ctx, 12345)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestStats_IgnoresUnknownOptions(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)
	q := mustQuestion(t, gdb, th.ID, "Soup", "Salad")

	require.NoError(t, gdb.Create(&Response{QuestionID: q.ID, SelectedOption: "B"}).Error)
	require.NoError(t, gdb.Create(&Response{QuestionID: q.ID, SelectedOption: "Z"}).Error)

	st, err := svc.Stats(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, &Stats{QuestionID: q.ID, Total: 1, CountB: 1}, st)
}

func TestGenerationJobs(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)

	j1, created, err := svc.CreateGenerationJob(ctx, 1, th.ID, "key-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, JobQueued, j1.Status)
	assert.Len(t, j1.ID, 26)

	j2, created, err := svc.CreateGenerationJob(ctx, 1, th.ID, "key-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, j1.ID, j2.ID)

	// Same key, different user: a separate job.
	j3, created, err := svc.CreateGenerationJob(ctx, 2, th.ID, "key-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, j1.ID, j3.ID)

	_, _, err = svc.CreateGenerationJob(ctx, 1, 999, "")
	assert.ErrorIs(t, err, ErrThemeNotFound)

	require.NoError(t, svc.RunGenerationJob(ctx, j1.ID))
	got, err := svc.GetJob(ctx, 1, j1.ID)
	require.NoError(t, err)
	assert.Equal(t, JobSucceeded, got.Status)
	require.NotNil(t, got.ResultQuestionID)
	assert.Equal(t, 1, gen.calls)

	// A redelivered message is a no-op.
	require.NoError(t, svc.RunGenerationJob(ctx, j1.ID))
	assert.Equal(t, 1, gen.calls)

	_, err = svc.GetJob(ctx, 2, j1.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = svc.GetJob(ctx, 1, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunGenerationJob_Failure(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)
	gen.err = errors.New("exhausted")

	j, _, err := svc.CreateGenerationJob(ctx, 1, th.ID, "")
	require.NoError(t, err)

	err = svc.RunGenerationJob(ctx, j.ID)
	assert.ErrorIs(t, err, ErrGenerationFailed)

	got, err := svc.GetJob(ctx, 1, j.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "exhausted")
	assert.Nil(t, got.ResultQuestionID)
}

func TestRunGenerationJob_CancelledMidRunStillFinishes(t *testing.T) {
	svc, gdb, gen := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)

	j, _, err := svc.CreateGenerationJob(context.Background(), 1, th.ID, "")
	require.NoError(t, err)

	// The worker is told to stop while the generator is running.
	ctx, cancel := context.WithCancel(context.Background())
	gen.during = cancel

	err = svc.RunGenerationJob(ctx, j.ID)
	require.Error(t, err)

	got, err := svc.GetJob(context.Background(), 1, j.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
	require.NotNil(t, got.Error)

	// A redelivery leaves the finished job alone.
	gen.during = nil
	require.NoError(t, svc.RunGenerationJob(context.Background(), j.ID))
	got, err = svc.GetJob(context.Background(), 1, j.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
	assert.Equal(t, 1, gen.calls)
}

func TestRunGenerationJob_ReclaimsStaleRunningJob(t *testing.T) {
	ctx := context.Background()
	svc, gdb, gen := newTestService(t)
	th := mustTheme(t, gdb, "Food", nil, true)

	setRunning := func(jobID string, updatedAt time.Time) {
		t.Helper()
		require.NoError(t, gdb.Model(&GenerationJob{}).Where("id = ?", jobID).
			UpdateColumns(map[string]any{"status": JobRunning, "updated_at": updatedAt}).Error)
	}

	fresh, _, err := svc.CreateGenerationJob(ctx, 1, th.ID, "fresh")
	require.NoError(t, err)
	setRunning(fresh.ID, time.Now())

	require.NoError(t, svc.RunGenerationJob(ctx, fresh.ID))
	assert.Equal(t, 0, gen.calls)
	got, err := svc.GetJob(ctx, 1, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, JobRunning, got.Status)

	stale, _, err := svc.CreateGenerationJob(ctx, 1, th.ID, "stale")
	require.NoError(t, err)
	setRunning(stale.ID, time.Now().Add(-time.Hour))

	require.NoError(t, svc.RunGenerationJob(ctx, stale.ID))
	assert.Equal(t, 1, gen.calls)
	got, err = svc.GetJob(ctx, 1, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, JobSucceeded, got.Status)
	assert.NotNil(t, got.ResultQuestionID)
}

func TestOutOfRangeIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, gen := newTestService(t)
	huge := uint64(math.MaxUint64)

	_, err := svc.ResolveForTheme(ctx, huge)
	assert.ErrorIs(t, err, ErrThemeNotFound)
	_, err = svc.GenerateForTheme(ctx, huge)
	assert.ErrorIs(t, err, ErrThemeNotFound)
	_, _, err = svc.CreateGenerationJob(ctx, 1, huge, "")
	assert.ErrorIs(t, err, ErrThemeNotFound)

	_, err = svc.RecordResponse(ctx, huge, OptionA, "", nil)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	_, err = svc.Stats(ctx, uint64(math.MaxInt64)+1)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.Equal(t, 0, gen.calls)
}
