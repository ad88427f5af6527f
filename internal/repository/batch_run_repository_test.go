package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-admin/internal/db"
	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
	"github.com/unclebandit/campaign-admin/internal/repository"
)

// Runs against a real Postgres when TEST_DATABASE_URL is set.
func newRepo(t *testing.T) *repository.BatchRunRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := db.Open(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, "../../migrations", zap.NewNop()))
	return &repository.BatchRunRepository{DB: conn}
}

func sampleRun() *model.BatchRun {
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.BatchRun{
		ID:            id,
		CsvFileID:     "csv1",
		BatchSize:     1500,
		IntervalHours: 24,
		ScheduledBase: now.Add(time.Hour),
		SuccessCount:  2,
		FailCount:     1,
		StartedAt:     now,
		FinishedAt:    now.Add(time.Second),
		Items: []model.BatchItem{
			{RunID: id, Seq: 0, CompanyAccountID: "coA", TemplateID: "t1", PlanIndex: 0, ScheduledDate: "2026-06-01T09:00:00.000Z", CampaignName: "D1", Status: model.ItemStatusCreated},
			{RunID: id, Seq: 1, CompanyAccountID: "coA", TemplateID: "t1", PlanIndex: 1, ScheduledDate: "2026-06-02T09:00:00.000Z", Status: model.ItemStatusFailed, LastError: "api error (500)"},
			{RunID: id, Seq: 2, CompanyAccountID: "coA", TemplateID: "t2", PlanIndex: 0, ScheduledDate: "2026-06-01T09:00:00.000Z", Status: model.ItemStatusCreated},
		},
	}
}

func TestBatchRunRepositoryLifecycle(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	run := sampleRun()
	t.Cleanup(func() { repo.Delete(context.Background(), run.ID) })

	require.NoError(t, repo.Save(ctx, run))
	// redelivery of the same run is a no-op
	require.NoError(t, repo.Save(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.CsvFileID, got.CsvFileID)
	assert.Equal(t, 2, got.SuccessCount)
	assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Millisecond)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "api error (500)", got.Items[1].LastError)
	assert.Equal(t, "t2", got.Items[2].TemplateID)

	stats, err := repo.GetRunStats(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"total": 3, model.ItemStatusCreated: 2, model.ItemStatusFailed: 1}, stats)

	runs, total, err := repo.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	found := false
	for _, r := range runs {
		found = found || r.ID == run.ID
	}
	assert.True(t, found)

	require.NoError(t, repo.Delete(ctx, run.ID))
	_, err = repo.GetByID(ctx, run.ID)
	var nf *appErrors.ErrBatchRunNotFound
	assert.True(t, errors.As(err, &nf))
	assert.True(t, errors.As(repo.Delete(ctx, run.ID), &nf))
}
