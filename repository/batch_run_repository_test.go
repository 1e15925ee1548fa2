package repository

import (
	"context"
	"testing"
	"time"

	"scorecard/models"
	"scorecard/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRunRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBatchRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown batch", func(t *testing.T) {
		run, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, run)

		ended, err := repo.Finish(ctx, "missing", models.RunStatusFailed, "x")
		require.NoError(t, err)
		assert.False(t, ended)
	})

	t.Run("start normalizes run date", func(t *testing.T) {
		run, err := repo.Upsert(ctx, "b1", time.Date(2025, 1, 1, 17, 30, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.Equal(t, "b1", run.BatchID)
		assert.Equal(t, testutil.TestRunDate, run.RunDate.UTC())
		assert.Equal(t, models.RunStatusStarted, run.Status)
		assert.Nil(t, run.EndedAt)
		assert.Nil(t, run.Message)
	})

	t.Run("finish only once", func(t *testing.T) {
		ended, err := repo.Finish(ctx, "b1", models.RunStatusSuccess, "ok")
		require.NoError(t, err)
		assert.True(t, ended)

		ended, err = repo.Finish(ctx, "b1", models.RunStatusFailed, "again")
		require.NoError(t, err)
		assert.False(t, ended)

		run, err := repo.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, models.RunStatusSuccess, run.Status)
		require.NotNil(t, run.EndedAt)
		assert.False(t, run.EndedAt.Before(run.StartedAt))
		require.NotNil(t, run.Message)
		assert.Equal(t, "ok", *run.Message)
	})

	t.Run("restart resets the run", func(t *testing.T) {
		run, err := repo.Upsert(ctx, "b1", testutil.TestRunDate)
		require.NoError(t, err)

		assert.Equal(t, models.RunStatusStarted, run.Status)
		assert.Nil(t, run.EndedAt)
		assert.Nil(t, run.Message)

		runs, err := repo.ListByRunDate(ctx, testutil.TestRunDate)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}

func TestBatchRunRepository_LoadStats(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBatchRunRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "b1", testutil.TestRunDate)
	require.NoError(t, err)

	require.NoError(t, repo.InsertLoadStat(ctx, "b1", "stg_applications", 3))
	require.NoError(t, repo.InsertLoadStat(ctx, "b1", "stg_accounts", 0))

	stats, err := repo.ListLoadStats(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "stg_applications", stats[0].TableName)
	assert.Equal(t, int64(3), stats[0].InsertedRows)
	assert.Equal(t, int64(0), stats[1].InsertedRows)

	t.Run("unknown batch is rejected", func(t *testing.T) {
		err := repo.InsertLoadStat(ctx, "missing", "stg_accounts", 1)
		assert.Error(t, err)
	})

	t.Run("negative rows are rejected", func(t *testing.T) {
		err := repo.InsertLoadStat(ctx, "b1", "stg_accounts", -1)
		assert.Error(t, err)
	})
}
