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

func TestStagingRepository_Append(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStagingRepository(testDB.DB)
	ctx := context.Background()
	day := testutil.TestRunDate

	t.Run("keeps empty strings and tags lineage", func(t *testing.T) {
		batch := testutil.CreateTestBatch(models.Applications,
			[]string{"application_id", "decision", "bureau_score"},
			[]string{"A1", "approved", "700"},
			[]string{"A2", "", ""},
		)

		n, err := repo.Append(ctx, batch, testutil.CreateTestLineage(day, "b1", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		rows, err := repo.ListByRunDate(ctx, models.Applications, day, []string{"application_id", "decision", "_batch_id"})
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byID := make(map[string]models.StagingRow)
		for _, row := range rows {
			id, _ := row.Get("application_id")
			byID[id] = row
			batchID, _ := row.Get("_batch_id")
			assert.Equal(t, "b1", batchID)
		}
		decision, ok := byID["A2"].Get("decision")
		assert.True(t, ok)
		assert.Equal(t, "", decision)

		var emptyCount int
		err = testDB.DB.QueryRow(ctx,
			`SELECT COUNT(*) FROM stg_applications WHERE decision = '' AND bureau_score = ''`).Scan(&emptyCount)
		require.NoError(t, err)
		assert.Equal(t, 1, emptyCount)
	})

	t.Run("source lineage columns are overridden", func(t *testing.T) {
		batch := testutil.CreateTestBatch(models.Accounts,
			[]string{"account_id", "_batch_id", "application_id"},
			[]string{"C1", "forged", "A1"},
		)

		_, err := repo.Append(ctx, batch, testutil.CreateTestLineage(day, "b2", time.Hour))
		require.NoError(t, err)

		n, err := repo.CountByBatch(ctx, models.Accounts, "b2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.CountByBatch(ctx, models.Accounts, "forged")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("appends never replace", func(t *testing.T) {
		batch := testutil.CreateTestBatch(models.Applications,
			[]string{"application_id"},
			[]string{"A1"},
		)
		_, err := repo.Append(ctx, batch, testutil.CreateTestLineage(day, "b3", 2*time.Hour))
		require.NoError(t, err)

		rows, err := repo.ListByRunDate(ctx, models.Applications, day, []string{"application_id"})
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestStagingRepository_EnsureColumns(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStagingRepository(testDB.DB)
	ctx := context.Background()

	columns := []string{"payment_id", "account_id", "amount", "payment method", "_run_date"}
	require.NoError(t, repo.EnsureColumns(ctx, models.Payments, columns))

	// Idempotent
	require.NoError(t, repo.EnsureColumns(ctx, models.Payments, columns))

	batch := testutil.CreateTestBatch(models.Payments,
		[]string{"payment_id", "account_id", "amount", "payment method"},
		[]string{"P1", "C1", "10.5", "card"},
	)
	n, err := repo.Append(ctx, batch, testutil.CreateTestLineage(testutil.TestRunDate, "b1", 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := repo.ListByRunDate(ctx, models.Payments, testutil.TestRunDate, []string{"payment method"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	method, _ := rows[0].Get("payment method")
	assert.Equal(t, "card", method)
}
