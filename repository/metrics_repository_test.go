package repository

import (
	"context"
	"testing"

	"scorecard/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	seedCleanLayer(t, testDB)

	ctx := context.Background()
	day := testutil.TestRunDate

	_, err := NewFactRepository(testDB.DB).Rebuild(ctx, day, "b1")
	require.NoError(t, err)

	repo := NewMetricsRepository(testDB.DB)

	t.Run("versions", func(t *testing.T) {
		versions, err := repo.Versions(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, []string{"existing", "pilot"}, versions)
	})

	t.Run("existing scorecard", func(t *testing.T) {
		m, err := repo.Scorecard(ctx, day, "existing")
		require.NoError(t, err)

		assert.Equal(t, int64(1), m.TotalApplications)
		assert.Equal(t, 100.0, m.ApprovalRatePct)
		assert.Equal(t, 100.0, m.ActivationRatePct)
		assert.Equal(t, 700.0, m.AvgCreditScore)
		assert.Equal(t, 0.0, m.DefaultRatePct)
		assert.Equal(t, 150.0, m.AvgSpendAmount30d)
		assert.Equal(t, 75.0, m.AvgPaymentAmount30d)
	})

	t.Run("pilot scorecard", func(t *testing.T) {
		m, err := repo.Scorecard(ctx, day, "pilot")
		require.NoError(t, err)

		assert.Equal(t, int64(2), m.TotalApplications)
		assert.Equal(t, 50.0, m.ApprovalRatePct)
		assert.Equal(t, 100.0, m.ActivationRatePct)
		assert.Equal(t, 615.0, m.AvgCreditScore)
		assert.Equal(t, 50.0, m.DefaultRatePct)
		assert.Equal(t, 0.0, m.AvgSpendAmount30d)
	})

	t.Run("empty run date yields zeros", func(t *testing.T) {
		m, err := repo.Scorecard(ctx, day.AddDate(0, 0, 1), "existing")
		require.NoError(t, err)

		assert.Zero(t, m.TotalApplications)
		assert.Zero(t, m.ApprovalRatePct)
		assert.Zero(t, m.ActivationRatePct)
		assert.Zero(t, m.AvgCreditScore)
		assert.Zero(t, m.DefaultRatePct)
	})

	t.Run("breakdown", func(t *testing.T) {
		rows, err := repo.Breakdown(ctx, day)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		var total int64
		for _, r := range rows {
			total += r.TotalApplications
			assert.Equal(t, day, r.RunDate)
			assert.GreaterOrEqual(t, r.ApprovalRatePct, 0.0)
			assert.LessOrEqual(t, r.ApprovalRatePct, 100.0)
			assert.GreaterOrEqual(t, r.DefaultRatePct, 0.0)
			assert.LessOrEqual(t, r.DefaultRatePct, 100.0)
		}
		assert.Equal(t, int64(3), total)

		assert.Equal(t, "existing", rows[0].ScorecardVersion)
		assert.Equal(t, "gold", rows[0].Product)
		assert.Equal(t, "pilot", rows[1].ScorecardVersion)
		assert.Equal(t, "platinum", rows[1].Product)
	})
}
