package repository

import (
	"context"
	"testing"

	"scorecard/models"
	"scorecard/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceRepository_ReplaceAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReferenceRepository(testDB.DB)
	ctx := context.Background()

	data := models.DefaultReferenceData()

	// Loading twice leaves exactly one copy
	require.NoError(t, repo.ReplaceAll(ctx, data))
	require.NoError(t, repo.ReplaceAll(ctx, data))

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"ref_products":   3,
		"ref_channels":   2,
		"ref_segments":   2,
		"ref_scorecards": 2,
	}, counts)

	scorecards, err := repo.GetScorecards(ctx)
	require.NoError(t, err)
	require.Len(t, scorecards, 2)
	assert.Equal(t, "existing", scorecards[0].ScorecardVersion)
	assert.Equal(t, int32(650), scorecards[0].ApprovalThreshold)
	assert.Equal(t, "pilot", scorecards[1].ScorecardVersion)
	assert.Equal(t, "2025-07-01", models.FormatRunDate(scorecards[1].LaunchDate))

	t.Run("replace drops stale rows", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, &models.ReferenceData{
			Scorecards: data.Scorecards[:1],
		}))

		counts, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), counts["ref_products"])
		assert.Equal(t, int64(1), counts["ref_scorecards"])
	})
}
