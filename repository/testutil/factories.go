package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scorecard/models"

	"github.com/stretchr/testify/require"
)

// TestRunDate is the run date used by most database tests
var TestRunDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// CreateTestBatch builds a staging batch from a header and raw rows
func CreateTestBatch(entity models.Entity, columns []string, rows ...[]string) *models.StagingBatch {
	batch := &models.StagingBatch{
		Entity:     entity,
		SourceFile: entity.FileName(),
		Columns:    columns,
	}
	for _, raw := range rows {
		row := make(models.StagingRow, len(columns))
		for i, col := range columns {
			value := ""
			if i < len(raw) {
				value = raw[i]
			}
			row[i] = models.Field{Column: col, Value: value}
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch
}

// CreateTestLineage returns lineage for a batch ingested at the given offset after the run date
func CreateTestLineage(runDate time.Time, batchID string, offset time.Duration) models.Lineage {
	return models.Lineage{
		RunDate:    runDate,
		SourceFile: "test.csv",
		IngestedAt: runDate.Add(offset),
		BatchID:    batchID,
	}
}

// WriteDayDir writes CSV files into <root>/<run date> and returns the directory.
// Each file is given as lines joined with newlines.
func WriteDayDir(t *testing.T, root string, runDate time.Time, files map[string][]string) string {
	t.Helper()

	dir := filepath.Join(root, models.FormatRunDate(runDate))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, lines := range files {
		content := strings.Join(lines, "\n") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}
