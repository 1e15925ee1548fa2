package cmd

import (
	"bytes"
	"testing"
	"time"

	"scorecard/models"
	"scorecard/service"

	"github.com/stretchr/testify/assert"
)

func TestPrintRunResult(t *testing.T) {
	passed := false
	result := &service.RunResult{
		BatchID:       "batch-1",
		RunDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        models.RunStatusSuccess,
		QualityPassed: &passed,
		Staged:        map[string]int64{"stg_accounts": 3, "stg_applications": 5},
		FactRows:      5,
		EnrichedRows:  5,
		MetricsFiles:  []string{"/out/scorecard_metrics_2025-01-01.csv"},
		Comparison: []*models.ScorecardMetrics{
			{ScorecardVersion: "existing", TotalApplications: 3, ApprovalRatePct: 66.67},
		},
	}

	var buf bytes.Buffer
	printRunResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Batch:    batch-1")
	assert.Contains(t, out, "Run date: 2025-01-01")
	assert.Contains(t, out, "Quality:  FAIL")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("stg_accounts")), bytes.Index(buf.Bytes(), []byte("stg_applications")))
	assert.Contains(t, out, "Fact rows: 5 (5 enriched)")
	assert.Contains(t, out, "66.67")
	assert.Contains(t, out, "/out/scorecard_metrics_2025-01-01.csv")
	assert.NotContains(t, out, "Clean rows")
}

func TestPrintBatchStatus(t *testing.T) {
	start := time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	msg := "step clean failed: malformed value"

	run := &models.BatchRun{
		BatchID:   "batch-1",
		RunDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		StartedAt: start,
		EndedAt:   &end,
		Status:    models.RunStatusFailed,
		Message:   &msg,
	}
	stats := []*models.LoadStat{{TableName: "stg_applications", InsertedRows: 200, CreatedAt: start}}
	steps := []*models.StepExecution{
		{StepName: models.StepStage, Status: models.StepStatusCompleted, StartTime: start, EndTime: &end},
		{StepName: models.StepClean, Status: models.StepStatusFailed, StartTime: end, ErrorMessage: &msg},
	}

	var buf bytes.Buffer
	printBatchStatus(&buf, run, stats, steps)
	out := buf.String()

	assert.Contains(t, out, "Status:   failed")
	assert.Contains(t, out, "Message:  "+msg)
	assert.Contains(t, out, "stg_applications")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "clean")
}

func TestPrintMetrics_Empty(t *testing.T) {
	var buf bytes.Buffer
	printMetrics(&buf, nil, nil)
	assert.Equal(t, "No fact rows for this run date\n", buf.String())
}

func TestRootCommand_Tree(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "resume", "status", "metrics", "migrate"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	run, _, err := root.Find([]string{"run"})
	assert.NoError(t, err)
	for _, flag := range []string{"n-apps", "seed", "run-date", "skip-generate", "strict-quality", "xlsx"} {
		assert.NotNil(t, run.Flags().Lookup(flag), flag)
	}
	for _, flag := range []string{"db", "schema", "data-dir", "output-dir", "config"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}
