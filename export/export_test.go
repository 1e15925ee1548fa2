package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scorecard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var runDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleRows() []*models.ScorecardMetrics {
	return []*models.ScorecardMetrics{
		{
			RunDate: runDate, ScorecardVersion: "existing", Product: "gold", Channel: "online", Segment: "retail",
			TotalApplications: 1, ApprovalRatePct: 100, ActivationRatePct: 100, AvgCreditScore: 700,
			DefaultRatePct: 0, AvgSpendAmount30d: 150, AvgPaymentAmount30d: 75,
		},
		{
			RunDate: runDate, ScorecardVersion: "pilot", Product: "standard", Channel: "branch", Segment: "student",
			TotalApplications: 2, ApprovalRatePct: 50, ActivationRatePct: 33.33, AvgCreditScore: 615.5,
			DefaultRatePct: 12.5, AvgSpendAmount30d: 0, AvgPaymentAmount30d: 0,
		},
	}
}

func TestRecord(t *testing.T) {
	got := Record(sampleRows()[1])
	assert.Equal(t, []string{
		"2025-01-01", "pilot", "standard", "branch", "student",
		"2", "50", "33.33", "615.5", "12.5", "0", "0",
	}, got)
	assert.Len(t, got, len(models.MetricsColumns))
}

func TestCSVWriter_Write(t *testing.T) {
	dir := t.TempDir()

	path, err := NewCSVWriter().Write(dir, runDate, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scorecard_metrics_2025-01-01.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, models.MetricsColumns, records[0])
	assert.Equal(t, "existing", records[1][1])
	assert.Equal(t, "150", records[1][10])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestCSVWriter_EmptyBreakdownWritesHeader(t *testing.T) {
	path, err := NewCSVWriter().Write(t.TempDir(), runDate, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run_date,scorecard_version,product,channel,segment,total_applications,approval_rate_pct,"+
		"activation_rate_pct,avg_credit_score,default_rate_pct,avg_spend_amount_30d,avg_payment_amount_30d\n", string(data))
}

func TestCSVWriter_MissingDirectory(t *testing.T) {
	_, err := NewCSVWriter().Write(filepath.Join(t.TempDir(), "missing"), runDate, sampleRows())
	assert.Error(t, err)
}

func TestXLSXWriter_Write(t *testing.T) {
	dir := t.TempDir()

	path, err := NewXLSXWriter().Write(dir, runDate, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scorecard_metrics_2025-01-01.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MetricsSheet}, f.GetSheetList())

	rows, err := f.GetRows(MetricsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.MetricsColumns, rows[0])
	assert.Equal(t, []string{"2025-01-01", "pilot", "standard", "branch", "student", "2"}, rows[2][:6])
	assert.Equal(t, "615.5", rows[2][8])
}
