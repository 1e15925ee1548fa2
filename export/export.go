package export

import (
	"strconv"
	"time"

	"scorecard/models"
)

// FileName returns the breakdown file name for a run date and extension
func FileName(runDate time.Time, ext string) string {
	return "scorecard_metrics_" + models.FormatRunDate(runDate) + ext
}

// Record flattens a metrics row in MetricsColumns order
func Record(m *models.ScorecardMetrics) []string {
	return []string{
		models.FormatRunDate(m.RunDate),
		m.ScorecardVersion,
		m.Product,
		m.Channel,
		m.Segment,
		strconv.FormatInt(m.TotalApplications, 10),
		formatFloat(m.ApprovalRatePct),
		formatFloat(m.ActivationRatePct),
		formatFloat(m.AvgCreditScore),
		formatFloat(m.DefaultRatePct),
		formatFloat(m.AvgSpendAmount30d),
		formatFloat(m.AvgPaymentAmount30d),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
