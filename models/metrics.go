package models

import (
	"time"
)

// ScorecardMetrics holds the rollup metrics for one slice of the fact table.
// Product, Channel and Segment are empty for the per-scorecard summary.
type ScorecardMetrics struct {
	RunDate             time.Time `db:"run_date"`
	ScorecardVersion    string    `db:"scorecard_version"`
	Product             string    `db:"product"`
	Channel             string    `db:"channel"`
	Segment             string    `db:"segment"`
	TotalApplications   int64     `db:"total_applications"`
	ApprovalRatePct     float64   `db:"approval_rate_pct"`
	ActivationRatePct   float64   `db:"activation_rate_pct"`
	AvgCreditScore      float64   `db:"avg_credit_score"`
	DefaultRatePct      float64   `db:"default_rate_pct"`
	AvgSpendAmount30d   float64   `db:"avg_spend_amount_30d"`
	AvgPaymentAmount30d float64   `db:"avg_payment_amount_30d"`
}

// MetricsColumns is the header of the exported breakdown file
var MetricsColumns = []string{
	"run_date",
	"scorecard_version",
	"product",
	"channel",
	"segment",
	"total_applications",
	"approval_rate_pct",
	"activation_rate_pct",
	"avg_credit_score",
	"default_rate_pct",
	"avg_spend_amount_30d",
	"avg_payment_amount_30d",
}
