package repository

import (
	"context"
	"fmt"
	"time"

	"scorecard/database"
	"scorecard/models"
)

// MetricsRepository aggregates the fact table into scorecard metrics
type MetricsRepository struct {
	q Queryable
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *database.DB) *MetricsRepository {
	return &MetricsRepository{q: db.Pool}
}

func newMetricsRepositoryWithTx(tx Queryable) *MetricsRepository {
	return &MetricsRepository{q: tx}
}

// Empty groups yield zero rather than NULL for every average.
const metricsSelect = `
	COUNT(*) AS total_applications,
	COALESCE(ROUND(AVG(CASE WHEN decision = 'approved' THEN 1.0 ELSE 0.0 END) * 100, 2), 0)::double precision,
	COALESCE(ROUND(AVG(CASE WHEN decision = 'approved' THEN activated_flag END) * 100, 2), 0)::double precision,
	COALESCE(ROUND(AVG(bureau_score), 1), 0)::double precision,
	COALESCE(ROUND(AVG(default_flag) * 100, 2), 0)::double precision,
	COALESCE(ROUND(AVG(CASE WHEN activated_flag = 1 THEN txn_amount_30d END)::numeric, 2), 0)::double precision,
	COALESCE(ROUND(AVG(CASE WHEN activated_flag = 1 THEN pmt_amount_30d END)::numeric, 2), 0)::double precision`

// Scorecard returns the metrics of one scorecard version for a run date
func (r *MetricsRepository) Scorecard(ctx context.Context, runDate time.Time, version string) (*models.ScorecardMetrics, error) {
	query := `SELECT ` + metricsSelect + `
		FROM application_performance
		WHERE _run_date = $1 AND scorecard_version = $2`

	day := models.NormalizeRunDate(runDate)
	m := models.ScorecardMetrics{RunDate: day, ScorecardVersion: version}
	err := r.q.QueryRow(ctx, query, day, version).Scan(
		&m.TotalApplications,
		&m.ApprovalRatePct,
		&m.ActivationRatePct,
		&m.AvgCreditScore,
		&m.DefaultRatePct,
		&m.AvgSpendAmount30d,
		&m.AvgPaymentAmount30d,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate metrics for %s: %w", version, err)
	}
	return &m, nil
}

// Breakdown returns the metrics grouped by scorecard, product, channel and segment
func (r *MetricsRepository) Breakdown(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error) {
	query := `
		SELECT COALESCE(scorecard_version, ''), COALESCE(product, ''),
		       COALESCE(channel, ''), COALESCE(segment, ''),` + metricsSelect + `
		FROM application_performance
		WHERE _run_date = $1
		GROUP BY 1, 2, 3, 4
		ORDER BY 1, 2, 3, 4`

	day := models.NormalizeRunDate(runDate)
	rows, err := r.q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate metrics breakdown: %w", err)
	}
	defer rows.Close()

	var out []*models.ScorecardMetrics
	for rows.Next() {
		m := models.ScorecardMetrics{RunDate: day}
		err := rows.Scan(
			&m.ScorecardVersion,
			&m.Product,
			&m.Channel,
			&m.Segment,
			&m.TotalApplications,
			&m.ApprovalRatePct,
			&m.ActivationRatePct,
			&m.AvgCreditScore,
			&m.DefaultRatePct,
			&m.AvgSpendAmount30d,
			&m.AvgPaymentAmount30d,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Versions returns the distinct scorecard versions present in a run date
func (r *MetricsRepository) Versions(ctx context.Context, runDate time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT scorecard_version
		FROM application_performance
		WHERE _run_date = $1 AND scorecard_version IS NOT NULL
		ORDER BY scorecard_version`

	rows, err := r.q.Query(ctx, query, models.NormalizeRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list scorecard versions: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan scorecard version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
