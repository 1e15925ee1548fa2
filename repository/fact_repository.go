package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scorecard/database"
	"scorecard/models"

	"github.com/jackc/pgx/v5"
)

// FactRepository maintains the application_performance fact table
type FactRepository struct {
	q Queryable
}

// NewFactRepository creates a new fact repository
func NewFactRepository(db *database.DB) *FactRepository {
	return &FactRepository{q: db.Pool}
}

func newFactRepositoryWithTx(tx Queryable) *FactRepository {
	return &FactRepository{q: tx}
}

const factColumns = `
	application_id, scorecard_version, decision, bureau_score, product, channel, segment,
	account_id, activation_date, activated_flag,
	txn_count_30d, txn_amount_30d, avg_txn_amount,
	pmt_count_30d, pmt_amount_30d, avg_pmt_amount,
	days_past_due, default_flag, payment_ratio, activation_success,
	_run_date, _batch_id`

// An application keeps at most one account: the latest ingested one, then the
// lowest account id. Activity and delinquency are restricted to the same run date.
const rebuildFactSQL = `
	WITH acc AS (
		SELECT DISTINCT ON (application_id) application_id, account_id, activation_date
		FROM clean_accounts
		WHERE _run_date = $1 AND application_id IS NOT NULL
		ORDER BY application_id, _ingested_at DESC, _batch_id COLLATE "C" DESC, account_id
	),
	txn AS (
		SELECT account_id,
		       COUNT(*) AS txn_count_30d,
		       COALESCE(SUM(amount), 0) AS txn_amount_30d,
		       COALESCE(AVG(amount), 0) AS avg_txn_amount
		FROM clean_transactions
		WHERE _run_date = $1
		GROUP BY account_id
	),
	pmt AS (
		SELECT account_id,
		       COUNT(*) AS pmt_count_30d,
		       COALESCE(SUM(amount), 0) AS pmt_amount_30d,
		       COALESCE(AVG(amount), 0) AS avg_pmt_amount
		FROM clean_payments
		WHERE _run_date = $1
		GROUP BY account_id
	),
	dlq AS (
		SELECT account_id, days_past_due, default_flag
		FROM clean_delinquency
		WHERE _run_date = $1
	)
	INSERT INTO application_performance (` + factColumns + `)
	SELECT
		app.application_id,
		app.scorecard_version,
		app.decision,
		app.bureau_score,
		app.product,
		app.channel,
		app.segment,
		acc.account_id,
		acc.activation_date,
		CASE WHEN acc.account_id IS NOT NULL THEN 1 ELSE 0 END,
		COALESCE(txn.txn_count_30d, 0),
		COALESCE(txn.txn_amount_30d, 0),
		COALESCE(txn.avg_txn_amount, 0),
		COALESCE(pmt.pmt_count_30d, 0),
		COALESCE(pmt.pmt_amount_30d, 0),
		COALESCE(pmt.avg_pmt_amount, 0),
		COALESCE(dlq.days_past_due, 0),
		COALESCE(dlq.default_flag, 0),
		CASE
			WHEN txn.txn_amount_30d > 0 AND pmt.pmt_amount_30d > 0
			THEN ROUND((pmt.pmt_amount_30d / txn.txn_amount_30d)::numeric, 3)::double precision
			ELSE 0
		END,
		CASE WHEN app.decision = 'approved' AND acc.account_id IS NOT NULL THEN 1 ELSE 0 END,
		app._run_date,
		$2::text
	FROM clean_applications app
	LEFT JOIN acc ON acc.application_id = app.application_id
	LEFT JOIN txn ON txn.account_id = acc.account_id
	LEFT JOIN pmt ON pmt.account_id = acc.account_id
	LEFT JOIN dlq ON dlq.account_id = acc.account_id
	WHERE app._run_date = $1`

// Rebuild replaces the run date's fact rows with one row per clean application
func (r *FactRepository) Rebuild(ctx context.Context, runDate time.Time, batchID string) (int64, error) {
	day := models.NormalizeRunDate(runDate)

	if _, err := r.q.Exec(ctx, `DELETE FROM application_performance WHERE _run_date = $1`, day); err != nil {
		return 0, fmt.Errorf("failed to clear application_performance: %w", err)
	}

	tag, err := r.q.Exec(ctx, rebuildFactSQL, day, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to build application_performance: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns the run date's fact rows ordered by application id
func (r *FactRepository) List(ctx context.Context, runDate time.Time) ([]*models.ApplicationPerformance, error) {
	query := `SELECT ` + factColumns + `
		FROM application_performance
		WHERE _run_date = $1
		ORDER BY application_id`

	rows, err := r.q.Query(ctx, query, models.NormalizeRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list application performance: %w", err)
	}
	defer rows.Close()

	var facts []*models.ApplicationPerformance
	for rows.Next() {
		var f models.ApplicationPerformance
		if err := rows.Scan(factDest(&f)...); err != nil {
			return nil, fmt.Errorf("failed to scan application performance: %w", err)
		}
		facts = append(facts, &f)
	}
	return facts, rows.Err()
}

// ListEnriched returns the run date's fact rows joined with the reference dimensions
func (r *FactRepository) ListEnriched(ctx context.Context, runDate time.Time) ([]*models.EnrichedPerformance, error) {
	query := `
		SELECT ` + prefixed("perf", factColumns) + `,
		       prod.product_name, prod.annual_fee, prod.interest_rate,
		       prod.credit_limit_min, prod.credit_limit_max, prod.rewards_rate,
		       ch.channel_name, ch.cost_per_acquisition, ch.conversion_rate,
		       seg.segment_name, seg.risk_profile, seg.target_approval_rate,
		       sc.scorecard_name, sc.model_type, sc.approval_threshold, sc.expected_default_rate
		FROM application_performance perf
		LEFT JOIN ref_products prod ON prod.product_code = perf.product
		LEFT JOIN ref_channels ch ON ch.channel_code = perf.channel
		LEFT JOIN ref_segments seg ON seg.segment_code = perf.segment
		LEFT JOIN ref_scorecards sc ON sc.scorecard_version = perf.scorecard_version
		WHERE perf._run_date = $1
		ORDER BY perf.application_id`

	rows, err := r.q.Query(ctx, query, models.NormalizeRunDate(runDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list enriched performance: %w", err)
	}
	defer rows.Close()

	var out []*models.EnrichedPerformance
	for rows.Next() {
		var e models.EnrichedPerformance
		var en models.Enrichment
		dest := append(factDest(&e.ApplicationPerformance),
			&en.ProductName, &en.AnnualFee, &en.InterestRate,
			&en.CreditLimitMin, &en.CreditLimitMax, &en.RewardsRate,
			&en.ChannelName, &en.CostPerAcquisition, &en.ChannelConversionRate,
			&en.SegmentName, &en.RiskProfile, &en.SegmentTargetApprovalRate,
			&en.ScorecardName, &en.ModelType, &en.ApprovalThreshold, &en.ExpectedDefaultRate,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan enriched performance: %w", err)
		}
		e.Enrichment = &en
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Count returns the number of fact rows for a run date
func (r *FactRepository) Count(ctx context.Context, runDate time.Time) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM application_performance WHERE _run_date = $1`,
		models.NormalizeRunDate(runDate)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count application_performance: %w", err)
	}
	return n, nil
}

func factDest(f *models.ApplicationPerformance) []any {
	return []any{
		&f.ApplicationID, &f.ScorecardVersion, &f.Decision, &f.BureauScore,
		&f.Product, &f.Channel, &f.Segment,
		&f.AccountID, &f.ActivationDate, &f.ActivatedFlag,
		&f.TxnCount30d, &f.TxnAmount30d, &f.AvgTxnAmount,
		&f.PmtCount30d, &f.PmtAmount30d, &f.AvgPmtAmount,
		&f.DaysPastDue, &f.DefaultFlag, &f.PaymentRatio, &f.ActivationSuccess,
		&f.RunDate, &f.BatchID,
	}
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + pgx.Identifier{strings.TrimSpace(c)}.Sanitize()
	}
	return strings.Join(cols, ", ")
}
