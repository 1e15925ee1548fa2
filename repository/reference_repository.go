package repository

import (
	"context"
	"fmt"

	"scorecard/database"
	"scorecard/models"

	"github.com/jackc/pgx/v5"
)

// ReferenceTables lists the dimension tables in load order
var ReferenceTables = []string{"ref_products", "ref_channels", "ref_segments", "ref_scorecards"}

// ReferenceRepository maintains the ref_* dimension tables
type ReferenceRepository struct {
	q Queryable
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(db *database.DB) *ReferenceRepository {
	return &ReferenceRepository{q: db.Pool}
}

func newReferenceRepositoryWithTx(tx Queryable) *ReferenceRepository {
	return &ReferenceRepository{q: tx}
}

// ReplaceAll deletes every dimension row and inserts the given data
func (r *ReferenceRepository) ReplaceAll(ctx context.Context, data *models.ReferenceData) error {
	batch := &pgx.Batch{}
	for _, table := range ReferenceTables {
		batch.Queue(fmt.Sprintf("DELETE FROM %s", pgx.Identifier{table}.Sanitize()))
	}

	for _, p := range data.Products {
		batch.Queue(`
			INSERT INTO ref_products (product_code, product_name, annual_fee, interest_rate,
				credit_limit_min, credit_limit_max, rewards_rate, foreign_transaction_fee,
				target_segment, launch_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ProductCode, p.ProductName, p.AnnualFee, p.InterestRate,
			p.CreditLimitMin, p.CreditLimitMax, p.RewardsRate, p.ForeignTransactionFee,
			p.TargetSegment, p.LaunchDate)
	}
	for _, c := range data.Channels {
		batch.Queue(`
			INSERT INTO ref_channels (channel_code, channel_name, cost_per_acquisition, conversion_rate,
				processing_time_days, customer_service_rating, marketing_budget_pct)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ChannelCode, c.ChannelName, c.CostPerAcquisition, c.ConversionRate,
			c.ProcessingTimeDays, c.CustomerServiceRating, c.MarketingBudgetPct)
	}
	for _, s := range data.Segments {
		batch.Queue(`
			INSERT INTO ref_segments (segment_code, segment_name, income_min, income_max,
				age_min, age_max, risk_profile, marketing_budget_pct, target_approval_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.SegmentCode, s.SegmentName, s.IncomeMin, s.IncomeMax,
			s.AgeMin, s.AgeMax, s.RiskProfile, s.MarketingBudgetPct, s.TargetApprovalRate)
	}
	for _, sc := range data.Scorecards {
		batch.Queue(`
			INSERT INTO ref_scorecards (scorecard_version, scorecard_name, model_type, approval_threshold,
				launch_date, target_approval_rate, expected_default_rate, model_features)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sc.ScorecardVersion, sc.ScorecardName, sc.ModelType, sc.ApprovalThreshold,
			sc.LaunchDate, sc.TargetApprovalRate, sc.ExpectedDefaultRate, sc.ModelFeatures)
	}

	results := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to load reference data: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}
	return nil
}

// Counts returns the row count of every dimension table
func (r *ReferenceRepository) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(ReferenceTables))
	for _, table := range ReferenceTables {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{table}.Sanitize())
		if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// GetScorecards returns the scorecard dimension ordered by version
func (r *ReferenceRepository) GetScorecards(ctx context.Context) ([]*models.Scorecard, error) {
	query := `
		SELECT scorecard_version, scorecard_name, model_type, approval_threshold,
		       launch_date, target_approval_rate, expected_default_rate, model_features
		FROM ref_scorecards
		ORDER BY scorecard_version
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get scorecards: %w", err)
	}
	defer rows.Close()

	var out []*models.Scorecard
	for rows.Next() {
		var sc models.Scorecard
		err := rows.Scan(&sc.ScorecardVersion, &sc.ScorecardName, &sc.ModelType, &sc.ApprovalThreshold,
			&sc.LaunchDate, &sc.TargetApprovalRate, &sc.ExpectedDefaultRate, &sc.ModelFeatures)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scorecard: %w", err)
		}
		out = append(out, &sc)
	}
	return out, rows.Err()
}
