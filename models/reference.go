package models

import (
	"time"
)

// Product is a card product dimension row
type Product struct {
	ProductCode           string    `db:"product_code"`
	ProductName           string    `db:"product_name"`
	AnnualFee             float64   `db:"annual_fee"`
	InterestRate          float64   `db:"interest_rate"`
	CreditLimitMin        int32     `db:"credit_limit_min"`
	CreditLimitMax        int32     `db:"credit_limit_max"`
	RewardsRate           float64   `db:"rewards_rate"`
	ForeignTransactionFee float64   `db:"foreign_transaction_fee"`
	TargetSegment         string    `db:"target_segment"`
	LaunchDate            time.Time `db:"launch_date"`
}

// Channel is an acquisition channel dimension row
type Channel struct {
	ChannelCode           string  `db:"channel_code"`
	ChannelName           string  `db:"channel_name"`
	CostPerAcquisition    float64 `db:"cost_per_acquisition"`
	ConversionRate        float64 `db:"conversion_rate"`
	ProcessingTimeDays    int32   `db:"processing_time_days"`
	CustomerServiceRating float64 `db:"customer_service_rating"`
	MarketingBudgetPct    float64 `db:"marketing_budget_pct"`
}

// Segment is a customer segment dimension row
type Segment struct {
	SegmentCode        string  `db:"segment_code"`
	SegmentName        string  `db:"segment_name"`
	IncomeMin          int32   `db:"income_min"`
	IncomeMax          int32   `db:"income_max"`
	AgeMin             int32   `db:"age_min"`
	AgeMax             int32   `db:"age_max"`
	RiskProfile        string  `db:"risk_profile"`
	MarketingBudgetPct float64 `db:"marketing_budget_pct"`
	TargetApprovalRate float64 `db:"target_approval_rate"`
}

// Scorecard is a scoring model dimension row
type Scorecard struct {
	ScorecardVersion    string    `db:"scorecard_version"`
	ScorecardName       string    `db:"scorecard_name"`
	ModelType           string    `db:"model_type"`
	ApprovalThreshold   int32     `db:"approval_threshold"`
	LaunchDate          time.Time `db:"launch_date"`
	TargetApprovalRate  float64   `db:"target_approval_rate"`
	ExpectedDefaultRate float64   `db:"expected_default_rate"`
	ModelFeatures       string    `db:"model_features"`
}

// ReferenceData is the full content of the reference dimension tables
type ReferenceData struct {
	Products   []Product
	Channels   []Channel
	Segments   []Segment
	Scorecards []Scorecard
}

func refDate(s string) time.Time {
	t, _ := ParseRunDate(s)
	return t
}

// DefaultReferenceData returns the static dimension rows loaded by every run
func DefaultReferenceData() *ReferenceData {
	return &ReferenceData{
		Products: []Product{
			{"standard", "Standard Credit Card", 0.00, 18.99, 500, 5000, 1.0, 2.50, "mass_market", refDate("2020-01-01")},
			{"gold", "Gold Rewards Card", 95.00, 16.99, 2000, 15000, 1.5, 0.00, "affluent", refDate("2021-03-15")},
			{"platinum", "Platinum Elite Card", 450.00, 14.99, 5000, 50000, 2.0, 0.00, "high_net_worth", refDate("2022-06-01")},
		},
		Channels: []Channel{
			{"online", "Digital Banking", 50.00, 0.15, 1, 4.2, 0.70},
			{"branch", "Branch Network", 150.00, 0.25, 0, 4.8, 0.30},
		},
		Segments: []Segment{
			{"retail", "Retail Banking", 25000, 150000, 18, 65, "medium", 0.65, 0.70},
			{"student", "Student Banking", 0, 35000, 18, 25, "high", 0.35, 0.60},
		},
		Scorecards: []Scorecard{
			{"existing", "Legacy Scorecard v2.1", "logistic_regression", 650, refDate("2019-01-01"), 0.70, 0.08, "bureau_score,income,debt_ratio"},
			{"pilot", "ML Pilot Scorecard v3.0", "gradient_boosting", 620, refDate("2025-07-01"), 0.75, 0.06, "bureau_score,income,debt_ratio,transaction_history,social_media"},
		},
	}
}
