package models

import (
	"time"
)

// ApplicationPerformance is one fact row per application per run date
type ApplicationPerformance struct {
	ApplicationID     string    `db:"application_id"`
	ScorecardVersion  *string   `db:"scorecard_version"`
	Decision          *string   `db:"decision"`
	BureauScore       *int32    `db:"bureau_score"`
	Product           *string   `db:"product"`
	Channel           *string   `db:"channel"`
	Segment           *string   `db:"segment"`
	AccountID         *string   `db:"account_id"`
	ActivationDate    *string   `db:"activation_date"`
	ActivatedFlag     int32     `db:"activated_flag"`
	TxnCount30d       int32     `db:"txn_count_30d"`
	TxnAmount30d      float64   `db:"txn_amount_30d"`
	AvgTxnAmount      float64   `db:"avg_txn_amount"`
	PmtCount30d       int32     `db:"pmt_count_30d"`
	PmtAmount30d      float64   `db:"pmt_amount_30d"`
	AvgPmtAmount      float64   `db:"avg_pmt_amount"`
	DaysPastDue       int32     `db:"days_past_due"`
	DefaultFlag       int32     `db:"default_flag"`
	PaymentRatio      float64   `db:"payment_ratio"`
	ActivationSuccess int32     `db:"activation_success"`
	RunDate           time.Time `db:"_run_date"`
	BatchID           string    `db:"_batch_id"`
}

// Enrichment holds the reference dimension columns joined onto a fact row.
// Every field is nil when the code has no matching reference row.
type Enrichment struct {
	ProductName               *string  `db:"product_name"`
	AnnualFee                 *float64 `db:"annual_fee"`
	InterestRate              *float64 `db:"interest_rate"`
	CreditLimitMin            *int32   `db:"credit_limit_min"`
	CreditLimitMax            *int32   `db:"credit_limit_max"`
	RewardsRate               *float64 `db:"rewards_rate"`
	ChannelName               *string  `db:"channel_name"`
	CostPerAcquisition        *float64 `db:"cost_per_acquisition"`
	ChannelConversionRate     *float64 `db:"channel_conversion_rate"`
	SegmentName               *string  `db:"segment_name"`
	RiskProfile               *string  `db:"risk_profile"`
	SegmentTargetApprovalRate *float64 `db:"segment_target_approval_rate"`
	ScorecardName             *string  `db:"scorecard_name"`
	ModelType                 *string  `db:"model_type"`
	ApprovalThreshold         *int32   `db:"approval_threshold"`
	ExpectedDefaultRate       *float64 `db:"expected_default_rate"`
}

// EnrichedPerformance is a fact row with optional reference context.
// Enrichment is nil when the enrichment join could not be performed.
type EnrichedPerformance struct {
	ApplicationPerformance
	Enrichment *Enrichment
}

// Matched reports whether any reference dimension was found for the row
func (e *EnrichedPerformance) Matched() bool {
	if e.Enrichment == nil {
		return false
	}
	en := e.Enrichment
	return en.ProductName != nil || en.ChannelName != nil || en.SegmentName != nil || en.ScorecardName != nil
}
