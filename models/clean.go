package models

import (
	"time"
)

// CleanApplication is the deduplicated application row for a run date
type CleanApplication struct {
	ApplicationID    string    `db:"application_id"`
	ScorecardVersion *string   `db:"scorecard_version"`
	Decision         *string   `db:"decision"`
	BureauScore      *int32    `db:"bureau_score"`
	Product          *string   `db:"product"`
	Channel          *string   `db:"channel"`
	Segment          *string   `db:"segment"`
	RunDate          time.Time `db:"_run_date"`
	IngestedAt       time.Time `db:"_ingested_at"`
	BatchID          string    `db:"_batch_id"`
}

// CleanSummary holds per-table row counts produced by a clean build
type CleanSummary struct {
	RunDate time.Time
	Rows    map[string]int64
}
