package models

import (
	"time"
)

// RunStatus represents the lifecycle state of a batch run
type RunStatus string

const (
	RunStatusStarted RunStatus = "started"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// IsTerminal reports whether the status ends a run
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed
}

// BatchRun represents one execution attempt of the full pipeline
type BatchRun struct {
	BatchID   string     `db:"batch_id"`
	RunDate   time.Time  `db:"run_date"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
	Status    RunStatus  `db:"status"`
	Message   *string    `db:"message"`
}

// LoadStat records the number of rows appended to one staging table by a batch
type LoadStat struct {
	ID           int64     `db:"id"`
	BatchID      string    `db:"batch_id"`
	TableName    string    `db:"table_name"`
	InsertedRows int64     `db:"inserted_rows"`
	CreatedAt    time.Time `db:"created_at"`
}
