package service

import (
	"context"
	"time"

	"scorecard/events"
	"scorecard/models"
)

// BatchRunRepository defines the interface for run and load stat persistence
type BatchRunRepository interface {
	// Upsert inserts a started run, or resets an existing one to started
	Upsert(ctx context.Context, batchID string, runDate time.Time) (*models.BatchRun, error)

	// Finish sets the terminal status of a started run, reporting false if none matched
	Finish(ctx context.Context, batchID string, status models.RunStatus, message string) (bool, error)

	// GetByID returns a run, or nil when it does not exist
	GetByID(ctx context.Context, batchID string) (*models.BatchRun, error)

	// ListByRunDate returns every run of a run date, most recent first
	ListByRunDate(ctx context.Context, runDate time.Time) ([]*models.BatchRun, error)

	// InsertLoadStat appends one load stat row
	InsertLoadStat(ctx context.Context, batchID, tableName string, insertedRows int64) error

	// ListLoadStats returns the load stats of a batch
	ListLoadStats(ctx context.Context, batchID string) ([]*models.LoadStat, error)
}

// StepExecutionRepository defines the interface for step attempt persistence
type StepExecutionRepository interface {
	// Insert records a new started attempt
	Insert(ctx context.Context, batchID string, step models.Step) (*models.StepExecution, error)

	// CloseLatestOpen terminates the most recent open attempt, returning nil if none exists
	CloseLatestOpen(ctx context.Context, batchID string, step models.Step, status models.StepStatus, errorMessage *string) (*models.StepExecution, error)

	// FirstFailed returns the earliest-started step whose latest attempt failed
	FirstFailed(ctx context.Context, batchID string) (models.Step, error)

	// Completed returns distinct completed steps by first start
	Completed(ctx context.Context, batchID string) ([]models.Step, error)

	// ListByBatch returns every attempt in start order
	ListByBatch(ctx context.Context, batchID string) ([]*models.StepExecution, error)
}

// StagingRepository defines the interface for the append-only staging tables
type StagingRepository interface {
	// EnsureColumns adds missing business columns as TEXT
	EnsureColumns(ctx context.Context, entity models.Entity, columns []string) error

	// Append copies the batch rows with lineage and returns the inserted count
	Append(ctx context.Context, batch *models.StagingBatch, lineage models.Lineage) (int64, error)

	// CountByBatch returns the rows a batch appended to an entity
	CountByBatch(ctx context.Context, entity models.Entity, batchID string) (int64, error)

	// ListByRunDate returns the staged rows of a run date
	ListByRunDate(ctx context.Context, entity models.Entity, runDate time.Time, columns []string) ([]models.StagingRow, error)
}

// CleanRepository defines the interface for the deduplicated clean tables
type CleanRepository interface {
	// FindMalformed returns the first winning value that cannot be cast, or nil
	FindMalformed(ctx context.Context, entity models.Entity, runDate time.Time) (*models.MalformedValueError, error)

	// Rebuild replaces the run date's rows with the latest staged row per key
	Rebuild(ctx context.Context, entity models.Entity, runDate time.Time) (int64, error)

	// Count returns the number of clean rows for a run date
	Count(ctx context.Context, entity models.Entity, runDate time.Time) (int64, error)

	// GetApplications returns the clean applications of a run date
	GetApplications(ctx context.Context, runDate time.Time) ([]*models.CleanApplication, error)
}

// FactRepository defines the interface for the application performance fact table
type FactRepository interface {
	Rebuild(ctx context.Context, runDate time.Time, batchID string) (int64, error)
	List(ctx context.Context, runDate time.Time) ([]*models.ApplicationPerformance, error)
	ListEnriched(ctx context.Context, runDate time.Time) ([]*models.EnrichedPerformance, error)
	Count(ctx context.Context, runDate time.Time) (int64, error)
}

// ReferenceRepository defines the interface for the reference dimension tables
type ReferenceRepository interface {
	ReplaceAll(ctx context.Context, data *models.ReferenceData) error
	Counts(ctx context.Context) (map[string]int64, error)
	GetScorecards(ctx context.Context) ([]*models.Scorecard, error)
}

// MetricsRepository defines the interface for fact table rollups
type MetricsRepository interface {
	Scorecard(ctx context.Context, runDate time.Time, version string) (*models.ScorecardMetrics, error)
	Breakdown(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error)
	Versions(ctx context.Context, runDate time.Time) ([]string, error)
}

// BatchCleanupRepository defines the interface for deleting a batch's derived rows
type BatchCleanupRepository interface {
	DeleteBatchRows(ctx context.Context, tables []string, batchID string) (map[string]int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	BatchRunRepository() BatchRunRepository
	StepExecutionRepository() StepExecutionRepository
	StagingRepository() StagingRepository
	CleanRepository() CleanRepository
	FactRepository() FactRepository
	ReferenceRepository() ReferenceRepository
	MetricsRepository() MetricsRepository
	BatchCleanupRepository() BatchCleanupRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Ledger records run and step lifecycles for a batch
type Ledger interface {
	// StartRun inserts or resets a run with status started
	StartRun(ctx context.Context, batchID string, runDate time.Time) error

	// EndRun sets the terminal status of a started run
	EndRun(ctx context.Context, batchID string, status models.RunStatus, message string) error

	// LogLoadStat appends a load stat for a staging table
	LogLoadStat(ctx context.Context, batchID, tableName string, rows int64) error

	// GetRun returns a run or ErrRunNotFound
	GetRun(ctx context.Context, batchID string) (*models.BatchRun, error)

	// LoadStats returns the load stats of a batch
	LoadStats(ctx context.Context, batchID string) ([]*models.LoadStat, error)

	// StartStep records a new attempt of a step
	StartStep(ctx context.Context, batchID string, step models.Step) error

	// CompleteStep marks the open attempt of a step completed
	CompleteStep(ctx context.Context, batchID string, step models.Step) error

	// FailStep marks the open attempt of a step failed
	FailStep(ctx context.Context, batchID string, step models.Step, message string) error

	// SkipStep marks the open attempt of a step skipped
	SkipStep(ctx context.Context, batchID string, step models.Step, reason string) error

	// FailedStep returns the earliest-started step whose latest attempt failed, or ""
	FailedStep(ctx context.Context, batchID string) (models.Step, error)

	// CompletedSteps returns completed step names in start order
	CompletedSteps(ctx context.Context, batchID string) ([]models.Step, error)

	// BatchStatus returns every step attempt in start order
	BatchStatus(ctx context.Context, batchID string) ([]*models.StepExecution, error)

	// CleanupPartialExecution deletes the batch's rows from layers at or after fromStep
	CleanupPartialExecution(ctx context.Context, batchID string, fromStep models.Step) (map[string]int64, error)
}

// StagingResult summarises one staging load
type StagingResult struct {
	RunDate time.Time
	Loaded  map[string]int64
	Skipped []string
}

// StagingLoader appends a run date directory to the staging tables
type StagingLoader interface {
	LoadDay(ctx context.Context, dayDir, batchID string) (*StagingResult, error)
}

// CleanBuilder rebuilds the clean layer for a run date
type CleanBuilder interface {
	Build(ctx context.Context, runDate time.Time) (*models.CleanSummary, error)
}

// ReferenceLoader refreshes the reference dimension tables
type ReferenceLoader interface {
	Load(ctx context.Context) error
}

// FactBuilder maintains the application performance fact table
type FactBuilder interface {
	// Build replaces the run date's fact rows and returns the row count
	Build(ctx context.Context, runDate time.Time, batchID string) (int64, error)

	// Enriched returns fact rows with reference context, falling back to base rows
	Enriched(ctx context.Context, runDate time.Time) ([]*models.EnrichedPerformance, error)

	// List returns the base fact rows ordered by application id
	List(ctx context.Context, runDate time.Time) ([]*models.ApplicationPerformance, error)
}

// MetricsWriter persists a metrics breakdown and returns the written path
type MetricsWriter interface {
	Write(dir string, runDate time.Time, rows []*models.ScorecardMetrics) (string, error)
}

// MetricsEngine aggregates the fact table into scorecard metrics
type MetricsEngine interface {
	Scorecard(ctx context.Context, runDate time.Time, version string) (*models.ScorecardMetrics, error)
	Breakdown(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error)
	ExportBreakdown(ctx context.Context, runDate time.Time, dir string) ([]string, error)
	Compare(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error)
}

// QualityGate evaluates a run date directory and returns its verdict
type QualityGate interface {
	Check(ctx context.Context, dayDir string) (bool, error)
}

// RunResult summarises a pipeline execution
type RunResult struct {
	BatchID       string
	RunDate       time.Time
	Status        models.RunStatus
	QualityPassed *bool
	Staged        map[string]int64
	Cleaned       map[string]int64
	FactRows      int64
	EnrichedRows  int
	MetricsFiles  []string
	Comparison    []*models.ScorecardMetrics
}

// Pipeline runs and resumes batches
type Pipeline interface {
	// Run executes every step for a run date under a batch id
	Run(ctx context.Context, batchID string, runDate time.Time) (*RunResult, error)

	// Resume re-runs a batch from its failed step
	Resume(ctx context.Context, batchID string) (*RunResult, error)
}
