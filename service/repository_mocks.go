package service

import (
	"context"
	"time"

	"scorecard/events"
	"scorecard/models"

	"github.com/stretchr/testify/mock"
)

// MockBatchRunRepository is a mock implementation of BatchRunRepository
type MockBatchRunRepository struct {
	mock.Mock
}

func (m *MockBatchRunRepository) Upsert(ctx context.Context, batchID string, runDate time.Time) (*models.BatchRun, error) {
	args := m.Called(ctx, batchID, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchRun), args.Error(1)
}

func (m *MockBatchRunRepository) Finish(ctx context.Context, batchID string, status models.RunStatus, message string) (bool, error) {
	args := m.Called(ctx, batchID, status, message)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRunRepository) GetByID(ctx context.Context, batchID string) (*models.BatchRun, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchRun), args.Error(1)
}

func (m *MockBatchRunRepository) ListByRunDate(ctx context.Context, runDate time.Time) ([]*models.BatchRun, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BatchRun), args.Error(1)
}

func (m *MockBatchRunRepository) InsertLoadStat(ctx context.Context, batchID, tableName string, insertedRows int64) error {
	args := m.Called(ctx, batchID, tableName, insertedRows)
	return args.Error(0)
}

func (m *MockBatchRunRepository) ListLoadStats(ctx context.Context, batchID string) ([]*models.LoadStat, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LoadStat), args.Error(1)
}

// MockStepExecutionRepository is a mock implementation of StepExecutionRepository
type MockStepExecutionRepository struct {
	mock.Mock
}

func (m *MockStepExecutionRepository) Insert(ctx context.Context, batchID string, step models.Step) (*models.StepExecution, error) {
	args := m.Called(ctx, batchID, step)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepExecution), args.Error(1)
}

func (m *MockStepExecutionRepository) CloseLatestOpen(ctx context.Context, batchID string, step models.Step, status models.StepStatus, errorMessage *string) (*models.StepExecution, error) {
	args := m.Called(ctx, batchID, step, status, errorMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepExecution), args.Error(1)
}

func (m *MockStepExecutionRepository) FirstFailed(ctx context.Context, batchID string) (models.Step, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(models.Step), args.Error(1)
}

func (m *MockStepExecutionRepository) Completed(ctx context.Context, batchID string) ([]models.Step, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Step), args.Error(1)
}

func (m *MockStepExecutionRepository) ListByBatch(ctx context.Context, batchID string) ([]*models.StepExecution, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StepExecution), args.Error(1)
}

// MockStagingRepository is a mock implementation of StagingRepository
type MockStagingRepository struct {
	mock.Mock
}

func (m *MockStagingRepository) EnsureColumns(ctx context.Context, entity models.Entity, columns []string) error {
	args := m.Called(ctx, entity, columns)
	return args.Error(0)
}

func (m *MockStagingRepository) Append(ctx context.Context, batch *models.StagingBatch, lineage models.Lineage) (int64, error) {
	args := m.Called(ctx, batch, lineage)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagingRepository) CountByBatch(ctx context.Context, entity models.Entity, batchID string) (int64, error) {
	args := m.Called(ctx, entity, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStagingRepository) ListByRunDate(ctx context.Context, entity models.Entity, runDate time.Time, columns []string) ([]models.StagingRow, error) {
	args := m.Called(ctx, entity, runDate, columns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StagingRow), args.Error(1)
}

// MockCleanRepository is a mock implementation of CleanRepository
type MockCleanRepository struct {
	mock.Mock
}

func (m *MockCleanRepository) FindMalformed(ctx context.Context, entity models.Entity, runDate time.Time) (*models.MalformedValueError, error) {
	args := m.Called(ctx, entity, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MalformedValueError), args.Error(1)
}

func (m *MockCleanRepository) Rebuild(ctx context.Context, entity models.Entity, runDate time.Time) (int64, error) {
	args := m.Called(ctx, entity, runDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanRepository) Count(ctx context.Context, entity models.Entity, runDate time.Time) (int64, error) {
	args := m.Called(ctx, entity, runDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCleanRepository) GetApplications(ctx context.Context, runDate time.Time) ([]*models.CleanApplication, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CleanApplication), args.Error(1)
}

// MockFactRepository is a mock implementation of FactRepository
type MockFactRepository struct {
	mock.Mock
}

func (m *MockFactRepository) Rebuild(ctx context.Context, runDate time.Time, batchID string) (int64, error) {
	args := m.Called(ctx, runDate, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFactRepository) List(ctx context.Context, runDate time.Time) ([]*models.ApplicationPerformance, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ApplicationPerformance), args.Error(1)
}

func (m *MockFactRepository) ListEnriched(ctx context.Context, runDate time.Time) ([]*models.EnrichedPerformance, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EnrichedPerformance), args.Error(1)
}

func (m *MockFactRepository) Count(ctx context.Context, runDate time.Time) (int64, error) {
	args := m.Called(ctx, runDate)
	return args.Get(0).(int64), args.Error(1)
}

// MockReferenceRepository is a mock implementation of ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ReplaceAll(ctx context.Context, data *models.ReferenceData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockReferenceRepository) Counts(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockReferenceRepository) GetScorecards(ctx context.Context) ([]*models.Scorecard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Scorecard), args.Error(1)
}

// MockMetricsRepository is a mock implementation of MetricsRepository
type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) Scorecard(ctx context.Context, runDate time.Time, version string) (*models.ScorecardMetrics, error) {
	args := m.Called(ctx, runDate, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScorecardMetrics), args.Error(1)
}

func (m *MockMetricsRepository) Breakdown(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScorecardMetrics), args.Error(1)
}

func (m *MockMetricsRepository) Versions(ctx context.Context, runDate time.Time) ([]string, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockBatchCleanupRepository is a mock implementation of BatchCleanupRepository
type MockBatchCleanupRepository struct {
	mock.Mock
}

func (m *MockBatchCleanupRepository) DeleteBatchRows(ctx context.Context, tables []string, batchID string) (map[string]int64, error) {
	args := m.Called(ctx, tables, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repositories are plain fields so tests only wire the ones they use.
type MockUnitOfWork struct {
	mock.Mock
	BatchRunRepo      BatchRunRepository
	StepExecutionRepo StepExecutionRepository
	StagingRepo       StagingRepository
	CleanRepo         CleanRepository
	FactRepo          FactRepository
	ReferenceRepo     ReferenceRepository
	MetricsRepo       MetricsRepository
	BatchCleanupRepo  BatchCleanupRepository
	Bus               EventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) BatchRunRepository() BatchRunRepository {
	return m.BatchRunRepo
}

func (m *MockUnitOfWork) StepExecutionRepository() StepExecutionRepository {
	return m.StepExecutionRepo
}

func (m *MockUnitOfWork) StagingRepository() StagingRepository {
	return m.StagingRepo
}

func (m *MockUnitOfWork) CleanRepository() CleanRepository {
	return m.CleanRepo
}

func (m *MockUnitOfWork) FactRepository() FactRepository {
	return m.FactRepo
}

func (m *MockUnitOfWork) ReferenceRepository() ReferenceRepository {
	return m.ReferenceRepo
}

func (m *MockUnitOfWork) MetricsRepository() MetricsRepository {
	return m.MetricsRepo
}

func (m *MockUnitOfWork) BatchCleanupRepository() BatchCleanupRepository {
	return m.BatchCleanupRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.Bus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockLedger is a mock implementation of Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) StartRun(ctx context.Context, batchID string, runDate time.Time) error {
	return m.Called(ctx, batchID, runDate).Error(0)
}

func (m *MockLedger) EndRun(ctx context.Context, batchID string, status models.RunStatus, message string) error {
	return m.Called(ctx, batchID, status, message).Error(0)
}

func (m *MockLedger) LogLoadStat(ctx context.Context, batchID, tableName string, rows int64) error {
	return m.Called(ctx, batchID, tableName, rows).Error(0)
}

func (m *MockLedger) GetRun(ctx context.Context, batchID string) (*models.BatchRun, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchRun), args.Error(1)
}

func (m *MockLedger) LoadStats(ctx context.Context, batchID string) ([]*models.LoadStat, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LoadStat), args.Error(1)
}

func (m *MockLedger) StartStep(ctx context.Context, batchID string, step models.Step) error {
	return m.Called(ctx, batchID, step).Error(0)
}

func (m *MockLedger) CompleteStep(ctx context.Context, batchID string, step models.Step) error {
	return m.Called(ctx, batchID, step).Error(0)
}

func (m *MockLedger) FailStep(ctx context.Context, batchID string, step models.Step, message string) error {
	return m.Called(ctx, batchID, step, message).Error(0)
}

func (m *MockLedger) SkipStep(ctx context.Context, batchID string, step models.Step, reason string) error {
	return m.Called(ctx, batchID, step, reason).Error(0)
}

func (m *MockLedger) FailedStep(ctx context.Context, batchID string) (models.Step, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(models.Step), args.Error(1)
}

func (m *MockLedger) CompletedSteps(ctx context.Context, batchID string) ([]models.Step, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Step), args.Error(1)
}

func (m *MockLedger) BatchStatus(ctx context.Context, batchID string) ([]*models.StepExecution, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StepExecution), args.Error(1)
}

func (m *MockLedger) CleanupPartialExecution(ctx context.Context, batchID string, fromStep models.Step) (map[string]int64, error) {
	args := m.Called(ctx, batchID, fromStep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockQualityGate is a mock implementation of QualityGate
type MockQualityGate struct {
	mock.Mock
}

func (m *MockQualityGate) Check(ctx context.Context, dayDir string) (bool, error) {
	args := m.Called(ctx, dayDir)
	return args.Bool(0), args.Error(1)
}

// MockStagingLoader is a mock implementation of StagingLoader
type MockStagingLoader struct {
	mock.Mock
}

func (m *MockStagingLoader) LoadDay(ctx context.Context, dayDir, batchID string) (*StagingResult, error) {
	args := m.Called(ctx, dayDir, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StagingResult), args.Error(1)
}

// MockCleanBuilder is a mock implementation of CleanBuilder
type MockCleanBuilder struct {
	mock.Mock
}

func (m *MockCleanBuilder) Build(ctx context.Context, runDate time.Time) (*models.CleanSummary, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CleanSummary), args.Error(1)
}

// MockReferenceLoader is a mock implementation of ReferenceLoader
type MockReferenceLoader struct {
	mock.Mock
}

func (m *MockReferenceLoader) Load(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockFactBuilder is a mock implementation of FactBuilder
type MockFactBuilder struct {
	mock.Mock
}

func (m *MockFactBuilder) Build(ctx context.Context, runDate time.Time, batchID string) (int64, error) {
	args := m.Called(ctx, runDate, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFactBuilder) Enriched(ctx context.Context, runDate time.Time) ([]*models.EnrichedPerformance, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EnrichedPerformance), args.Error(1)
}

func (m *MockFactBuilder) List(ctx context.Context, runDate time.Time) ([]*models.ApplicationPerformance, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ApplicationPerformance), args.Error(1)
}

// MockMetricsEngine is a mock implementation of MetricsEngine
type MockMetricsEngine struct {
	mock.Mock
}

func (m *MockMetricsEngine) Scorecard(ctx context.Context, runDate time.Time, version string) (*models.ScorecardMetrics, error) {
	args := m.Called(ctx, runDate, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScorecardMetrics), args.Error(1)
}

func (m *MockMetricsEngine) Breakdown(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScorecardMetrics), args.Error(1)
}

func (m *MockMetricsEngine) ExportBreakdown(ctx context.Context, runDate time.Time, dir string) ([]string, error) {
	args := m.Called(ctx, runDate, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMetricsEngine) Compare(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error) {
	args := m.Called(ctx, runDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScorecardMetrics), args.Error(1)
}

// MockMetricsWriter is a mock implementation of MetricsWriter
type MockMetricsWriter struct {
	mock.Mock
}

func (m *MockMetricsWriter) Write(dir string, runDate time.Time, rows []*models.ScorecardMetrics) (string, error) {
	args := m.Called(dir, runDate, rows)
	return args.String(0), args.Error(1)
}
