package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"scorecard/events"
	"scorecard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedger_StartRun(t *testing.T) {
	ctx := context.Background()

	runRepo := new(MockBatchRunRepository)
	uow := newCommittingUoW()
	uow.BatchRunRepo = runRepo
	factory := factoryFor(uow)

	runRepo.On("Upsert", ctx, testBatchID, testRunDate).Return(&models.BatchRun{
		BatchID: testBatchID,
		RunDate: testRunDate,
		Status:  models.RunStatusStarted,
	}, nil)

	err := NewLedger(factory).StartRun(ctx, testBatchID, testRunDate)

	require.NoError(t, err)
	runRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestLedger_EndRun_InvalidStatus(t *testing.T) {
	factory := new(MockUnitOfWorkFactory)

	err := NewLedger(factory).EndRun(context.Background(), testBatchID, models.RunStatusStarted, "")

	require.Error(t, err)
	factory.AssertNotCalled(t, "Create")
}

func TestLedger_EndRun_Success(t *testing.T) {
	ctx := context.Background()

	runRepo := new(MockBatchRunRepository)
	bus := new(MockEventPublisher)
	uow := newCommittingUoW()
	uow.BatchRunRepo = runRepo
	uow.Bus = bus
	factory := factoryFor(uow)

	started := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	runRepo.On("Finish", ctx, testBatchID, models.RunStatusSuccess, "done").Return(true, nil)
	runRepo.On("GetByID", ctx, testBatchID).Return(&models.BatchRun{
		BatchID:   testBatchID,
		RunDate:   testRunDate,
		StartedAt: started,
		EndedAt:   timePtr(started.Add(90 * time.Second)),
		Status:    models.RunStatusSuccess,
		Message:   strPtr("done"),
	}, nil)
	bus.On("Publish", events.RunFinishedEvent{
		BatchID:  testBatchID,
		RunDate:  testRunDate,
		Status:   models.RunStatusSuccess,
		Message:  "done",
		Duration: 90 * time.Second,
	}).Return()

	err := NewLedger(factory).EndRun(ctx, testBatchID, models.RunStatusSuccess, "done")

	require.NoError(t, err)
	runRepo.AssertExpectations(t)
	bus.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestLedger_EndRun_UnknownBatch(t *testing.T) {
	ctx := context.Background()

	runRepo := new(MockBatchRunRepository)
	uow := newRollbackUoW()
	uow.BatchRunRepo = runRepo
	factory := factoryFor(uow)

	runRepo.On("Finish", ctx, "missing", models.RunStatusFailed, "boom").Return(false, nil)
	runRepo.On("GetByID", ctx, "missing").Return(nil, nil)

	err := NewLedger(factory).EndRun(ctx, "missing", models.RunStatusFailed, "boom")

	assert.ErrorIs(t, err, ErrRunNotFound)
	uow.AssertNotCalled(t, "Commit")
}

func TestLedger_EndRun_AlreadyEnded(t *testing.T) {
	ctx := context.Background()

	runRepo := new(MockBatchRunRepository)
	uow := newRollbackUoW()
	uow.BatchRunRepo = runRepo
	factory := factoryFor(uow)

	runRepo.On("Finish", ctx, testBatchID, models.RunStatusFailed, "late").Return(false, nil)
	runRepo.On("GetByID", ctx, testBatchID).Return(&models.BatchRun{
		BatchID: testBatchID,
		Status:  models.RunStatusSuccess,
	}, nil)

	err := NewLedger(factory).EndRun(ctx, testBatchID, models.RunStatusFailed, "late")

	assert.ErrorIs(t, err, ErrRunAlreadyEnded)
	uow.AssertNotCalled(t, "Commit")
}

func TestLedger_GetRun_NotFound(t *testing.T) {
	ctx := context.Background()

	runRepo := new(MockBatchRunRepository)
	uow := newRollbackUoW()
	uow.BatchRunRepo = runRepo

	runRepo.On("GetByID", ctx, "missing").Return(nil, nil)

	run, err := NewLedger(factoryFor(uow)).GetRun(ctx, "missing")

	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLedger_StartStep_PublishesEvent(t *testing.T) {
	ctx := context.Background()

	stepRepo := new(MockStepExecutionRepository)
	bus := new(MockEventPublisher)
	uow := newCommittingUoW()
	uow.StepExecutionRepo = stepRepo
	uow.Bus = bus

	stepRepo.On("Insert", ctx, testBatchID, models.StepClean).
		Return(&models.StepExecution{BatchID: testBatchID, StepName: models.StepClean, Status: models.StepStatusStarted}, nil)
	bus.On("Publish", events.StepStartedEvent{BatchID: testBatchID, Step: models.StepClean}).Return()

	err := NewLedger(factoryFor(uow)).StartStep(ctx, testBatchID, models.StepClean)

	require.NoError(t, err)
	stepRepo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestLedger_CompleteStep_NoActiveAttempt(t *testing.T) {
	ctx := context.Background()

	stepRepo := new(MockStepExecutionRepository)
	uow := newRollbackUoW()
	uow.StepExecutionRepo = stepRepo

	stepRepo.On("CloseLatestOpen", ctx, testBatchID, models.StepFact, models.StepStatusCompleted, (*string)(nil)).
		Return(nil, nil)

	err := NewLedger(factoryFor(uow)).CompleteStep(ctx, testBatchID, models.StepFact)

	assert.ErrorIs(t, err, ErrNoActiveStep)
	uow.AssertNotCalled(t, "Commit")
}

func TestLedger_FailStep_RecordsMessage(t *testing.T) {
	ctx := context.Background()

	stepRepo := new(MockStepExecutionRepository)
	bus := new(MockEventPublisher)
	uow := newCommittingUoW()
	uow.StepExecutionRepo = stepRepo
	uow.Bus = bus

	stepRepo.On("CloseLatestOpen", ctx, testBatchID, models.StepClean, models.StepStatusFailed,
		mock.MatchedBy(func(msg *string) bool { return msg != nil && *msg == "bad value" })).
		Return(stepExec(models.StepClean, models.StepStatusFailed, 2*time.Second), nil)
	bus.On("Publish", events.StepFinishedEvent{
		BatchID:  testBatchID,
		Step:     models.StepClean,
		Status:   models.StepStatusFailed,
		Duration: 2 * time.Second,
		Error:    "bad value",
	}).Return()

	err := NewLedger(factoryFor(uow)).FailStep(ctx, testBatchID, models.StepClean, "bad value")

	require.NoError(t, err)
	stepRepo.AssertExpectations(t)
	bus.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestLedger_FailedStep(t *testing.T) {
	ctx := context.Background()

	stepRepo := new(MockStepExecutionRepository)
	uow := newRollbackUoW()
	uow.StepExecutionRepo = stepRepo

	stepRepo.On("FirstFailed", ctx, testBatchID).Return(models.StepClean, nil)

	step, err := NewLedger(factoryFor(uow)).FailedStep(ctx, testBatchID)

	require.NoError(t, err)
	assert.Equal(t, models.StepClean, step)
}

func TestLedger_CleanupPartialExecution(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		fromStep models.Step
		tables   []string
	}{
		{
			name:     "from clean",
			fromStep: models.StepClean,
			tables: []string{
				"clean_applications", "clean_accounts", "clean_transactions", "clean_payments", "clean_delinquency",
				"application_performance",
			},
		},
		{
			name:     "from fact",
			fromStep: models.StepFact,
			tables:   []string{"application_performance"},
		},
		{
			name:     "from metrics deletes nothing",
			fromStep: models.StepMetrics,
			tables:   nil,
		},
		{
			name:     "all layers",
			fromStep: "",
			tables: []string{
				"stg_applications", "stg_accounts", "stg_transactions", "stg_payments", "stg_delinquency",
				"clean_applications", "clean_accounts", "clean_transactions", "clean_payments", "clean_delinquency",
				"application_performance",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanupRepo := new(MockBatchCleanupRepository)
			uow := newCommittingUoW()
			uow.BatchCleanupRepo = cleanupRepo

			deleted := map[string]int64{}
			cleanupRepo.On("DeleteBatchRows", ctx, tt.tables, testBatchID).Return(deleted, nil)

			got, err := NewLedger(factoryFor(uow)).CleanupPartialExecution(ctx, testBatchID, tt.fromStep)

			require.NoError(t, err)
			assert.Equal(t, deleted, got)
			cleanupRepo.AssertExpectations(t)
		})
	}
}

func TestLedger_CleanupPartialExecution_UnknownStep(t *testing.T) {
	factory := new(MockUnitOfWorkFactory)

	_, err := NewLedger(factory).CleanupPartialExecution(context.Background(), testBatchID, "publish")

	assert.ErrorIs(t, err, ErrUnknownStep)
	factory.AssertNotCalled(t, "Create")
}

func TestRecordLoadStat(t *testing.T) {
	ctx := context.Background()

	t.Run("negative rows rejected", func(t *testing.T) {
		uow := new(MockUnitOfWork)
		err := RecordLoadStat(ctx, uow, testBatchID, "stg_accounts", -1)
		assert.Error(t, err)
	})

	t.Run("repository error wrapped", func(t *testing.T) {
		runRepo := new(MockBatchRunRepository)
		uow := &MockUnitOfWork{BatchRunRepo: runRepo}
		repoErr := errors.New("fk violation")
		runRepo.On("InsertLoadStat", ctx, testBatchID, "stg_accounts", int64(3)).Return(repoErr)

		err := RecordLoadStat(ctx, uow, testBatchID, "stg_accounts", 3)
		assert.ErrorIs(t, err, repoErr)
	})
}
