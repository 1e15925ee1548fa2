package service

import (
	"time"

	"scorecard/models"

	"github.com/stretchr/testify/mock"
)

const testBatchID = "batch-0001"

var testRunDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// newCommittingUoW returns a unit of work expecting Begin, Commit and the deferred Rollback
func newCommittingUoW() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)
	return uow
}

// newRollbackUoW returns a unit of work expecting Begin and Rollback only
func newRollbackUoW() *MockUnitOfWork {
	uow := new(MockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	return uow
}

func factoryFor(uows ...*MockUnitOfWork) *MockUnitOfWorkFactory {
	f := new(MockUnitOfWorkFactory)
	for _, u := range uows {
		f.On("Create").Return(u).Once()
	}
	return f
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func stepExec(step models.Step, status models.StepStatus, took time.Duration) *models.StepExecution {
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	return &models.StepExecution{
		ID:        1,
		BatchID:   testBatchID,
		StepName:  step,
		Status:    status,
		StartTime: start,
		EndTime:   timePtr(start.Add(took)),
	}
}
