package repository

import (
	"context"
	"errors"
	"fmt"

	"scorecard/database"
	"scorecard/events"
	"scorecard/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	batchRunRepo     service.BatchRunRepository
	stepExecRepo     service.StepExecutionRepository
	stagingRepo      service.StagingRepository
	cleanRepo        service.CleanRepository
	factRepo         service.FactRepository
	referenceRepo    service.ReferenceRepository
	metricsRepo      service.MetricsRepository
	batchCleanupRepo service.BatchCleanupRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.batchRunRepo = newBatchRunRepositoryWithTx(tx)
	u.stepExecRepo = newStepExecutionRepositoryWithTx(tx)
	u.stagingRepo = newStagingRepositoryWithTx(tx)
	u.cleanRepo = newCleanRepositoryWithTx(tx)
	u.factRepo = newFactRepositoryWithTx(tx)
	u.referenceRepo = newReferenceRepositoryWithTx(tx)
	u.metricsRepo = newMetricsRepositoryWithTx(tx)
	u.batchCleanupRepo = newBatchCleanupRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func (u *unitOfWork) BatchRunRepository() service.BatchRunRepository {
	if u.batchRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.batchRunRepo
}

func (u *unitOfWork) StepExecutionRepository() service.StepExecutionRepository {
	if u.stepExecRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.stepExecRepo
}

func (u *unitOfWork) StagingRepository() service.StagingRepository {
	if u.stagingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.stagingRepo
}

func (u *unitOfWork) CleanRepository() service.CleanRepository {
	if u.cleanRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.cleanRepo
}

func (u *unitOfWork) FactRepository() service.FactRepository {
	if u.factRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.factRepo
}

func (u *unitOfWork) ReferenceRepository() service.ReferenceRepository {
	if u.referenceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.referenceRepo
}

func (u *unitOfWork) MetricsRepository() service.MetricsRepository {
	if u.metricsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.metricsRepo
}

func (u *unitOfWork) BatchCleanupRepository() service.BatchCleanupRepository {
	if u.batchCleanupRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.batchCleanupRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
