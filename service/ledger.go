package service

import (
	"context"
	"fmt"
	"time"

	"scorecard/events"
	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

// layerTables maps a step to the batch-tagged tables it writes
var layerTables = map[models.Step][]string{
	models.StepStage: stagingTables(),
	models.StepClean: cleanTables(),
	models.StepFact:  {"application_performance"},
}

func stagingTables() []string {
	tables := make([]string, len(models.Entities))
	for i, e := range models.Entities {
		tables[i] = e.StagingTable()
	}
	return tables
}

func cleanTables() []string {
	tables := make([]string, len(models.Entities))
	for i, e := range models.Entities {
		tables[i] = e.CleanTable()
	}
	return tables
}

type ledger struct {
	uowFactory UnitOfWorkFactory
}

// NewLedger creates the run and step execution ledger
func NewLedger(uowFactory UnitOfWorkFactory) Ledger {
	return &ledger{uowFactory: uowFactory}
}

func (l *ledger) StartRun(ctx context.Context, batchID string, runDate time.Time) error {
	return withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		run, err := uow.BatchRunRepository().Upsert(ctx, batchID, runDate)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"batchID": batchID,
			"runDate": models.FormatRunDate(run.RunDate),
		}).Info("Run started")
		return nil
	})
}

func (l *ledger) EndRun(ctx context.Context, batchID string, status models.RunStatus, message string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("invalid terminal status %q", status)
	}

	return withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		repo := uow.BatchRunRepository()

		ended, err := repo.Finish(ctx, batchID, status, message)
		if err != nil {
			return err
		}

		run, err := repo.GetByID(ctx, batchID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, batchID)
		}
		if !ended {
			return fmt.Errorf("%w: %s is %s", ErrRunAlreadyEnded, batchID, run.Status)
		}

		var duration time.Duration
		if run.EndedAt != nil {
			duration = run.EndedAt.Sub(run.StartedAt)
		}
		uow.EventBus().Publish(events.RunFinishedEvent{
			BatchID:  batchID,
			RunDate:  run.RunDate,
			Status:   status,
			Message:  message,
			Duration: duration,
		})

		entry := log.WithFields(log.Fields{
			"batchID":  batchID,
			"status":   status,
			"duration": duration,
		})
		if status == models.RunStatusFailed {
			entry.WithField("message", message).Error("Run failed")
		} else {
			entry.Info("Run finished")
		}
		return nil
	})
}

func (l *ledger) LogLoadStat(ctx context.Context, batchID, tableName string, rows int64) error {
	return withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		return RecordLoadStat(ctx, uow, batchID, tableName, rows)
	})
}

func (l *ledger) GetRun(ctx context.Context, batchID string) (*models.BatchRun, error) {
	var run *models.BatchRun
	err := readUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		var err error
		run, err = uow.BatchRunRepository().GetByID(ctx, batchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, batchID)
	}
	return run, nil
}

func (l *ledger) LoadStats(ctx context.Context, batchID string) ([]*models.LoadStat, error) {
	var stats []*models.LoadStat
	err := readUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		var err error
		stats, err = uow.BatchRunRepository().ListLoadStats(ctx, batchID)
		return err
	})
	return stats, err
}

func (l *ledger) StartStep(ctx context.Context, batchID string, step models.Step) error {
	return withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		if _, err := uow.StepExecutionRepository().Insert(ctx, batchID, step); err != nil {
			return err
		}
		uow.EventBus().Publish(events.StepStartedEvent{BatchID: batchID, Step: step})

		log.WithFields(log.Fields{
			"batchID": batchID,
			"step":    step,
		}).Info("Step started")
		return nil
	})
}

func (l *ledger) CompleteStep(ctx context.Context, batchID string, step models.Step) error {
	return l.closeStep(ctx, batchID, step, models.StepStatusCompleted, nil)
}

func (l *ledger) FailStep(ctx context.Context, batchID string, step models.Step, message string) error {
	return l.closeStep(ctx, batchID, step, models.StepStatusFailed, &message)
}

func (l *ledger) SkipStep(ctx context.Context, batchID string, step models.Step, reason string) error {
	return l.closeStep(ctx, batchID, step, models.StepStatusSkipped, &reason)
}

func (l *ledger) closeStep(ctx context.Context, batchID string, step models.Step, status models.StepStatus, message *string) error {
	return withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		exec, err := uow.StepExecutionRepository().CloseLatestOpen(ctx, batchID, step, status, message)
		if err != nil {
			return err
		}
		if exec == nil {
			return fmt.Errorf("%w: %s/%s", ErrNoActiveStep, batchID, step)
		}

		ev := events.StepFinishedEvent{
			BatchID:  batchID,
			Step:     step,
			Status:   status,
			Duration: exec.Duration(),
		}
		if message != nil {
			ev.Error = *message
		}
		uow.EventBus().Publish(ev)

		entry := log.WithFields(log.Fields{
			"batchID":  batchID,
			"step":     step,
			"status":   status,
			"duration": ev.Duration,
		})
		switch status {
		case models.StepStatusFailed:
			entry.WithField("error", ev.Error).Error("Step failed")
		case models.StepStatusSkipped:
			entry.WithField("reason", ev.Error).Warn("Step skipped")
		default:
			entry.Info("Step completed")
		}
		return nil
	})
}

func (l *ledger) FailedStep(ctx context.Context, batchID string) (models.Step, error) {
	var step models.Step
	err := readUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		var err error
		step, err = uow.StepExecutionRepository().FirstFailed(ctx, batchID)
		return err
	})
	return step, err
}

func (l *ledger) CompletedSteps(ctx context.Context, batchID string) ([]models.Step, error) {
	var steps []models.Step
	err := readUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		var err error
		steps, err = uow.StepExecutionRepository().Completed(ctx, batchID)
		return err
	})
	return steps, err
}

func (l *ledger) BatchStatus(ctx context.Context, batchID string) ([]*models.StepExecution, error) {
	var execs []*models.StepExecution
	err := readUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		var err error
		execs, err = uow.StepExecutionRepository().ListByBatch(ctx, batchID)
		return err
	})
	return execs, err
}

func (l *ledger) CleanupPartialExecution(ctx context.Context, batchID string, fromStep models.Step) (map[string]int64, error) {
	steps := models.PipelineSteps
	if fromStep != "" {
		steps = models.StepsFrom(fromStep)
		if steps == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, fromStep)
		}
	}

	var tables []string
	for _, step := range steps {
		tables = append(tables, layerTables[step]...)
	}

	var deleted map[string]int64
	err := withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		var err error
		deleted, err = uow.BatchCleanupRepository().DeleteBatchRows(ctx, tables, batchID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clean up batch %s: %w", batchID, err)
	}

	log.WithFields(log.Fields{
		"batchID":  batchID,
		"fromStep": fromStep,
		"deleted":  deleted,
	}).Info("Cleaned up partial execution")
	return deleted, nil
}

// RecordLoadStat appends a load stat within the caller's unit of work.
// This is the single entry point for load stat writes.
func RecordLoadStat(ctx context.Context, uow UnitOfWork, batchID, tableName string, rows int64) error {
	if rows < 0 {
		return fmt.Errorf("invalid inserted row count %d for %s", rows, tableName)
	}
	if err := uow.BatchRunRepository().InsertLoadStat(ctx, batchID, tableName, rows); err != nil {
		return fmt.Errorf("failed to record load stat: %w", err)
	}
	return nil
}
