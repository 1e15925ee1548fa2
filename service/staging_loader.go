package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scorecard/events"
	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

type stagingLoader struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewStagingLoader creates a loader that appends daily drops to staging
func NewStagingLoader(uowFactory UnitOfWorkFactory) StagingLoader {
	return &stagingLoader{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// LoadDay parses every known file present in dayDir and appends them in one transaction
func (s *stagingLoader) LoadDay(ctx context.Context, dayDir, batchID string) (*StagingResult, error) {
	info, err := os.Stat(dayDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDayDirNotFound, dayDir)
	}

	runDate, err := models.ParseRunDate(filepath.Base(filepath.Clean(dayDir)))
	if err != nil {
		return nil, err
	}

	result := &StagingResult{RunDate: runDate, Loaded: make(map[string]int64)}

	// Parse everything before opening the transaction
	var batches []*models.StagingBatch
	for _, entity := range models.Entities {
		path := filepath.Join(dayDir, entity.FileName())
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.WithFields(log.Fields{
				"batchID": batchID,
				"file":    entity.FileName(),
			}).Debug("Source file absent, skipping")
			result.Skipped = append(result.Skipped, entity.StagingTable())
			continue
		}

		batch, err := ReadStagingFile(entity, path)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	ingestedAt := s.now().UTC()

	err = withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		repo := uow.StagingRepository()
		for _, batch := range batches {
			table := batch.Entity.StagingTable()

			if err := repo.EnsureColumns(ctx, batch.Entity, batch.Columns); err != nil {
				return err
			}

			n, err := repo.Append(ctx, batch, models.Lineage{
				RunDate:    runDate,
				SourceFile: batch.SourceFile,
				IngestedAt: ingestedAt,
				BatchID:    batchID,
			})
			if err != nil {
				return err
			}

			if err := RecordLoadStat(ctx, uow, batchID, table, n); err != nil {
				return err
			}

			uow.EventBus().Publish(events.StagingLoadedEvent{
				BatchID: batchID,
				RunDate: runDate,
				Table:   table,
				Rows:    n,
			})
			result.Loaded[table] = n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load staging for %s: %w", models.FormatRunDate(runDate), err)
	}

	log.WithFields(log.Fields{
		"batchID": batchID,
		"runDate": models.FormatRunDate(runDate),
		"loaded":  result.Loaded,
		"skipped": result.Skipped,
	}).Info("Staging load complete")

	return result, nil
}
