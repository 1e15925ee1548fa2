package service

import (
	"context"
	"fmt"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

type cleanBuilder struct {
	uowFactory UnitOfWorkFactory
}

// NewCleanBuilder creates the latest-wins clean layer builder
func NewCleanBuilder(uowFactory UnitOfWorkFactory) CleanBuilder {
	return &cleanBuilder{uowFactory: uowFactory}
}

// Build rebuilds all five clean tables for a run date in one transaction.
// A non-blank numeric value that cannot be cast fails the whole run date.
func (b *cleanBuilder) Build(ctx context.Context, runDate time.Time) (*models.CleanSummary, error) {
	day := models.NormalizeRunDate(runDate)
	summary := &models.CleanSummary{RunDate: day, Rows: make(map[string]int64)}

	err := withUnitOfWork(ctx, b.uowFactory, func(uow UnitOfWork) error {
		repo := uow.CleanRepository()

		for _, entity := range models.Entities {
			bad, err := repo.FindMalformed(ctx, entity, day)
			if err != nil {
				return err
			}
			if bad != nil {
				return bad
			}
		}

		for _, entity := range models.Entities {
			n, err := repo.Rebuild(ctx, entity, day)
			if err != nil {
				return err
			}
			summary.Rows[entity.CleanTable()] = n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build clean tables for %s: %w", models.FormatRunDate(day), err)
	}

	log.WithFields(log.Fields{
		"runDate": models.FormatRunDate(day),
		"rows":    summary.Rows,
	}).Info("Clean tables rebuilt")

	return summary, nil
}
