package service

import (
	"context"
	"fmt"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

type factBuilder struct {
	uowFactory UnitOfWorkFactory
}

// NewFactBuilder creates the application performance fact builder
func NewFactBuilder(uowFactory UnitOfWorkFactory) FactBuilder {
	return &factBuilder{uowFactory: uowFactory}
}

func (b *factBuilder) Build(ctx context.Context, runDate time.Time, batchID string) (int64, error) {
	day := models.NormalizeRunDate(runDate)

	var rows int64
	err := withUnitOfWork(ctx, b.uowFactory, func(uow UnitOfWork) error {
		var err error
		rows, err = uow.FactRepository().Rebuild(ctx, day, batchID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to build fact table for %s: %w", models.FormatRunDate(day), err)
	}

	log.WithFields(log.Fields{
		"runDate": models.FormatRunDate(day),
		"batchID": batchID,
		"rows":    rows,
	}).Info("Application performance built")
	return rows, nil
}

// Enriched joins the reference dimensions onto the fact rows.
// When the enrichment query fails the base rows are returned without enrichment.
func (b *factBuilder) Enriched(ctx context.Context, runDate time.Time) ([]*models.EnrichedPerformance, error) {
	day := models.NormalizeRunDate(runDate)

	var enriched []*models.EnrichedPerformance
	err := readUnitOfWork(ctx, b.uowFactory, func(uow UnitOfWork) error {
		var err error
		enriched, err = uow.FactRepository().ListEnriched(ctx, day)
		return err
	})
	if err == nil {
		return enriched, nil
	}

	log.WithFields(log.Fields{
		"runDate": models.FormatRunDate(day),
		"error":   err,
	}).Warn("Enrichment failed, returning base performance rows")

	base, err := b.List(ctx, day)
	if err != nil {
		return nil, err
	}

	out := make([]*models.EnrichedPerformance, len(base))
	for i, f := range base {
		out[i] = &models.EnrichedPerformance{ApplicationPerformance: *f}
	}
	return out, nil
}

func (b *factBuilder) List(ctx context.Context, runDate time.Time) ([]*models.ApplicationPerformance, error) {
	var facts []*models.ApplicationPerformance
	err := readUnitOfWork(ctx, b.uowFactory, func(uow UnitOfWork) error {
		var err error
		facts, err = uow.FactRepository().List(ctx, models.NormalizeRunDate(runDate))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list application performance: %w", err)
	}
	return facts, nil
}
