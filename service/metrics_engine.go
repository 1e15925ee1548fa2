package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

type metricsEngine struct {
	uowFactory UnitOfWorkFactory
	writers    []MetricsWriter
}

// NewMetricsEngine creates a metrics engine exporting through the given writers
func NewMetricsEngine(uowFactory UnitOfWorkFactory, writers ...MetricsWriter) MetricsEngine {
	return &metricsEngine{uowFactory: uowFactory, writers: writers}
}

func (e *metricsEngine) Scorecard(ctx context.Context, runDate time.Time, version string) (*models.ScorecardMetrics, error) {
	var m *models.ScorecardMetrics
	err := readUnitOfWork(ctx, e.uowFactory, func(uow UnitOfWork) error {
		var err error
		m, err = uow.MetricsRepository().Scorecard(ctx, models.NormalizeRunDate(runDate), version)
		return err
	})
	return m, err
}

func (e *metricsEngine) Breakdown(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error) {
	var rows []*models.ScorecardMetrics
	err := readUnitOfWork(ctx, e.uowFactory, func(uow UnitOfWork) error {
		var err error
		rows, err = uow.MetricsRepository().Breakdown(ctx, models.NormalizeRunDate(runDate))
		return err
	})
	return rows, err
}

// ExportBreakdown writes the dimensional breakdown with every configured writer
func (e *metricsEngine) ExportBreakdown(ctx context.Context, runDate time.Time, dir string) ([]string, error) {
	rows, err := e.Breakdown(ctx, runDate)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, w := range e.writers {
		path, err := w.Write(dir, models.NormalizeRunDate(runDate), rows)
		if err != nil {
			return nil, fmt.Errorf("failed to export metrics: %w", err)
		}
		paths = append(paths, path)
	}

	log.WithFields(log.Fields{
		"runDate": models.FormatRunDate(runDate),
		"groups":  len(rows),
		"files":   paths,
	}).Info("Scorecard metrics exported")
	return paths, nil
}

// Compare returns the summary metrics of every scorecard version in a run date
func (e *metricsEngine) Compare(ctx context.Context, runDate time.Time) ([]*models.ScorecardMetrics, error) {
	day := models.NormalizeRunDate(runDate)

	var out []*models.ScorecardMetrics
	err := readUnitOfWork(ctx, e.uowFactory, func(uow UnitOfWork) error {
		repo := uow.MetricsRepository()
		versions, err := repo.Versions(ctx, day)
		if err != nil {
			return err
		}
		for _, v := range versions {
			m, err := repo.Scorecard(ctx, day, v)
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compare scorecards: %w", err)
	}
	return out, nil
}
