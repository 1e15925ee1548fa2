package service

import (
	"context"
	"fmt"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

type referenceLoader struct {
	uowFactory UnitOfWorkFactory
	data       *models.ReferenceData
}

// NewReferenceLoader creates a loader for the dimension tables.
// A nil data set loads the default reference rows.
func NewReferenceLoader(uowFactory UnitOfWorkFactory, data *models.ReferenceData) ReferenceLoader {
	if data == nil {
		data = models.DefaultReferenceData()
	}
	return &referenceLoader{uowFactory: uowFactory, data: data}
}

func (l *referenceLoader) Load(ctx context.Context) error {
	err := withUnitOfWork(ctx, l.uowFactory, func(uow UnitOfWork) error {
		return uow.ReferenceRepository().ReplaceAll(ctx, l.data)
	})
	if err != nil {
		return fmt.Errorf("failed to load reference tables: %w", err)
	}

	log.WithFields(log.Fields{
		"products":   len(l.data.Products),
		"channels":   len(l.data.Channels),
		"segments":   len(l.data.Segments),
		"scorecards": len(l.data.Scorecards),
	}).Info("Reference tables loaded")
	return nil
}
