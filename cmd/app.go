package cmd

import (
	"context"
	"fmt"
	"time"

	"scorecard/config"
	"scorecard/database"
	"scorecard/events"
	"scorecard/export"
	"scorecard/notify"
	"scorecard/observability"
	"scorecard/quality"
	"scorecard/repository"
	"scorecard/service"

	log "github.com/sirupsen/logrus"
)

const eventDrainTimeout = 10 * time.Second

// app holds the wired services for one command invocation
type app struct {
	db       *database.DB
	eventBus *events.Bus
	metrics  *observability.Metrics

	ledger   service.Ledger
	engine   service.MetricsEngine
	pipeline service.Pipeline
}

// databaseURL resolves the connection URL from the configuration
func databaseURL(cfg *config.Config) (string, error) {
	return database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
}

// newApp connects to the database and wires every service. Close must be called.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	dbURL, err := databaseURL(cfg)
	if err != nil {
		return nil, err
	}

	log.WithField("database", database.RedactURL(dbURL)).Info("Connecting to database...")
	db, err := database.NewConnection(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()

	metrics := observability.New(observability.Config{PushgatewayURL: cfg.PushgatewayURL})
	metrics.Subscribe(eventBus)

	if cfg.DiscordWebhookURL != "" {
		notifier, err := notify.NewDiscordNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			db.Close()
			return nil, err
		}
		notifier.Subscribe(eventBus)
	}

	// An unset schema must stay a nil interface so the quality step is skipped
	var gate service.QualityGate
	if cfg.QualitySchema != "" {
		schema, err := quality.LoadSchema(cfg.QualitySchema)
		if err != nil {
			db.Close()
			return nil, err
		}
		gate = quality.NewChecker(schema, cfg.QualityReportDir, cfg.CheckDuplicateIDs)
	}

	writers := []service.MetricsWriter{export.NewCSVWriter()}
	if cfg.ExportXLSX {
		writers = append(writers, export.NewXLSXWriter())
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	ledger := service.NewLedger(uowFactory)
	engine := service.NewMetricsEngine(uowFactory, writers...)

	pipeline := service.NewPipeline(
		ledger,
		gate,
		service.NewStagingLoader(uowFactory),
		service.NewCleanBuilder(uowFactory),
		service.NewReferenceLoader(uowFactory, nil),
		service.NewFactBuilder(uowFactory),
		engine,
		service.PipelineConfig{
			DataDir:       cfg.DataDir,
			OutputDir:     cfg.OutputDir,
			StrictQuality: cfg.StrictQuality,
		},
	)

	return &app{
		db:       db,
		eventBus: eventBus,
		metrics:  metrics,
		ledger:   ledger,
		engine:   engine,
		pipeline: pipeline,
	}, nil
}

// Close drains pending event handlers, pushes metrics for batchID and closes the pool
func (a *app) Close(batchID string) {
	ctx, cancel := context.WithTimeout(context.Background(), eventDrainTimeout)
	defer cancel()

	if err := a.eventBus.Wait(ctx); err != nil {
		log.WithError(err).Warn("Timed out waiting for event handlers")
	}
	if batchID != "" {
		if err := a.metrics.Push(ctx, batchID); err != nil {
			log.WithError(err).Warn("Failed to push run metrics")
		}
	}
	a.db.Close()
}
