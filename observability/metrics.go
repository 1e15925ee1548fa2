// Package observability records pipeline run metrics from the event bus.
package observability

import (
	"context"
	"fmt"

	"scorecard/events"
	"scorecard/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"
)

const namespace = "scorecard"

// Config holds metrics configuration
type Config struct {
	PushgatewayURL string
	Job            string
}

// ApplyDefaults sets default values for metrics config
func (c *Config) ApplyDefaults() {
	if c.Job == "" {
		c.Job = "scorecard_pipeline"
	}
}

// Metrics holds the pipeline metrics
type Metrics struct {
	// Counters
	StepsTotal *prometheus.CounterVec
	RowsStaged *prometheus.CounterVec
	RunsTotal  *prometheus.CounterVec

	// Histograms
	StepDuration *prometheus.HistogramVec
	RunDuration  prometheus.Histogram

	// Gauges
	StepsActive    prometheus.Gauge
	LastRunSuccess prometheus.Gauge

	cfg      Config
	registry *prometheus.Registry
}

// New creates and registers the pipeline metrics
func New(cfg Config) *Metrics {
	cfg.ApplyDefaults()

	m := &Metrics{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
	}

	m.StepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Step attempts by terminal status",
		},
		[]string{"step", "status"},
	)

	m.RowsStaged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_staged_total",
			Help:      "Rows appended to staging tables",
		},
		[]string{"table"},
	)

	m.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Batch runs by terminal status",
		},
		[]string{"status"},
	)

	m.StepsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "steps_active",
			Help:      "Step attempts started but not yet finished",
		},
	)

	m.StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of finished step attempts",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"step"},
	)

	m.RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of ended batch runs",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	m.LastRunSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last ended run succeeded, 0 otherwise",
		},
	)

	m.registry.MustRegister(
		m.StepsTotal,
		m.RowsStaged,
		m.RunsTotal,
		m.StepsActive,
		m.StepDuration,
		m.RunDuration,
		m.LastRunSuccess,
	)
	return m
}

// Registry returns the registry holding the pipeline metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Subscribe wires the metrics to pipeline lifecycle events
func (m *Metrics) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeStepStarted, m.handleStepStarted)
	bus.Subscribe(events.EventTypeStepFinished, m.handleStepFinished)
	bus.Subscribe(events.EventTypeStagingLoaded, m.handleStagingLoaded)
	bus.Subscribe(events.EventTypeRunFinished, m.handleRunFinished)
}

func (m *Metrics) handleStepStarted(_ context.Context, event events.Event) {
	if _, ok := event.(events.StepStartedEvent); ok {
		m.StepsActive.Inc()
	}
}

func (m *Metrics) handleStepFinished(_ context.Context, event events.Event) {
	ev, ok := event.(events.StepFinishedEvent)
	if !ok {
		return
	}
	m.StepsActive.Dec()
	m.StepsTotal.WithLabelValues(string(ev.Step), string(ev.Status)).Inc()
	m.StepDuration.WithLabelValues(string(ev.Step)).Observe(ev.Duration.Seconds())
}

func (m *Metrics) handleStagingLoaded(_ context.Context, event events.Event) {
	ev, ok := event.(events.StagingLoadedEvent)
	if !ok {
		return
	}
	m.RowsStaged.WithLabelValues(ev.Table).Add(float64(ev.Rows))
}

func (m *Metrics) handleRunFinished(_ context.Context, event events.Event) {
	ev, ok := event.(events.RunFinishedEvent)
	if !ok {
		return
	}
	m.RunsTotal.WithLabelValues(string(ev.Status)).Inc()
	m.RunDuration.Observe(ev.Duration.Seconds())
	if ev.Status == models.RunStatusSuccess {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
}

// Push sends the collected metrics to the configured pushgateway.
// It is a no-op when no gateway is configured.
func (m *Metrics) Push(ctx context.Context, batchID string) error {
	if m.cfg.PushgatewayURL == "" {
		return nil
	}

	err := push.New(m.cfg.PushgatewayURL, m.cfg.Job).
		Gatherer(m.registry).
		Grouping("batch_id", batchID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	log.WithFields(log.Fields{
		"gateway": m.cfg.PushgatewayURL,
		"job":     m.cfg.Job,
	}).Debug("Pushed run metrics")
	return nil
}
