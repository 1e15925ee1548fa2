package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scorecard/events"
	"scorecard/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForBus(t *testing.T, bus *events.Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Wait(ctx))
}

func TestMetrics_RecordsLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	m := New(Config{})
	m.Subscribe(bus)

	bus.Emit(ctx, events.StepStartedEvent{BatchID: "batch-1", Step: models.StepStage})
	waitForBus(t, bus)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StepsActive))

	bus.Emit(ctx, events.StagingLoadedEvent{BatchID: "batch-1", Table: "stg_applications", Rows: 200})
	bus.Emit(ctx, events.StagingLoadedEvent{BatchID: "batch-1", Table: "stg_accounts", Rows: 110})
	bus.Emit(ctx, events.StepFinishedEvent{
		BatchID:  "batch-1",
		Step:     models.StepStage,
		Status:   models.StepStatusCompleted,
		Duration: 1500 * time.Millisecond,
	})
	bus.Emit(ctx, events.RunFinishedEvent{BatchID: "batch-1", Status: models.RunStatusSuccess, Duration: 4 * time.Second})
	waitForBus(t, bus)

	assert.Equal(t, float64(0), testutil.ToFloat64(m.StepsActive))
	assert.Equal(t, float64(200), testutil.ToFloat64(m.RowsStaged.WithLabelValues("stg_applications")))
	assert.Equal(t, float64(110), testutil.ToFloat64(m.RowsStaged.WithLabelValues("stg_accounts")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StepsTotal.WithLabelValues("stage", "completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LastRunSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StepDuration))
}

func TestMetrics_FailedRunClearsSuccessGauge(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	m := New(Config{})
	m.Subscribe(bus)

	bus.Emit(ctx, events.RunFinishedEvent{BatchID: "batch-1", Status: models.RunStatusSuccess})
	waitForBus(t, bus)
	bus.Emit(ctx, events.RunFinishedEvent{BatchID: "batch-2", Status: models.RunStatusFailed, Message: "step clean failed"})
	waitForBus(t, bus)

	assert.Equal(t, float64(0), testutil.ToFloat64(m.LastRunSuccess))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
}

func TestMetrics_PushWithoutGatewayIsNoop(t *testing.T) {
	assert.NoError(t, New(Config{}).Push(context.Background(), "batch-1"))
}

func TestMetrics_Push(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := New(Config{PushgatewayURL: server.URL})
	m.RunsTotal.WithLabelValues("success").Inc()

	require.NoError(t, m.Push(context.Background(), "batch-1"))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/scorecard_pipeline/batch_id/batch-1", path)
}

func TestMetrics_PushError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := New(Config{PushgatewayURL: server.URL}).Push(context.Background(), "batch-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
