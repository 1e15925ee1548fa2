package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"scorecard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan StagingLoadedEvent, 1)
	mainBus.Subscribe(EventTypeStagingLoaded, func(ctx context.Context, event Event) {
		if loaded, ok := event.(StagingLoadedEvent); ok {
			eventReceived <- loaded
		} else {
			t.Errorf("Expected StagingLoadedEvent, got %T", event)
		}
	})

	testEvent := StagingLoadedEvent{
		BatchID: "batch-1",
		RunDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Table:   "stg_applications",
		Rows:    42,
	}
	transactionalBus.Publish(testEvent)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan StepFinishedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeStepFinished, func(ctx context.Context, event Event) {
		defer wg.Done()
		if finished, ok := event.(StepFinishedEvent); ok {
			eventsReceived <- finished
		}
	})

	steps := []models.Step{models.StepStage, models.StepClean, models.StepFact}
	for _, step := range steps {
		transactionalBus.Publish(StepFinishedEvent{BatchID: "batch-1", Step: step, Status: models.StepStatusCompleted})
	}

	assert.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()
	close(eventsReceived)

	// Order may vary because handlers run on their own goroutines
	seen := make(map[models.Step]bool)
	for ev := range eventsReceived {
		seen[ev.Step] = true
	}
	assert.Len(t, seen, 3)
	for _, step := range steps {
		assert.True(t, seen[step], "missing %s", step)
	}
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeRunFinished, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(RunFinishedEvent{BatchID: "batch-1", Status: models.RunStatusFailed})
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusWait(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	handled := 0
	bus.Subscribe(EventTypeStepStarted, func(ctx context.Context, event Event) {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		handled++
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		bus.Emit(context.Background(), StepStartedEvent{BatchID: "batch-1", Step: models.StepClean})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Wait(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, handled)
}

func TestBusHandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeRunFinished, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeRunFinished, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), RunFinishedEvent{BatchID: "batch-1", Status: models.RunStatusSuccess})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Wait(ctx))

	select {
	case <-delivered:
	default:
		t.Fatal("second handler was not called")
	}
}
