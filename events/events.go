package events

import (
	"context"
	"sync"
	"time"

	"scorecard/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeStepStarted   EventType = "step_started"
	EventTypeStepFinished  EventType = "step_finished"
	EventTypeStagingLoaded EventType = "staging_loaded"
	EventTypeRunFinished   EventType = "run_finished"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// StepStartedEvent is emitted when a step attempt is recorded
type StepStartedEvent struct {
	BatchID string
	Step    models.Step
}

func (e StepStartedEvent) Type() EventType {
	return EventTypeStepStarted
}

// StepFinishedEvent is emitted when a step attempt reaches a terminal status
type StepFinishedEvent struct {
	BatchID  string
	Step     models.Step
	Status   models.StepStatus
	Duration time.Duration
	Error    string
}

func (e StepFinishedEvent) Type() EventType {
	return EventTypeStepFinished
}

// StagingLoadedEvent is emitted once per staging table loaded by a batch
type StagingLoadedEvent struct {
	BatchID string
	RunDate time.Time
	Table   string
	Rows    int64
}

func (e StagingLoadedEvent) Type() EventType {
	return EventTypeStagingLoaded
}

// RunFinishedEvent is emitted when a batch run is ended
type RunFinishedEvent struct {
	BatchID  string
	RunDate  time.Time
	Status   models.RunStatus
	Message  string
	Duration time.Duration
}

func (e RunFinishedEvent) Type() EventType {
	return EventTypeRunFinished
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow consumer never blocks a pipeline step
	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every emitted event has been handled or ctx is done
func (b *Bus) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TransactionalBus holds events published inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits pending events; called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	// Handlers outlive the transaction, so they get a detached context
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
