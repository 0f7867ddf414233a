package events

import (
	"context"
	"fmt"
	"sync"

	"upboost_crm_backend/platform/logger"
)

// InMemoryBus is a simple in-process event bus. Handlers registered for an
// event name run in their own goroutine on Publish; a panicking handler is
// recovered and logged so it cannot take down the publisher.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to all handlers asynchronously.
// The request context is detached: handlers outlive the HTTP request.
func (b *InMemoryBus) Publish(_ context.Context, event Event) {
	b.mu.RLock()
	subscribed := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	for _, h := range subscribed {
		go b.dispatch(context.Background(), event, h)
	}
}

// PublishSync dispatches the event and waits for all handlers to complete,
// returning the first handler error encountered.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	subscribed := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	var firstErr error
	for _, h := range subscribed {
		if err := b.safeHandle(ctx, event, h); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *InMemoryBus) dispatch(ctx context.Context, event Event, h Handler) {
	if err := b.safeHandle(ctx, event, h); err != nil {
		b.log.Error("event handler failed", "event", event.EventName(), "error", err)
	}
}

func (b *InMemoryBus) safeHandle(ctx context.Context, event Event, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}

// Compile-time check that InMemoryBus implements Bus.
var _ Bus = (*InMemoryBus)(nil)
