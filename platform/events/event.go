// Package events carries the in-process event bus primitives shared by
// the domain modules. Event payload types live next to the modules that
// publish them; only the plumbing is here.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent holds the fields common to all events. Concrete events embed
// it and add EventName.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a BaseEvent with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes published events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

// Bus routes events to subscribed handlers. Publish dispatches without
// waiting; PublishSync waits and returns the first handler error.
// Subscribe keys on the name the event's EventName method returns.
type Bus interface {
	Publish(ctx context.Context, event Event)
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
