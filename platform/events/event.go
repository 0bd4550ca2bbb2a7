// Package events carries the pub/sub contract the domain modules talk
// through. Publishing is fire and forget by design: a failed email or
// reminder must never undo the adoption or appointment write that
// triggered it.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event (an appointment scheduled,
// an adoption decided, ...).
type Event interface {
	// EventName identifies the event type for subscription routing.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events; concrete events
// embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a new event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events. A handler subscribed to several event names
// switches on the concrete type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler subscribed to its
	// name. Delivery is asynchronous; handler errors are logged, never
	// returned to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for every handler,
	// aggregating their errors. Tests and shutdown paths use it.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the event name as returned by
	// Event.EventName().
	Subscribe(eventName string, handler Handler)
}
