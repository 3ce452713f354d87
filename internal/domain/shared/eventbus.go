package shared

import "context"

// EventHandler reacts to record events delivered by a bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes filters delivery. Nil means every event.
	EventTypes() []string
}

// EventPublisher is what record services need from a bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus fans published events out to subscribed handlers.
type EventBus interface {
	EventPublisher
	// Subscribe registers handler for eventTypes, or for all events when none
	// are given.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
