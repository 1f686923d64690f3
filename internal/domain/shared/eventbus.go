package shared

import "context"

// EventHandler reacts to published domain events
type EventHandler interface {
	// Handle processes a single event. Returned errors are logged by the bus
	// and never abort publication to other handlers.
	Handle(ctx context.Context, event DomainEvent) error

	// EventTypes lists the event types the handler subscribes to.
	// An empty list subscribes to all events.
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers event handlers
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publishing and subscription with a lifecycle
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
