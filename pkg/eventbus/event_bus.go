// Package eventbus provides event-driven communication infrastructure for
// engine lifecycle notifications.
package eventbus

import (
	"context"

	"github.com/cadenzahq/cadenza/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	// Publish emits the event keyed by workflow ID so partitioned brokers
	// keep per-workflow ordering.
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
