package mocks

import (
	"context"
	"sync"

	"github.com/cadenzahq/cadenza/pkg/eventbus"
	"github.com/cadenzahq/cadenza/pkg/events"
	"github.com/google/uuid"
)

// RecordingEventBus is an in-memory event bus that records published events
// for test assertions.
type RecordingEventBus struct {
	mu        sync.Mutex
	published []eventbus.Event
	handlers  map[events.EventType]eventbus.EventHandler
}

func NewRecordingEventBus() *RecordingEventBus {
	return &RecordingEventBus{
		handlers: make(map[events.EventType]eventbus.EventHandler),
	}
}

func (b *RecordingEventBus) Publish(ctx context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handler := b.handlers[event.GetType()]
	b.mu.Unlock()

	if handler != nil {
		return handler(ctx, event)
	}

	return nil
}

func (b *RecordingEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = handler

	return nil
}

func (b *RecordingEventBus) Subscribe(_ context.Context) error {
	return nil
}

func (b *RecordingEventBus) Close() error {
	return nil
}

func (b *RecordingEventBus) GenerateID() string {
	return uuid.New().String()
}

// Published returns a copy of every event published so far.
func (b *RecordingEventBus) Published() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]eventbus.Event, len(b.published))
	copy(out, b.published)

	return out
}

// PublishedOfType filters recorded events by type.
func (b *RecordingEventBus) PublishedOfType(eventType events.EventType) []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]eventbus.Event, 0)

	for _, event := range b.published {
		if event.GetType() == eventType {
			out = append(out, event)
		}
	}

	return out
}
