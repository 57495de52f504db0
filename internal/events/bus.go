// Package events carries outbound notifications from the engine to whatever
// UI or tooling layer is listening. The engine only publishes; it never
// depends on a subscriber.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Topics published by the engine.
const (
	TopicContentCreated = "content.created"
	TopicContentUpdated = "content.updated"
	TopicContentDeleted = "content.deleted"
	TopicBuildCompleted = "build.completed"
	TopicBuildFailed    = "build.failed"
)

// Event is one outbound notification.
type Event struct {
	Topic     string                 `json:"topic"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler handles one event.
type Handler func(event Event)

type subscription struct {
	name    string
	handler Handler
}

// Bus is a synchronous publish/subscribe fan-out for engine notifications.
type Bus struct {
	subscribers map[string][]subscription
	mu          sync.RWMutex
	log         zerolog.Logger
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]subscription),
		log:         log,
	}
}

// Subscribe registers a named handler for a topic.
func (b *Bus) Subscribe(name, topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], subscription{
		name:    name,
		handler: handler,
	})
	b.log.Debug().Str("subscriber", name).Str("topic", topic).Msg("subscribed")
}

// Unsubscribe removes every subscription held under name.
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.subscribers {
		var remaining []subscription
		for _, s := range subs {
			if s.name != name {
				remaining = append(remaining, s)
			}
		}
		if len(remaining) == 0 {
			delete(b.subscribers, topic)
		} else {
			b.subscribers[topic] = remaining
		}
	}
}

// Publish delivers an event to every subscriber of the topic, sequentially.
// A panicking handler is logged and skipped so one bad subscriber cannot
// break engine notifications.
func (b *Bus) Publish(topic string, payload map[string]interface{}) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	event := Event{
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error().
						Str("subscriber", s.name).
						Str("topic", topic).
						Interface("panic", r).
						Msg("event handler panicked")
				}
			}()
			s.handler(event)
		}()
	}
}
