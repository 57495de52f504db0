package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestBus() *Bus {
	return NewBus(zerolog.Nop())
}

func TestPublish_DeliversToSubscribers(t *testing.T) {
	bus := newTestBus()

	var got []Event
	bus.Subscribe("ui", TopicContentCreated, func(e Event) {
		got = append(got, e)
	})

	bus.Publish(TopicContentCreated, map[string]interface{}{"content_id": "abc"})

	assert.Len(t, got, 1)
	assert.Equal(t, TopicContentCreated, got[0].Topic)
	assert.Equal(t, "abc", got[0].Payload["content_id"])
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestPublish_TopicIsolation(t *testing.T) {
	bus := newTestBus()

	var created, deleted int
	bus.Subscribe("a", TopicContentCreated, func(Event) { created++ })
	bus.Subscribe("b", TopicContentDeleted, func(Event) { deleted++ })

	bus.Publish(TopicContentCreated, nil)

	assert.Equal(t, 1, created)
	assert.Equal(t, 0, deleted)
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := newTestBus()
	assert.NotPanics(t, func() {
		bus.Publish(TopicBuildCompleted, nil)
	})
}

func TestPublish_PanickingHandlerSkipped(t *testing.T) {
	bus := newTestBus()

	var after int
	bus.Subscribe("bad", TopicBuildFailed, func(Event) { panic("boom") })
	bus.Subscribe("good", TopicBuildFailed, func(Event) { after++ })

	assert.NotPanics(t, func() {
		bus.Publish(TopicBuildFailed, nil)
	})
	assert.Equal(t, 1, after)
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus()

	var calls int
	bus.Subscribe("ui", TopicContentUpdated, func(Event) { calls++ })
	bus.Publish(TopicContentUpdated, nil)
	bus.Unsubscribe("ui")
	bus.Publish(TopicContentUpdated, nil)

	assert.Equal(t, 1, calls)
}
