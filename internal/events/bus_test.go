package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/devicescope/internal/models"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelA()
	defer cancelB()

	bus.Publish(Event{Kind: SampleAdded, Sample: models.Sample{FPS: 60}})

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		assert.Equal(t, SampleAdded, e.Kind)
		assert.Equal(t, 60.0, e.Sample.FPS)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after cancel")
	bus.Publish(Event{Kind: SnapshotUpdated})
}

func TestBus_FullSubscriberDropsEvents(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(Event{Kind: SampleAdded})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestBus_Close(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe()
	bus.Close()
	bus.Close()
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	late, _ := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing to a closed bus yields a closed channel")

	var nilBus *Bus
	nilBus.Publish(Event{Kind: SnapshotUpdated})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "snapshot", SnapshotUpdated.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
