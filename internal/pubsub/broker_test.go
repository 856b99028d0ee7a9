package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := b.Subscribe(ctx)
	b.Publish(GeneratedEvent, "output/recipes/blades.json")

	select {
	case event := <-sub:
		assert.Equal(t, GeneratedEvent, event.Type)
		assert.Equal(t, "output/recipes/blades.json", event.Payload)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(LoggedEvent, "entry")

	for _, sub := range []<-chan Event[string]{first, second} {
		select {
		case event := <-sub:
			assert.Equal(t, "entry", event.Payload)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker[string]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := b.Subscribe(ctx)
	b.Close()

	_, open := <-sub
	assert.False(t, open, "closing the broker closes subscriber channels")

	// Publishing after close is a no-op, and Subscribe returns a closed channel.
	b.Publish(ChangedEvent, "late")
	late := b.Subscribe(ctx)
	_, open = <-late
	assert.False(t, open)
}

func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewBrokerWithBuffer[int](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := b.Subscribe(ctx)
	b.Publish(GeneratedEvent, 1)
	b.Publish(GeneratedEvent, 2) // dropped, buffer is full

	event := <-sub
	assert.Equal(t, 1, event.Payload)

	select {
	case extra := <-sub:
		t.Fatalf("expected the second event to be dropped, got %v", extra.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}
