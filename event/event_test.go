package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/caplock/messaging/memory"
)

func TestPublisherStampsEvents(t *testing.T) {
	queue := memory.NewQueue[Event](memory.DefaultConfig())
	publisher := NewPublisher(queue)

	ctx := context.Background()
	ev := &Event{Kind: KindRegistered, Address: 0x1000, Tag: 1, Size: 8}
	require.NoError(t, publisher.Publish(ctx, ev))

	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.OccurredAt.IsZero())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, *ev, *message.T())
}

func TestListenerDeliversInOrder(t *testing.T) {
	queue := memory.NewQueue[Event](memory.DefaultConfig())
	publisher := NewPublisher(queue)

	var mu sync.Mutex
	var received []Kind
	listener := NewListener(queue, func(ev *Event) error {
		mu.Lock()
		received = append(received, ev.Kind)
		mu.Unlock()
		return nil
	})
	listener.Start()
	defer listener.Stop()

	ctx := context.Background()
	kinds := []Kind{KindRegistered, KindRevoked, KindViolation, KindRemoved}
	for _, kind := range kinds {
		require.NoError(t, publisher.Publish(ctx, &Event{Kind: kind, Address: 0x1000}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == len(kinds)
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, kinds, received)
}

func TestListenerStop(t *testing.T) {
	queue := memory.NewQueue[Event](memory.DefaultConfig())
	listener := NewListener(queue, func(*Event) error { return nil })
	listener.Start()
	listener.Stop()

	// stop again is a no-op
	listener.Stop()
}
