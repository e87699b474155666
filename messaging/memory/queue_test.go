package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Address uint64
	Kind    string
}

func TestQueuePublishConsume(t *testing.T) {
	config := DefaultConfig()
	config.RedeliveryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	payload := testPayload{Address: 0x1000, Kind: "revoked"}

	require.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())

	require.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double settle must error")
}

func TestQueueRedelivery(t *testing.T) {
	config := DefaultConfig()
	config.MaxRedeliveries = 1
	config.RedeliveryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	payload := testPayload{Address: 0x2000, Kind: "registered"}
	require.NoError(t, queue.Publish(ctx, &payload))

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(fmt.Errorf("handler failed")))

	// redelivered once
	redeliveredCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	message, err = queue.Consume(redeliveredCtx)
	require.NoError(t, err)
	assert.Equal(t, payload, *message.T())

	// exhausting redeliveries parks the message on the DLQ
	require.NoError(t, message.Nack(fmt.Errorf("handler failed again")))
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	wg.Add(producers * 2)

	var consumedMu sync.Mutex
	consumed := 0

	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("consume: %v", err)
					return
				}
				if err := message.Ack(); err != nil {
					t.Errorf("ack: %v", err)
					return
				}
				consumedMu.Lock()
				consumed++
				consumedMu.Unlock()
			}
		}()
	}
	for i := 0; i < producers; i++ {
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				payload := testPayload{Address: uint64(producer<<16 | j), Kind: "registered"}
				if err := queue.Publish(ctx, &payload); err != nil {
					t.Errorf("publish: %v", err)
					return
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("test timed out")
	}

	assert.Equal(t, producers*perProducer, consumed)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	payload := testPayload{Address: 0x3000}
	// a buffered queue accepts the publish even under a cancelled context
	// only when capacity remains; consume must observe cancellation
	_, err := queue.Consume(cancelled)
	assert.Error(t, err)

	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &payload))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.NotNil(t, message)
}
