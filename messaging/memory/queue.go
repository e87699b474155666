package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/caplock/internal/clock"
	"github.com/viant/caplock/messaging"
)

// Config for the in-memory queue.
type Config struct {
	// MaxRedeliveries bounds how many times a nacked message is requeued.
	MaxRedeliveries int
	// RedeliveryDelay is the wait before a nacked message is requeued.
	RedeliveryDelay time.Duration
	// DeadLetter keeps messages that exhausted their redeliveries instead
	// of dropping them.
	DeadLetter bool
	// Buffer is the channel capacity; Publish blocks (until ctx is done)
	// once it is full.
	Buffer int
}

// DefaultConfig returns a standard configuration for the in-memory queue.
func DefaultConfig() Config {
	return Config{
		MaxRedeliveries: 3,
		RedeliveryDelay: 100 * time.Millisecond,
		DeadLetter:      true,
		Buffer:          256,
	}
}

// Message implements messaging.Message for the in-memory queue.
type Message[T any] struct {
	id          string
	payload     T
	queue       *Queue[T]
	redelivered int
	mu          sync.Mutex
	settled     bool
	createdAt   time.Time
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settled {
		return fmt.Errorf("message %s already settled", m.id)
	}
	m.settled = true
	return nil
}

// Nack reports a processing failure; the message is requeued after the
// redelivery delay until MaxRedeliveries is exhausted, then parked on the
// dead letter list when enabled.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settled {
		return fmt.Errorf("message %s already settled", m.id)
	}
	m.settled = true
	m.redelivered++

	if m.redelivered <= m.queue.config.MaxRedeliveries {
		go m.queue.requeue(m)
	} else if m.queue.config.DeadLetter {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
	}
	return nil
}

// Queue implements an in-memory messaging.Queue.
type Queue[T any] struct {
	messages chan *Message[T]
	dlq      []*Message[T]
	config   Config
	dlqMu    sync.Mutex
}

// NewQueue creates a new in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
	}
}

// Publish adds a new item to the queue.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of queued messages.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of dead-lettered messages.
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

func (q *Queue[T]) requeue(m *Message[T]) {
	time.Sleep(q.config.RedeliveryDelay)
	q.messages <- &Message[T]{
		id:          m.id,
		payload:     m.payload,
		queue:       q,
		redelivered: m.redelivered,
		createdAt:   clock.Now(),
	}
}

// ensure Queue implements the messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
