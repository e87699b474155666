package event

import (
	"context"

	"github.com/google/uuid"
	"github.com/viant/caplock/internal/clock"
	"github.com/viant/caplock/messaging"
)

// Publisher stamps and publishes provenance events.
type Publisher struct {
	queue messaging.Queue[Event]
}

// NewPublisher creates a publisher over the supplied queue.
func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	return &Publisher{queue: queue}
}

// Publish assigns the event an id and timestamp (when unset) and hands it
// to the queue. Delivery is bounded by ctx; the caller decides whether a
// full queue is worth waiting on.
func (p *Publisher) Publish(ctx context.Context, ev *Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = clock.Now()
	}
	return p.queue.Publish(ctx, ev)
}
