package event

import (
	"context"
	"errors"
	"log"

	"github.com/viant/caplock/messaging"
)

// Listener runs a consume loop delivering events to a handler. A handler
// error nacks the message so the queue's redelivery policy applies.
type Listener struct {
	queue   messaging.Queue[Event]
	handler func(*Event) error
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewListener creates a listener; call Start to begin consuming.
func NewListener(queue messaging.Queue[Event], handler func(*Event) error) *Listener {
	return &Listener{queue: queue, handler: handler}
}

// Start launches the consume loop.
func (l *Listener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		for {
			message, err := l.queue.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("event listener: consume: %v", err)
				continue
			}
			if err := l.handler(message.T()); err != nil {
				_ = message.Nack(err)
				continue
			}
			_ = message.Ack()
		}
	}()
}

// Stop terminates the consume loop and waits for it to drain.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}
