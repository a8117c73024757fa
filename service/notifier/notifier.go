// Package notifier dispatches approval events to registered delivery
// channels (webhooks, logs, ...). It consumes the engine's event queue, so
// notification delivery is decoupled from the decision path: a failing
// channel causes a Nack and queue-level retry, never an engine error.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/messaging"
)

// Channel delivers one event to an external destination.
type Channel interface {
	Send(ctx context.Context, event *model.Event) error
}

// Service fans queued approval events out to every registered channel.
type Service struct {
	queue messaging.Queue[model.Event]

	mu       sync.RWMutex
	channels map[string]Channel

	// idleDelay paces the consume loop when the queue reports empty
	// (filesystem queues return no message rather than blocking).
	idleDelay time.Duration
}

// New creates a notifier over the supplied queue.
func New(queue messaging.Queue[model.Event]) *Service {
	return &Service{
		queue:     queue,
		channels:  make(map[string]Channel),
		idleDelay: 100 * time.Millisecond,
	}
}

// Register adds a named delivery channel.
func (s *Service) Register(name string, channel Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[name] = channel
}

// Unregister removes a delivery channel.
func (s *Service) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, name)
}

// Channels returns the registered channel names.
func (s *Service) Channels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	return names
}

// Start launches the consume loop; it exits when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			message, err := s.queue.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				log.Printf("notifier: consume: %v", err)
				continue
			}
			if message == nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.idleDelay):
				}
				continue
			}
			s.dispatch(ctx, message)
		}
	}()
}

// dispatch delivers the event to every channel; any failure Nacks the
// message so the queue redelivers it.
func (s *Service) dispatch(ctx context.Context, message messaging.Message[model.Event]) {
	event := message.T()

	s.mu.RLock()
	channels := make(map[string]Channel, len(s.channels))
	for name, channel := range s.channels {
		channels[name] = channel
	}
	s.mu.RUnlock()

	var failure error
	for name, channel := range channels {
		if err := channel.Send(ctx, event); err != nil {
			log.Printf("notifier: channel %s failed for request %s: %v", name, event.Request.ID, err)
			failure = fmt.Errorf("channel %s: %w", name, err)
		}
	}
	if failure != nil {
		_ = message.Nack(failure)
		return
	}
	_ = message.Ack()
}
