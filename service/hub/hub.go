// Package hub maintains the set of live observer connections and fans store
// change events out to all of them. A new observer receives a snapshot of
// every non-terminal request before any events; a failing observer is
// disconnected without affecting the others.
package hub

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/viant/hitl/internal/idgen"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
)

// DefaultObserverBuffer is the per-observer event buffer. An observer that
// falls this far behind is disconnected rather than blocking the fan-out.
const DefaultObserverBuffer = 64

// Service is the notification hub.
type Service struct {
	store  store.Service
	buffer int

	mu        sync.Mutex
	observers map[string]*Observer
	started   bool
}

// New creates a hub over the supplied store.
func New(storage store.Service, options ...Option) *Service {
	ret := &Service{
		store:     storage,
		buffer:    DefaultObserverBuffer,
		observers: make(map[string]*Observer),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start subscribes to the store change feed and pumps events to observers
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("hub already started")
	}
	s.started = true
	s.mu.Unlock()

	subscription := s.store.Watch(ctx)
	go func() {
		defer subscription.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-subscription.Events():
				if !ok {
					log.Printf("hub: store change feed closed")
					return
				}
				s.Broadcast(event)
			}
		}
	}()
	return nil
}

// Connect registers a new observer and returns it together with the initial
// snapshot of all currently pending requests. Registration and snapshot are
// taken under one lock so the observer misses no event in between.
func (s *Service) Connect(ctx context.Context) (*Observer, []*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.store.List(ctx, store.Filter{
		Status:     []model.Status{model.StatusPending},
		ByPriority: true,
	})
	if err != nil {
		return nil, nil, err
	}
	observer := &Observer{
		id:     idgen.New(),
		events: make(chan *model.Event, s.buffer),
		hub:    s,
	}
	s.observers[observer.id] = observer
	return observer, snapshot, nil
}

// Disconnect deregisters the observer; other observers are unaffected.
func (s *Service) Disconnect(observer *Observer) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(observer)
}

// Broadcast delivers the event to every live observer. Delivery failure to
// one observer (a full buffer means its connection stopped draining)
// disconnects that observer only.
func (s *Service) Broadcast(event *model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, observer := range s.observers {
		select {
		case observer.events <- event:
		default:
			log.Printf("hub: disconnecting slow observer %s", observer.id)
			s.remove(observer)
		}
	}
}

// Observers returns the number of live observers.
func (s *Service) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// remove deregisters and closes; callers hold the lock.
func (s *Service) remove(observer *Observer) {
	if _, ok := s.observers[observer.id]; !ok {
		return
	}
	delete(s.observers, observer.id)
	observer.once.Do(func() { close(observer.events) })
}

// Observer is one live connection to the hub.
type Observer struct {
	id     string
	events chan *model.Event
	hub    *Service
	once   sync.Once
}

// ID returns the observer identity.
func (o *Observer) ID() string {
	return o.id
}

// Events returns the delivery channel; it is closed when the observer is
// disconnected.
func (o *Observer) Events() <-chan *model.Event {
	return o.events
}

// Close disconnects the observer from the hub.
func (o *Observer) Close() {
	o.hub.Disconnect(o)
}
