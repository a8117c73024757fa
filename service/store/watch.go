package store

import (
	"context"
	"sync"

	"github.com/viant/hitl/model"
)

// DefaultFeedBuffer is the per-subscription event buffer. A subscriber that
// falls this many events behind is dropped so that store mutations never
// block on a slow consumer.
const DefaultFeedBuffer = 64

// Subscription delivers change events until Close is called, the watch
// context is cancelled, or the subscriber falls too far behind. The events
// channel is closed on termination.
type Subscription struct {
	events  chan *model.Event
	once    sync.Once
	remove  func()
	dropped bool
}

// Events returns the event delivery channel.
func (s *Subscription) Events() <-chan *model.Event {
	return s.events
}

// Dropped reports whether the subscription was terminated because the
// subscriber could not keep up with the feed.
func (s *Subscription) Dropped() bool {
	return s.dropped
}

// Close deregisters the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.remove()
}

// Feed is the in-process change-feed fan-out shared by store
// implementations. Publishing preserves per-id ordering because every store
// mutation publishes while holding the store's write lock.
type Feed struct {
	mu          sync.Mutex
	subscribers map[int]*subscriber
	nextID      int
	buffer      int
}

type subscriber struct {
	ids map[string]struct{} // empty means every request id
	sub *Subscription
}

// NewFeed creates a feed with the supplied per-subscriber buffer size.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = DefaultFeedBuffer
	}
	return &Feed{subscribers: make(map[int]*subscriber), buffer: buffer}
}

// Subscribe registers a new subscription, optionally scoped to request ids.
// The subscription terminates when ctx is cancelled.
func (f *Feed) Subscribe(ctx context.Context, ids ...string) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	// The once body must stay lock-free: Publish invokes it while holding
	// f.mu, so taking f.mu inside it would deadlock against a concurrent
	// Close. Removal happens under the lock, the close outside it.
	sub := &Subscription{events: make(chan *model.Event, f.buffer)}
	sub.remove = func() {
		f.mu.Lock()
		_, live := f.subscribers[id]
		delete(f.subscribers, id)
		f.mu.Unlock()
		if live {
			sub.once.Do(func() { close(sub.events) })
		}
	}

	entry := &subscriber{sub: sub}
	if len(ids) > 0 {
		entry.ids = make(map[string]struct{}, len(ids))
		for _, requestID := range ids {
			entry.ids[requestID] = struct{}{}
		}
	}
	f.subscribers[id] = entry

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
	}
	return sub
}

// Publish delivers the event to every matching subscriber. A subscriber
// whose buffer is full is dropped rather than blocking the publisher.
func (f *Feed) Publish(event *model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, entry := range f.subscribers {
		if entry.ids != nil {
			if _, ok := entry.ids[event.Request.ID]; !ok {
				continue
			}
		}
		select {
		case entry.sub.events <- event:
		default:
			entry.sub.dropped = true
			delete(f.subscribers, id)
			sub := entry.sub
			sub.once.Do(func() { close(sub.events) })
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
