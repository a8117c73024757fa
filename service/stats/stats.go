// Package stats keeps aggregated approval counters for one engine instance,
// updated from the store change feed. Every component holding the tracker
// can read a consistent snapshot without querying the store.
package stats

import (
	"context"
	"sync"

	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
)

// Counters holds per-status totals.
type Counters struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	TimedOut  int `json:"timedOut"`
	Cancelled int `json:"cancelled"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	counters Counters
	onChange func(Counters)
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Apply folds one change event into the counters. If an onChange callback
// is registered it is invoked with a copy outside the critical section so
// slow callbacks never block the feed.
func (t *Tracker) Apply(event *model.Event) {
	if t == nil || event == nil || event.Request == nil {
		return
	}
	t.mu.Lock()
	if event.Type == model.EventRequestCreated {
		t.counters.Total++
		t.counters.Pending++
	} else {
		// The store may already hold requests created before the tracker
		// attached (a preloaded fs store); their updates must not drive
		// the pending count negative.
		if t.counters.Pending > 0 {
			t.counters.Pending--
		}
		switch event.Request.Status {
		case model.StatusApproved:
			t.counters.Approved++
		case model.StatusRejected:
			t.counters.Rejected++
		case model.StatusTimedOut:
			t.counters.TimedOut++
		case model.StatusCancelled:
			t.counters.Cancelled++
		}
	}
	snapshot := t.counters
	callback := t.onChange
	t.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// OnChange registers a callback invoked after every Apply. Passing nil
// disables it; only one callback can be active.
func (t *Tracker) OnChange(callback func(Counters)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = callback
}

// Start subscribes the tracker to the store change feed until ctx is
// cancelled.
func (t *Tracker) Start(ctx context.Context, storage store.Service) {
	subscription := storage.Watch(ctx)
	go func() {
		defer subscription.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-subscription.Events():
				if !ok {
					return
				}
				t.Apply(event)
			}
		}
	}()
}
