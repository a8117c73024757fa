// Package store defines the durable storage contract for approval requests:
// keyed records, atomic conditional status transitions and an ordered change
// feed. The store is the single component allowed to mutate request status –
// its compare-and-swap Transition is the serialisation point that makes
// concurrent deciders and the timeout sweep race-safe.
package store

import (
	"context"

	"github.com/viant/hitl/model"
)

// Filter narrows List results. Zero-value fields match everything.
type Filter struct {
	Status  []model.Status
	Kind    model.Kind
	AgentID string
	Limit   int

	// ByPriority orders results critical→low, then oldest first – the
	// reviewer-queue view. The default order is createdAt descending.
	ByPriority bool
}

// Matches reports whether the request passes the filter predicates.
func (f Filter) Matches(r *model.Request) bool {
	if len(f.Status) > 0 {
		matched := false
		for _, status := range f.Status {
			if r.Status == status {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.AgentID != "" && r.AgentID != f.AgentID {
		return false
	}
	return true
}

// Transition describes an atomic conditional status update. From defaults to
// Pending when empty.
type Transition struct {
	ID        string
	From      model.Status
	To        model.Status
	DecidedBy string
	Reason    string
}

// Service is the approval store contract.
type Service interface {
	// Create persists a new record with status forced to Pending and emits a
	// request.created event. ErrDuplicateID when the id already exists.
	Create(ctx context.Context, request *model.Request) error

	// Get returns a copy of the record or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Request, error)

	// List returns matching records, createdAt descending unless the filter
	// requests priority ordering.
	List(ctx context.Context, filter Filter) ([]*model.Request, error)

	// Transition applies a compare-and-swap status update: it succeeds only
	// when the current status equals transition.From, otherwise it returns
	// ErrConflict without mutating anything. On success the updated record
	// is returned and a request.updated event is emitted.
	Transition(ctx context.Context, transition Transition) (*model.Request, error)

	// Watch subscribes to the change feed. With ids the subscription only
	// receives events for those requests; without ids it receives every
	// event. Events for one request id arrive in mutation order.
	Watch(ctx context.Context, ids ...string) *Subscription
}
