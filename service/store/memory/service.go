// Package memory provides an in-memory approval store. It is the default
// backend – suitable for a single-process engine and for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/hitl/internal/clock"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
)

// Service implements store.Service with a map guarded by a mutex. The same
// lock serialises compare-and-swap transitions and change-feed publication,
// which is what keeps per-id event order equal to mutation order.
type Service struct {
	mu       sync.RWMutex
	records  map[string]*model.Request
	byStatus map[model.Status]map[string]struct{}
	feed     *store.Feed
}

// Ensure Service implements store.Service
var _ store.Service = (*Service)(nil)

// New creates an empty in-memory store.
func New(options ...Option) *Service {
	ret := &Service{
		records:  make(map[string]*model.Request),
		byStatus: make(map[model.Status]map[string]struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.feed == nil {
		ret.feed = store.NewFeed(store.DefaultFeedBuffer)
	}
	return ret
}

// Create persists a new record, forcing status to Pending.
func (s *Service) Create(_ context.Context, request *model.Request) error {
	if request == nil {
		return fmt.Errorf("cannot create nil request")
	}
	if request.ID == "" {
		return store.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[request.ID]; ok {
		return fmt.Errorf("request %s: %w", request.ID, store.ErrDuplicateID)
	}
	request.Status = model.StatusPending
	record := request.Clone()
	s.records[record.ID] = record
	s.index(record.ID, "", record.Status)
	s.feed.Publish(&model.Event{
		Type:      model.EventRequestCreated,
		Request:   record.Clone(),
		EmittedAt: clock.Now(),
	})
	return nil
}

// Get returns a copy of the record.
func (s *Service) Get(_ context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, store.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	return record.Clone(), nil
}

// List returns matching records. With a single-status filter the secondary
// index avoids a full scan.
func (s *Service) List(_ context.Context, filter store.Filter) ([]*model.Request, error) {
	s.mu.RLock()
	var matched []*model.Request
	if len(filter.Status) == 1 {
		for id := range s.byStatus[filter.Status[0]] {
			record := s.records[id]
			if filter.Matches(record) {
				matched = append(matched, record.Clone())
			}
		}
	} else {
		for _, record := range s.records {
			if filter.Matches(record) {
				matched = append(matched, record.Clone())
			}
		}
	}
	s.mu.RUnlock()

	store.Sort(matched, filter)
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Transition applies a compare-and-swap status update.
func (s *Service) Transition(_ context.Context, transition store.Transition) (*model.Request, error) {
	if transition.ID == "" {
		return nil, store.ErrInvalidID
	}
	if !transition.To.Terminal() {
		return nil, fmt.Errorf("cannot transition to non-terminal status %q", transition.To)
	}
	from := transition.From
	if from == "" {
		from = model.StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[transition.ID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", transition.ID, store.ErrNotFound)
	}
	if record.Status != from {
		return nil, fmt.Errorf("request %s is %s: %w", record.ID, record.Status, store.ErrConflict)
	}

	now := clock.Now()
	record.Status = transition.To
	record.DecidedAt = &now
	record.DecidedBy = transition.DecidedBy
	record.Reason = transition.Reason
	s.index(record.ID, from, record.Status)

	updated := record.Clone()
	s.feed.Publish(&model.Event{
		Type:      model.EventRequestUpdated,
		Request:   updated.Clone(),
		EmittedAt: now,
	})
	return updated, nil
}

// Watch subscribes to the change feed.
func (s *Service) Watch(ctx context.Context, ids ...string) *store.Subscription {
	return s.feed.Subscribe(ctx, ids...)
}

// index moves the record id between status buckets; callers hold the write
// lock.
func (s *Service) index(id string, from, to model.Status) {
	if from != "" {
		delete(s.byStatus[from], id)
	}
	bucket, ok := s.byStatus[to]
	if !ok {
		bucket = make(map[string]struct{})
		s.byStatus[to] = bucket
	}
	bucket[id] = struct{}{}
}
