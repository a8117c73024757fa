package approval

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/hitl/internal/clock"
	"github.com/viant/hitl/internal/idgen"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/messaging"
	"github.com/viant/hitl/service/store"
	"github.com/viant/hitl/tracing"
)

// Service is the lifecycle manager – the only component that drives status
// transitions, always through the store's compare-and-swap.
type Service struct {
	store  store.Service
	policy *policy.Policy

	// optional fan-out queue consumed by the notifier
	events messaging.Queue[model.Event]

	handlers map[model.Status][]Handler
	hmu      sync.RWMutex

	sweepInterval time.Duration
}

// New creates a lifecycle manager backed by the supplied store.
func New(storage store.Service, options ...Option) *Service {
	ret := &Service{
		store:         storage,
		handlers:      make(map[model.Status][]Handler),
		sweepInterval: time.Second,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.policy == nil {
		ret.policy = policy.Default()
	}
	return ret
}

// Store exposes the underlying store (read-only use by callers such as the
// notification hub).
func (s *Service) Store() store.Service {
	return s.store
}

// Policy returns the active policy.
func (s *Service) Policy() *policy.Policy {
	return s.policy
}

// RequestApproval creates a Pending request with deadline now+timeout and
// returns immediately. The store emits the created event that reaches the
// hub and any waiters.
func (s *Service) RequestApproval(ctx context.Context, submission Submission) (*model.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.RequestApproval", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if submission.Title == "" {
		err = fmt.Errorf("submission title is required")
		return nil, err
	}
	kind := submission.Kind
	if kind == "" {
		kind = model.KindGeneric
	}
	priority := submission.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	now := clock.Now()
	request := &model.Request{
		ID:        idgen.New(),
		Kind:      kind,
		AgentID:   submission.AgentID,
		Title:     submission.Title,
		Content:   submission.Content,
		Context:   submission.Context,
		Priority:  priority,
		Status:    model.StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.policy.RequestTimeout(submission.Timeout)),
		Revision:  submission.Revision,
		ParentID:  submission.ParentID,
	}
	if err = s.store.Create(ctx, request); err != nil {
		return nil, err
	}
	s.publish(ctx, &model.Event{Type: model.EventRequestCreated, Request: request.Clone(), EmittedAt: now})
	return request, nil
}

// WaitForDecision suspends the caller until the request reaches a terminal
// status. A positive timeout bounds the wait itself; when it elapses
// ErrWaitTimeout is returned while the request may stay pending. When the
// request is already terminal the call returns immediately.
func (s *Service) WaitForDecision(ctx context.Context, id string, timeout time.Duration) (*Outcome, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe before the initial read so a transition between the two
	// steps cannot be missed.
	subscription := s.store.Watch(subCtx, id)
	defer subscription.Close()

	request, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status.Terminal() {
		return outcomeOf(request), nil
	}

	var expiry <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expiry = timer.C
	}

	for {
		select {
		case event, ok := <-subscription.Events():
			if !ok {
				// Feed dropped a slow subscriber; fall back to a direct read.
				request, err = s.store.Get(ctx, id)
				if err != nil {
					return nil, err
				}
				if request.Status.Terminal() {
					return outcomeOf(request), nil
				}
				return nil, fmt.Errorf("change feed closed while waiting for request %s", id)
			}
			if event.Request.Status.Terminal() {
				return outcomeOf(event.Request), nil
			}
		case <-expiry:
			return nil, ErrWaitTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Decide applies a human decision. Exactly one of Decide, Cancel or the
// timeout sweep ever succeeds per request; the losers observe
// store.ErrConflict.
func (s *Service) Decide(ctx context.Context, id string, approved bool, decidedBy, reason string) (*model.Request, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.Decide", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	target := model.StatusApproved
	if !approved {
		target = model.StatusRejected
		if reason == "" && s.policy.ReasonRequired() {
			err = ErrReasonRequired
			return nil, err
		}
	}
	updated, err := s.store.Transition(ctx, store.Transition{
		ID:        id,
		From:      model.StatusPending,
		To:        target,
		DecidedBy: decidedBy,
		Reason:    reason,
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, updated)
	return updated, nil
}

// Cancel transitions a request to Cancelled; the owning producer calls it
// when aborted so the request leaves the pending set.
func (s *Service) Cancel(ctx context.Context, id string) (*model.Request, error) {
	updated, err := s.store.Transition(ctx, store.Transition{
		ID:   id,
		From: model.StatusPending,
		To:   model.StatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	s.afterTransition(ctx, updated)
	return updated, nil
}

// Get returns the current request snapshot.
func (s *Service) Get(ctx context.Context, id string) (*model.Request, error) {
	return s.store.Get(ctx, id)
}

// List returns requests matching the filter.
func (s *Service) List(ctx context.Context, filter store.Filter) ([]*model.Request, error) {
	return s.store.List(ctx, filter)
}

// ListPending returns the reviewer queue: pending requests, most urgent
// first.
func (s *Service) ListPending(ctx context.Context) ([]*model.Request, error) {
	return s.store.List(ctx, store.Filter{
		Status:     []model.Status{model.StatusPending},
		ByPriority: true,
	})
}

// RegisterHandler adds a post-transition handler for the given terminal
// status. Handlers run asynchronously and never influence the transition.
func (s *Service) RegisterHandler(status model.Status, handler Handler) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.handlers[status] = append(s.handlers[status], handler)
}

// afterTransition publishes the update event and triggers handlers.
func (s *Service) afterTransition(ctx context.Context, updated *model.Request) {
	s.publish(ctx, &model.Event{Type: model.EventRequestUpdated, Request: updated.Clone(), EmittedAt: clock.Now()})

	s.hmu.RLock()
	handlers := append([]Handler(nil), s.handlers[updated.Status]...)
	s.hmu.RUnlock()
	if len(handlers) == 0 {
		return
	}
	snapshot := updated.Clone()
	go func() {
		for _, handler := range handlers {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("approval handler panic for request %s: %v", snapshot.ID, r)
					}
				}()
				handler(snapshot)
			}()
		}
	}()
}

func (s *Service) publish(ctx context.Context, event *model.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("failed to publish approval event %s for request %s: %v", event.Type, event.Request.ID, err)
	}
}

func outcomeOf(request *model.Request) *Outcome {
	return &Outcome{
		Status:    request.Status,
		DecidedBy: request.DecidedBy,
		Reason:    request.Reason,
		Request:   request,
	}
}
