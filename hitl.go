package hitl

import (
	"context"

	"github.com/viant/hitl/model"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/approval"
	"github.com/viant/hitl/service/hub"
	"github.com/viant/hitl/service/messaging"
	mmemory "github.com/viant/hitl/service/messaging/memory"
	"github.com/viant/hitl/service/notifier"
	"github.com/viant/hitl/service/stats"
	"github.com/viant/hitl/service/store"
	smemory "github.com/viant/hitl/service/store/memory"
)

// Service is the engine façade wiring together the approval store, the
// lifecycle manager, the notification hub, the stats tracker and the
// outbound notifier. Use New with options to assemble one, then Start it.
type Service struct {
	store     store.Service
	policy    *policy.Policy
	queue     messaging.Queue[model.Event]
	approvals *approval.Service
	hub       *hub.Service
	notifier  *notifier.Service
	tracker   *stats.Tracker
	sweep     bool
	stopSweep func()
	cancelRun context.CancelFunc
}

// New creates an engine with sensible defaults: an in-memory store, an
// in-memory event queue and the default policy. Options override any part.
func New(options ...Option) *Service {
	s := &Service{sweep: true}
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	return s
}

func (s *Service) ensureBaseSetup() {
	if s.policy == nil {
		s.policy = policy.Default()
	}
	if s.store == nil {
		s.store = smemory.New()
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[model.Event](mmemory.DefaultConfig())
	}
	s.approvals = approval.New(s.store,
		approval.WithPolicy(s.policy),
		approval.WithEventQueue(s.queue),
	)
	s.hub = hub.New(s.store)
	s.notifier = notifier.New(s.queue)
	s.tracker = stats.New()
}

// Start launches the background machinery: the hub pump, the stats pump,
// the notifier consume loop and the timeout sweep. It returns immediately;
// everything stops when ctx is cancelled or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	ctx, s.cancelRun = context.WithCancel(ctx)
	if err := s.hub.Start(ctx); err != nil {
		return err
	}
	s.tracker.Start(ctx, s.store)
	s.notifier.Start(ctx)
	if s.sweep {
		s.stopSweep = s.approvals.StartSweep(ctx)
	}
	return nil
}

// Shutdown stops the background loops started by Start.
func (s *Service) Shutdown() {
	if s.stopSweep != nil {
		s.stopSweep()
		s.stopSweep = nil
	}
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
}

// Approvals returns the lifecycle manager.
func (s *Service) Approvals() *approval.Service {
	return s.approvals
}

// Store returns the underlying approval store.
func (s *Service) Store() store.Service {
	return s.store
}

// Hub returns the notification hub.
func (s *Service) Hub() *hub.Service {
	return s.hub
}

// Notifier returns the outbound notification dispatcher.
func (s *Service) Notifier() *notifier.Service {
	return s.notifier
}

// Stats returns the counters tracker.
func (s *Service) Stats() *stats.Tracker {
	return s.tracker
}

// Policy returns the operational policy.
func (s *Service) Policy() *policy.Policy {
	return s.policy
}
