package hitl

import (
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/messaging"
	"github.com/viant/hitl/service/store"
)

// Option customises the engine façade.
type Option func(s *Service)

// WithStore sets the approval store backend.
func WithStore(storage store.Service) Option {
	return func(s *Service) {
		s.store = storage
	}
}

// WithPolicy sets the operational policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithEventQueue sets the queue carrying approval events to the notifier.
func WithEventQueue(queue messaging.Queue[model.Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithoutSweep disables the background timeout sweep; expired requests
// then stay pending until something else transitions them.
func WithoutSweep() Option {
	return func(s *Service) {
		s.sweep = false
	}
}
