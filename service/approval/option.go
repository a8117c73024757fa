package approval

import (
	"time"

	"github.com/viant/hitl/model"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/messaging"
)

type Option func(*Service)

// WithPolicy sets the operational policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithEventQueue attaches the queue that carries approval events to
// out-of-band consumers (the notifier). The change feed used by waiters and
// the hub comes from the store and does not depend on this queue.
func WithEventQueue(queue messaging.Queue[model.Event]) Option {
	return func(s *Service) { s.events = queue }
}

// WithSweepInterval sets how often the timeout sweep scans for expired
// pending requests.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}
