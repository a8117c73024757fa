package revision

import (
	"time"

	"github.com/viant/hitl/model"
)

type Option func(*Controller)

// WithKind sets the request kind used for submissions.
func WithKind(kind model.Kind) Option {
	return func(c *Controller) { c.kind = kind }
}

// WithAgentID tags submissions with the owning producer identity.
func WithAgentID(agentID string) Option {
	return func(c *Controller) { c.agentID = agentID }
}

// WithPriority sets the submission priority.
func WithPriority(priority model.Priority) Option {
	return func(c *Controller) { c.priority = priority }
}

// WithTimeout sets the per-request deadline; zero inherits the policy
// default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) { c.timeout = timeout }
}
