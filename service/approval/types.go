package approval

import (
	"errors"
	"time"

	"github.com/viant/hitl/model"
)

// Submission describes a new approval checkpoint.
type Submission struct {
	Kind     model.Kind
	AgentID  string
	Title    string
	Content  string
	Context  map[string]interface{}
	Priority model.Priority

	// Timeout overrides the policy default deadline when positive.
	Timeout time.Duration

	// ParentID/Revision link a resubmission to the rejected attempt it
	// replaces. Leave zero for an original submission.
	ParentID string
	Revision int
}

// Outcome is the terminal result a waiting producer receives.
type Outcome struct {
	Status    model.Status
	DecidedBy string
	Reason    string
	Request   *model.Request
}

// Approved reports whether the outcome accepts the submitted content.
func (o *Outcome) Approved() bool {
	return o != nil && o.Status == model.StatusApproved
}

var (
	// ErrReasonRequired is returned by Decide when policy mandates a
	// rejection reason and none was supplied.
	ErrReasonRequired = errors.New("approval: rejection reason required")

	// ErrWaitTimeout is returned by WaitForDecision when its own wait window
	// elapses. It is distinct from the request reaching the TimedOut status,
	// which is a valid outcome rather than an error.
	ErrWaitTimeout = errors.New("approval: wait timed out")
)

// Handler is invoked asynchronously after a request reaches a terminal
// status. Handler failures never affect the transition result.
type Handler func(request *model.Request)
