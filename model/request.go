package model

import (
	"time"
)

// Kind categorises an approval request. It is informational only – the
// lifecycle state machine treats every kind identically.
type Kind string

const (
	KindPlanApproval   Kind = "plan_approval"
	KindDataValidation Kind = "data_validation"
	KindFinalReport    Kind = "final_report"
	KindGeneric        Kind = "generic"
)

// Priority is a display ordering hint; it has no effect on lifecycle
// semantics.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank maps a priority onto a sortable integer, most urgent first. Unknown
// values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Request represents a request for a human decision – the persisted unit of
// one approval checkpoint.
type Request struct {
	ID       string `json:"id"` // Globally unique, primary key
	Kind     Kind   `json:"kind"`
	AgentID  string `json:"agentId,omitempty"` // owning producer/agent identity
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"` // human-readable payload under review

	// Context carries a structured blob opaque to the engine – whatever the
	// producer wants the reviewer (or a post-decision handler) to see.
	Context map[string]interface{} `json:"context,omitempty"`

	Priority Priority `json:"priority,omitempty"`

	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"` // deadline after which the sweep may time the request out
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
	DecidedBy string     `json:"decidedBy,omitempty"`
	Reason    string     `json:"reason,omitempty"`

	// Revision/ParentID link resubmissions produced by the revision
	// controller into an auditable chain. Revision is 0 for the original
	// submission.
	Revision int    `json:"revision"`
	ParentID string `json:"parentId,omitempty"`
}

// Expired reports whether the request deadline has passed at the supplied
// point in time.
func (r *Request) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Clone returns a deep-enough copy so that store internals never alias
// caller-held records. Context values are shared – the engine treats the
// blob as read-only.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	ret := *r
	if r.DecidedAt != nil {
		decidedAt := *r.DecidedAt
		ret.DecidedAt = &decidedAt
	}
	if r.Context != nil {
		ret.Context = make(map[string]interface{}, len(r.Context))
		for k, v := range r.Context {
			ret.Context[k] = v
		}
	}
	return &ret
}
