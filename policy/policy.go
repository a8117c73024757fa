// Package policy holds the operational rules the lifecycle manager applies
// when creating and deciding approval requests.  It is deliberately decoupled
// from the engine – a nil *Policy means "use the defaults" and is therefore
// the zero-cost fallback.

package policy

import "time"

const (
	// DefaultTimeout is applied when a submission does not specify its own
	// deadline.
	DefaultTimeout = 5 * time.Minute

	// DefaultMaxRevisions bounds the reject/regenerate/resubmit loop unless
	// the caller overrides it.
	DefaultMaxRevisions = 2
)

// Policy represents the approval settings for an engine instance.
//
//   - Timeout is the default request deadline.
//   - RequireRejectReason makes a rejection without a reason a validation
//     error.
//   - ApproveOnTimeout makes the sweep approve (as "system") instead of
//     timing out requests whose deadline passed.
//   - MaxRevisions caps resubmissions per revision chain.
type Policy struct {
	Timeout             time.Duration
	RequireRejectReason bool
	ApproveOnTimeout    bool
	MaxRevisions        int
}

// Default returns the policy used when the caller supplies none.
func Default() *Policy {
	return &Policy{
		Timeout:             DefaultTimeout,
		RequireRejectReason: true,
		MaxRevisions:        DefaultMaxRevisions,
	}
}

// RequestTimeout resolves the effective deadline duration for a submission.
func (p *Policy) RequestTimeout(requested time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	if p != nil && p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultTimeout
}

// RevisionLimit resolves the effective revision cap.
func (p *Policy) RevisionLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	if p != nil && p.MaxRevisions > 0 {
		return p.MaxRevisions
	}
	return DefaultMaxRevisions
}

// ReasonRequired reports whether a rejection must carry a reason.
func (p *Policy) ReasonRequired() bool {
	if p == nil {
		return false
	}
	return p.RequireRejectReason
}
