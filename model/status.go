package model

import "fmt"

// Status represents the lifecycle state of an approval request. Pending is
// the initial state; every other status is terminal and a request never
// leaves a terminal status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusTimedOut  Status = "timeout"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts the supplied text into a Status.
func ParseStatus(text string) (Status, error) {
	switch Status(text) {
	case StatusPending, StatusApproved, StatusRejected, StatusTimedOut, StatusCancelled:
		return Status(text), nil
	}
	return "", fmt.Errorf("unknown status: %q", text)
}
