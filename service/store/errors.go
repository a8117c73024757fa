package store

import "errors"

// Common, reusable store errors. Sentinel variables let callers detect
// conditions via errors.Is instead of brittle string comparisons.

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateID is returned by Create when the id is already taken.
	ErrDuplicateID = errors.New("store: duplicate id")

	// ErrConflict is returned by Transition when the current status does not
	// match the expected one – someone else already decided, cancelled or
	// timed the request out.
	ErrConflict = errors.New("store: conflict")

	// ErrInvalidID indicates that the supplied id is empty.
	ErrInvalidID = errors.New("store: invalid id")

	// ErrUnavailable is returned when the underlying storage cannot be
	// reached. Callers must surface it rather than treat the request as
	// still pending.
	ErrUnavailable = errors.New("store: storage unavailable")
)
