package idgen

import "github.com/google/uuid"

// NewFunc generates a request identifier. A thin indirection so tests can
// stub identifiers.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }
