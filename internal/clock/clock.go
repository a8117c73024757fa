// Package clock is the time source indirection used by the store and the
// timeout sweep; tests override NowFunc to pin request deadlines.
package clock

import "time"

// NowFunc returns the current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
