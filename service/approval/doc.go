// Package approval implements the human-in-the-loop lifecycle manager. It
// creates approval requests, lets a producer wait for the outcome, applies
// human decisions through the store's atomic transition and runs the
// background timeout sweep.
package approval
