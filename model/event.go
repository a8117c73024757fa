package model

import "time"

// EventType identifies what happened to a request.
type EventType string

// Standard event topics.
const (
	EventRequestCreated EventType = "request.created"
	EventRequestUpdated EventType = "request.updated"
)

// Event is the change-feed envelope emitted by the store after every
// successful create or transition. Events for the same request id are
// published in mutation order.
type Event struct {
	Type      EventType `json:"type"`
	Request   *Request  `json:"request"`
	EmittedAt time.Time `json:"emittedAt"`
}
