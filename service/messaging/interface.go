// Package messaging defines the abstract queue used to ship approval events
// to out-of-band consumers (notification channels). Delivery is at-least-once
// with explicit acknowledgement.
package messaging

import (
	"context"
)

// Vendor names a queue implementation.
type Vendor string

const (
	// VendorMemory selects the in-process channel-backed queue.
	VendorMemory Vendor = "memory"

	// VendorFS selects the filesystem-backed queue.
	VendorFS Vendor = "fs"
)

// Queue represents an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message; the queue may
	// redeliver it up to its retry limit.
	Nack(err error) error
}
