// Package bus provides the shared event stream boundary: a publish/subscribe
// transport with at-least-once delivery semantics, a Redis-backed
// implementation, and the correlation collector that gathers side-channel
// agent notes for one in-flight request within a bounded window.
package bus

import (
	"context"

	"github.com/tlum/assistant-backend/core"
)

// Stream is the durable event transport boundary. Implementations carry
// at-least-once semantics; consumers must tolerate duplicates. Malformed
// wire payloads are dropped by implementations, never surfaced as errors.
type Stream interface {
	// Publish sends an event to the shared stream.
	Publish(ctx context.Context, event core.Event) error

	// Subscribe returns a channel of decoded events. The channel closes when
	// ctx is cancelled or the stream shuts down.
	Subscribe(ctx context.Context) (<-chan core.Event, error)

	// Close terminates all subscriptions and releases the connection.
	Close() error
}
