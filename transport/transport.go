// Package transport moves command text to the remote engine and world
// snapshots back. Delivery is at most once; nothing is acknowledged or
// retried.
package transport

import (
	"context"
)

// Transport pumps outbox to the engine and engine snapshots into inbox until
// ctx is cancelled or the connection fails. A cancelled context is not an
// error.
type Transport interface {
	Run(ctx context.Context, outbox <-chan string, inbox chan<- []byte) error
	// Publish sends a single command outside of Run.
	Publish(ctx context.Context, text string) error
}

// deliver hands a payload to the consumer unless ctx ends first.
func deliver(ctx context.Context, inbox chan<- []byte, payload []byte) bool {
	select {
	case inbox <- payload:
		return true
	case <-ctx.Done():
		return false
	}
}
