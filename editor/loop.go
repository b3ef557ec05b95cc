package editor

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Driver runs fn on the goroutine that owns the session and returns its
// error.
type Driver interface {
	Call(ctx context.Context, fn func(*Session) error) error
}

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("editor: loop stopped")

type call struct {
	fn   func(*Session) error
	done chan error
}

// Loop is the headless owner of a Session. Snapshots from the transport and
// calls from other goroutines are serialized through one select loop.
type Loop struct {
	session *Session
	inbox   <-chan []byte
	calls   chan call
	stopped chan struct{}
	logger  *zap.Logger
}

func NewLoop(session *Session, inbox <-chan []byte, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		session: session,
		inbox:   inbox,
		calls:   make(chan call),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run owns the session until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	l.logger.Info("editor loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("editor loop stopped")
			return nil

		case payload, ok := <-l.inbox:
			if !ok {
				l.inbox = nil
				continue
			}
			// Malformed snapshots are already logged by the synchronizer.
			_ = l.session.ApplySnapshot(payload)

		case c := <-l.calls:
			c.done <- c.fn(l.session)
		}
	}
}

func (l *Loop) Call(ctx context.Context, fn func(*Session) error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case l.calls <- c:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
