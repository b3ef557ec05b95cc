package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kristof1273/3D-builder/editor"
)

// Driver reaches the session owned by a running program. Calls are queued
// as messages and run inside Update.
type Driver struct {
	send    func(tea.Msg)
	stopped chan struct{}
	once    sync.Once
}

func NewDriver(p *tea.Program) *Driver {
	return newDriver(p.Send)
}

func newDriver(send func(tea.Msg)) *Driver {
	return &Driver{send: send, stopped: make(chan struct{})}
}

// Stop marks the program as finished. Pending and later calls return
// editor.ErrStopped.
func (d *Driver) Stop() {
	d.once.Do(func() { close(d.stopped) })
}

func (d *Driver) Call(ctx context.Context, fn func(*editor.Session) error) error {
	select {
	case <-d.stopped:
		return editor.ErrStopped
	default:
	}
	c := callMsg{fn: fn, done: make(chan error, 1)}
	d.send(c)
	select {
	case err := <-c.done:
		return err
	case <-d.stopped:
		return editor.ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Forward relays snapshots from inbox into the program until ctx is done,
// the inbox closes or the program stops.
func (d *Driver) Forward(ctx context.Context, inbox <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.stopped:
			return nil
		case payload, ok := <-inbox:
			if !ok {
				return nil
			}
			d.send(SnapshotMsg(payload))
		}
	}
}
