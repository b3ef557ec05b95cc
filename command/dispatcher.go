package command

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrOutboxFull is returned when a command could not be queued. The command
// is dropped; delivery is at most once.
var ErrOutboxFull = errors.New("command: outbox full")

// Dispatcher runs typed input through the preprocessor, keeps the history and
// hands wire text to the outbound queue. Not safe for concurrent use.
type Dispatcher struct {
	pre     *Preprocessor
	history *History
	outbox  chan<- string
	logger  *zap.Logger

	labels LabelMode
}

func NewDispatcher(pre *Preprocessor, outbox chan<- string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pre == nil {
		pre = NewPreprocessor(nil)
	}
	return &Dispatcher{
		pre:     pre,
		history: NewHistory(),
		outbox:  outbox,
		logger:  logger,
		labels:  LabelsID,
	}
}

func (d *Dispatcher) History() *History {
	return d.history
}

// LabelMode is the renderer label setting chosen with showindexes/hideindexes.
func (d *Dispatcher) LabelMode() LabelMode {
	return d.labels
}

// Submit handles one line typed by the user. It returns the command that was
// produced, or nil for blank input.
func (d *Dispatcher) Submit(line string) (Command, error) {
	cmd := d.pre.Rewrite(line)
	if cmd == nil {
		return nil, nil
	}

	if IsLocal(cmd) {
		d.history.Append(strings.TrimSpace(line))
		d.applyLocal(cmd)
		return cmd, nil
	}

	text := cmd.Wire()
	d.history.Append(text)
	if _, raw := cmd.(Raw); !raw {
		d.logger.Debug("command rewritten", zap.String("input", strings.TrimSpace(line)), zap.String("wire", text))
	}
	return cmd, d.Emit(cmd)
}

// Send emits a UI-built command and records it in the history, the same way
// typed input is recorded.
func (d *Dispatcher) Send(cmd Command) error {
	d.history.Append(cmd.Wire())
	return d.Emit(cmd)
}

// Emit queues cmd without touching the history. It never blocks.
func (d *Dispatcher) Emit(cmd Command) error {
	if IsLocal(cmd) {
		d.applyLocal(cmd)
		return nil
	}
	text := cmd.Wire()
	select {
	case d.outbox <- text:
		d.logger.Debug("command queued", zap.String("command", cmd.Name()), zap.String("wire", text))
		return nil
	default:
		d.logger.Warn("outbox full, dropping command", zap.String("wire", text))
		return ErrOutboxFull
	}
}

func (d *Dispatcher) applyLocal(cmd Command) {
	switch c := cmd.(type) {
	case ShowIndexes:
		d.labels = c.Mode
	case HideIndexes:
		d.labels = LabelsHidden
	case ClearHistory:
		d.history.Clear()
	}
}
