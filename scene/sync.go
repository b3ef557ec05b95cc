package scene

import (
	"go.uber.org/zap"
)

// ConnectionListener is told about the merged connection list whenever it
// changes.
type ConnectionListener func([]Connection)

// Synchronizer holds the last merged world. It is not safe for concurrent use;
// the owning event loop serializes every call.
type Synchronizer struct {
	world    World
	revision uint64
	logger   *zap.Logger

	onConnections ConnectionListener
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConnectionListener registers the hook fed on connection changes.
func WithConnectionListener(fn ConnectionListener) Option {
	return func(s *Synchronizer) {
		s.onConnections = fn
	}
}

func NewSynchronizer(opts ...Option) *Synchronizer {
	s := &Synchronizer{
		world:  Empty(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// World returns the current merged state.
func (s *Synchronizer) World() World {
	return s.world
}

// Revision counts applied snapshots.
func (s *Synchronizer) Revision() uint64 {
	return s.revision
}

// Apply decodes and merges one inbound payload. A malformed payload is logged
// and dropped as a whole.
func (s *Synchronizer) Apply(payload []byte) error {
	snap, err := DecodeSnapshot(payload)
	if err != nil {
		s.logger.Warn("dropping malformed snapshot", zap.Error(err), zap.Int("bytes", len(payload)))
		return err
	}
	s.Merge(snap)
	return nil
}

// Merge applies an already decoded snapshot.
func (s *Synchronizer) Merge(snap Snapshot) {
	prev := s.world
	s.world = Merge(prev, snap)
	s.revision++

	fields := snap.Fields()
	s.logger.Debug("snapshot merged",
		zap.Uint64("revision", s.revision),
		zap.Int("fields", len(fields)),
		zap.Int("points", len(s.world.Points)),
		zap.Int("connections", len(s.world.Connections)))

	if s.onConnections != nil && !connectionsEqual(prev.Connections, s.world.Connections) {
		s.onConnections(s.world.Connections)
	}
}

// SetCurrentTime moves the playhead locally ahead of the engine's
// confirmation. The next snapshot carrying currentTime wins.
func (s *Synchronizer) SetCurrentTime(t float64) {
	s.world.CurrentTime = t
}
