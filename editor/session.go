// Package editor ties the command pipeline, the world synchronizer, the
// timeline and the material engine into one session. A Session is owned by
// a single goroutine; Loop and the terminal UI are the two owners.
package editor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/materials"
	"github.com/Kristof1273/3D-builder/scene"
	"github.com/Kristof1273/3D-builder/timeline"
)

var (
	ErrNothingPending  = errors.New("editor: nothing to confirm")
	ErrUnknownPoint    = errors.New("editor: unknown point")
	ErrInvalidPosition = errors.New("editor: invalid coordinates")
	ErrUnnamedProject  = errors.New("editor: project has no name yet")
	ErrBlankName       = errors.New("editor: name is blank")
)

type Options struct {
	// Outbox receives wire text. Sends never block.
	Outbox   chan<- string
	Prices   materials.PriceList
	Timeline timeline.Config
	Logger   *zap.Logger
	// OnChange is called with a fresh view after every handled event.
	OnChange func(View)
}

type pendingAction struct {
	conf   command.Confirmation
	record bool
	after  func()
}

type Session struct {
	logger     *zap.Logger
	sync       *scene.Synchronizer
	catalog    *materials.Catalog
	dispatcher *command.Dispatcher
	registry   *command.Registry
	timeline   *timeline.Editor
	build      materials.BuildMode

	project  string
	pending  *pendingAction
	onChange func(View)
}

func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tl := opts.Timeline
	if tl.MaxTime <= 0 {
		tl = timeline.DefaultConfig()
	}

	s := &Session{
		logger:   logger,
		catalog:  materials.NewCatalog(opts.Prices),
		registry: command.NewRegistry(nil),
		onChange: opts.OnChange,
	}
	s.sync = scene.NewSynchronizer(
		scene.WithLogger(logger.Named("sync")),
		scene.WithConnectionListener(s.scanConnections),
	)
	s.dispatcher = command.NewDispatcher(command.NewPreprocessor(s.catalog), opts.Outbox, logger.Named("dispatch"))
	s.timeline = timeline.NewEditor(tl, timeline.NewPointerBus(), s.dispatcher)
	return s
}

func (s *Session) scanConnections(conns []scene.Connection) {
	if added := s.catalog.Scan(conns); added > 0 {
		s.logger.Debug("materials discovered", zap.Int("added", added), zap.Int("total", s.catalog.Len()))
	}
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s.View())
	}
}

func (s *Session) World() scene.World {
	return s.sync.World()
}

func (s *Session) Catalog() *materials.Catalog {
	return s.catalog
}

func (s *Session) History() *command.History {
	return s.dispatcher.History()
}

func (s *Session) Timeline() *timeline.Editor {
	return s.timeline
}

func (s *Session) Project() string {
	return s.project
}

// ApplySnapshot merges an inbound payload. Malformed payloads are dropped
// and reported.
func (s *Session) ApplySnapshot(payload []byte) error {
	if err := s.sync.Apply(payload); err != nil {
		return err
	}
	s.changed()
	return nil
}

// Submit runs one typed line through the command pipeline.
func (s *Session) Submit(line string) (command.Command, error) {
	cmd, err := s.dispatcher.Submit(line)
	s.changed()
	return cmd, err
}

// Suggest returns the autocomplete ghost text for input.
func (s *Session) Suggest(input string) string {
	return s.registry.Suggest(input)
}

// Help lists the commands matching term.
func (s *Session) Help(term string) []command.Spec {
	return s.registry.Filter(term)
}

func (s *Session) emit(cmd command.Command) error {
	err := s.dispatcher.Emit(cmd)
	s.changed()
	return err
}

func (s *Session) send(cmd command.Command) error {
	err := s.dispatcher.Send(cmd)
	s.changed()
	return err
}

func (s *Session) ask(conf command.Confirmation, record bool, after func()) command.Confirmation {
	s.pending = &pendingAction{conf: conf, record: record, after: after}
	s.changed()
	return conf
}

// Pending returns the confirmation waiting for an answer.
func (s *Session) Pending() (command.Confirmation, bool) {
	if s.pending == nil {
		return command.Confirmation{}, false
	}
	return s.pending.conf, true
}

// Confirm answers the pending confirmation. Declining drops it without side
// effects.
func (s *Session) Confirm(accept bool) error {
	p := s.pending
	if p == nil {
		return ErrNothingPending
	}
	s.pending = nil
	if !accept {
		s.changed()
		return nil
	}
	var err error
	if p.record {
		err = s.dispatcher.Send(p.conf.Command)
	} else {
		err = s.dispatcher.Emit(p.conf.Command)
	}
	if err == nil && p.after != nil {
		p.after()
	}
	s.changed()
	return err
}

// Points table.

// ProposeMove sends a Move for point id when all three coordinates parse and
// at least one differs. On ErrInvalidPosition the caller restores the
// displayed values.
func (s *Session) ProposeMove(id int, xs, ys, zs string) error {
	p, ok := s.World().Point(id)
	if !ok {
		return fmt.Errorf("%w: p%d", ErrUnknownPoint, id)
	}
	var coords [3]float64
	for i, text := range []string{xs, ys, zs} {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %q", ErrInvalidPosition, text)
		}
		coords[i] = v
	}
	if coords[0] == p.X && coords[1] == p.Y && coords[2] == p.Z {
		return nil
	}
	return s.emit(command.Move{PointID: id, X: coords[0], Y: coords[1], Z: coords[2]})
}

// ProposeColor sends a Color only when the color actually changes.
func (s *Session) ProposeColor(id int, color string) error {
	p, ok := s.World().Point(id)
	if !ok {
		return fmt.Errorf("%w: p%d", ErrUnknownPoint, id)
	}
	if materials.SameColor(p.Color, color) {
		return nil
	}
	return s.emit(command.Color{PointID: id, Color: strings.TrimSpace(color)})
}

func (s *Session) DeletePoint(id int) command.Confirmation {
	return s.ask(command.Confirmation{
		Prompt:  fmt.Sprintf("Delete point %s?", command.PointRef(id)),
		Command: command.Delete{Target: command.PointRef(id)},
	}, false, nil)
}

// Collections panel.

// AddToCollection accepts a single id or a range such as p3...p6.
func (s *Session) AddToCollection(name, ids string) error {
	parsed, err := command.ParseIDs(strings.ToLower(ids))
	if err != nil {
		return err
	}
	return s.send(command.AddToCollection{Collection: name, PointIDs: parsed})
}

func (s *Session) RemoveFromCollection(name string, id int) error {
	return s.send(command.RemoveFromCollection{Collection: name, PointIDs: []int{id}})
}

func (s *Session) CreateCollection(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	return s.send(command.AddCollection{Collection: name, PointIDs: []int{}})
}

// RenameCollection ignores blank and unchanged names.
func (s *Session) RenameCollection(from, to string) error {
	if strings.TrimSpace(to) == "" || to == from {
		return nil
	}
	return s.send(command.RenameCollection{From: from, To: to})
}

// Project lifecycle.

// NewProject asks before wiping the remote world and forgetting the
// project name.
func (s *Session) NewProject() command.Confirmation {
	return s.ask(command.Confirmation{
		Prompt:  "Start new project? Unsaved changes will be lost.",
		Command: command.Clear{},
	}, true, func() { s.project = "" })
}

// Save stores the world. An empty name reuses the current project name;
// a non-empty name becomes the current name.
func (s *Session) Save(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if s.project == "" {
			return ErrUnnamedProject
		}
		name = s.project
	}
	if err := s.send(command.SaveProject{Project: name}); err != nil {
		return err
	}
	s.project = name
	s.changed()
	return nil
}

// SaveAs stores a copy under name and stays on the current project.
func (s *Session) SaveAs(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	return s.send(command.SaveProject{Project: name})
}

func (s *Session) LoadProject(id, name string) error {
	if err := s.send(command.LoadProject{ID: id}); err != nil {
		return err
	}
	s.project = name
	s.changed()
	return nil
}

func (s *Session) Undo() error {
	return s.send(command.Undo{})
}

func (s *Session) Redo() error {
	return s.send(command.Redo{})
}
