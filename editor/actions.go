package editor

import (
	"fmt"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/materials"
	"github.com/Kristof1273/3D-builder/scene"
	"github.com/Kristof1273/3D-builder/timeline"
)

// Materials panel.

func (s *Session) AddMaterial() materials.Material {
	m := s.catalog.AddBlank()
	s.changed()
	return m
}

func (s *Session) RenameMaterial(id, name string) error {
	err := s.catalog.SetName(id, name)
	s.build.Revalidate(s.catalog)
	s.changed()
	return err
}

func (s *Session) SetMaterialColor(id, color string) error {
	err := s.catalog.SetColor(id, color)
	s.build.Revalidate(s.catalog)
	s.changed()
	return err
}

func (s *Session) SetMaterialThickness(id, text string) error {
	err := s.catalog.SetThickness(id, text)
	s.build.Revalidate(s.catalog)
	s.changed()
	return err
}

func (s *Session) SetMaterialPrice(id, text string) error {
	err := s.catalog.SetPrice(id, text)
	s.build.Revalidate(s.catalog)
	s.changed()
	return err
}

// Build mode.

// ToggleBuild arms material id, or disarms when it is already armed.
func (s *Session) ToggleBuild(id string) error {
	err := s.build.Toggle(s.catalog, id)
	s.changed()
	return err
}

// CancelBuild drops the pending start point and stays armed.
func (s *Session) CancelBuild() {
	s.build.Cancel()
	s.changed()
}

func (s *Session) DisarmBuild() {
	s.build.Disarm()
	s.changed()
}

// ClickPoint feeds a point click to build mode. Clicks while disarmed are
// ignored.
func (s *Session) ClickPoint(id int) error {
	if _, ok := s.World().Point(id); !ok {
		return fmt.Errorf("%w: p%d", ErrUnknownPoint, id)
	}
	conn, ok := s.build.Click(id)
	if !ok {
		s.changed()
		return nil
	}
	return s.emit(conn)
}

// Timeline.

func (s *Session) clip(id string) (scene.Clip, error) {
	c, ok := s.World().Clip(id)
	if !ok {
		return scene.Clip{}, fmt.Errorf("%w: %s", timeline.ErrUnknownClip, id)
	}
	return c, nil
}

// BeginClipGesture starts a move or resize at pointer x in a track area of
// the given measured width.
func (s *Session) BeginClipGesture(kind timeline.GestureKind, clipID string, x, width float64) error {
	clip, err := s.clip(clipID)
	if err != nil {
		return err
	}
	err = s.timeline.Begin(kind, clip, x, width)
	s.changed()
	return err
}

// Pointer routes a global pointer event to the active gesture.
func (s *Session) Pointer(ev timeline.PointerEvent) {
	s.timeline.Bus().Dispatch(ev)
	s.changed()
}

func (s *Session) BeginClipRename(clipID string) error {
	clip, err := s.clip(clipID)
	if err != nil {
		return err
	}
	s.timeline.BeginRename(clip)
	s.changed()
	return nil
}

func (s *Session) SetClipRenameText(clipID, text string) {
	s.timeline.SetRenameText(clipID, text)
	s.changed()
}

func (s *Session) CommitClipRename(clipID string) error {
	clip, err := s.clip(clipID)
	if err != nil {
		s.timeline.CancelRename(clipID)
		return err
	}
	err = s.timeline.CommitRename(clip)
	s.changed()
	return err
}

func (s *Session) CancelClipRename(clipID string) {
	s.timeline.CancelRename(clipID)
	s.changed()
}

func (s *Session) DeleteClip(clipID string) (command.Confirmation, error) {
	clip, err := s.clip(clipID)
	if err != nil {
		return command.Confirmation{}, err
	}
	return s.ask(timeline.DeleteClip(clip), false, nil), nil
}

// TogglePlay sends Play or Pause depending on the engine's last known state.
func (s *Session) TogglePlay() error {
	return s.emit(timeline.TogglePlay(s.World().IsPlaying))
}

func (s *Session) Stop() error {
	return s.emit(command.Stop{})
}

// Seek moves the playhead locally right away and asks the engine to follow.
func (s *Session) Seek(t float64) error {
	if t < 0 {
		t = 0
	}
	s.sync.SetCurrentTime(t)
	return s.emit(command.Seek{Time: t})
}
