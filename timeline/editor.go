package timeline

import (
	"math"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/scene"
)

type GestureKind int

const (
	Move GestureKind = iota
	ResizeLeft
	ResizeRight
)

func (k GestureKind) String() string {
	switch k {
	case ResizeLeft:
		return "resize-left"
	case ResizeRight:
		return "resize-right"
	default:
		return "move"
	}
}

// Apply shifts a clip's bounds by delta seconds according to kind. Resizes
// keep at least MinDuration between start and end; moves keep the duration
// and never start before zero.
func (c Config) Apply(kind GestureKind, start, end, delta float64) (float64, float64) {
	switch kind {
	case ResizeLeft:
		s := start + delta
		if s >= end-c.MinDuration {
			s = end - c.MinDuration
		}
		// A clip already shorter than MinDuration keeps start at 0.
		return math.Max(0, s), end
	case ResizeRight:
		e := end + delta
		if e <= start+c.MinDuration {
			e = start + c.MinDuration
		}
		return start, e
	default:
		s := math.Max(0, start+delta)
		return s, s + (end - start)
	}
}

// TimeAt maps an absolute pointer position in a track area of the given
// measured width to a time in [0, MaxTime].
func (c Config) TimeAt(x, measured float64) float64 {
	t := c.PixelsToTime(x-c.LabelGutter, c.TrackWidth(measured))
	return math.Min(math.Max(t, 0), c.MaxTime)
}

// Preview is the bounds of the clip under an active gesture, for drawing.
type Preview struct {
	ClipID string
	Kind   GestureKind
	Start  float64
	End    float64
}

type gesture struct {
	clip       scene.Clip
	kind       GestureKind
	originX    float64
	trackWidth float64
	preview    Preview
	release    func()
}

// Editor owns the per-clip interaction state: rename drafts and at most one
// pointer gesture. It must be driven from a single goroutine.
type Editor struct {
	cfg  Config
	bus  *PointerBus
	emit Emitter

	drafts map[string]string
	active *gesture
}

func NewEditor(cfg Config, bus *PointerBus, emit Emitter) *Editor {
	if bus == nil {
		bus = NewPointerBus()
	}
	return &Editor{
		cfg:    cfg,
		bus:    bus,
		emit:   emit,
		drafts: make(map[string]string),
	}
}

func (e *Editor) Config() Config {
	return e.cfg
}

func (e *Editor) Bus() *PointerBus {
	return e.bus
}

// BeginRename opens the rename field of clip, seeded with its current name.
func (e *Editor) BeginRename(clip scene.Clip) {
	e.drafts[clip.ID] = clip.Name
}

// SetRenameText updates the draft. It reports false when clipID is not
// being renamed.
func (e *Editor) SetRenameText(clipID, text string) bool {
	if _, ok := e.drafts[clipID]; !ok {
		return false
	}
	e.drafts[clipID] = text
	return true
}

// Renaming returns the current draft for clipID.
func (e *Editor) Renaming(clipID string) (string, bool) {
	draft, ok := e.drafts[clipID]
	return draft, ok
}

// CommitRename closes the rename field and emits an update when the name
// actually changed.
func (e *Editor) CommitRename(clip scene.Clip) error {
	draft, ok := e.drafts[clip.ID]
	if !ok {
		return nil
	}
	delete(e.drafts, clip.ID)
	if draft == clip.Name {
		return nil
	}
	return e.emit.Emit(command.UpdateClip{
		ID:       clip.ID,
		ClipName: draft,
		Start:    clip.StartTime,
		End:      clip.EndTime,
	})
}

func (e *Editor) CancelRename(clipID string) {
	delete(e.drafts, clipID)
}

// Begin starts a move or resize of clip at pointer position x. The track
// width is measured once here and used for the whole gesture. The gesture
// listens on the bus until the next pointer-up, wherever it happens.
func (e *Editor) Begin(kind GestureKind, clip scene.Clip, x, measuredWidth float64) error {
	if _, renaming := e.drafts[clip.ID]; renaming {
		return ErrRenaming
	}
	if e.active != nil {
		return ErrBusy
	}
	g := &gesture{
		clip:       clip,
		kind:       kind,
		originX:    x,
		trackWidth: e.cfg.TrackWidth(measuredWidth),
		preview: Preview{
			ClipID: clip.ID,
			Kind:   kind,
			Start:  clip.StartTime,
			End:    clip.EndTime,
		},
	}
	e.active = g
	g.release = e.bus.Listen(func(ev PointerEvent) { e.handle(g, ev) })
	return nil
}

func (e *Editor) handle(g *gesture, ev PointerEvent) {
	if e.active != g {
		g.release()
		return
	}
	switch ev.Kind {
	case PointerUp:
		e.finish()
	case PointerMove:
		delta := e.cfg.PixelsToTime(ev.X-g.originX, g.trackWidth)
		start, end := e.cfg.Apply(g.kind, g.clip.StartTime, g.clip.EndTime, delta)
		g.preview.Start, g.preview.End = start, end
		_ = e.emit.Emit(command.UpdateClip{
			ID:       g.clip.ID,
			ClipName: g.clip.Name,
			Start:    start,
			End:      end,
		})
	}
}

func (e *Editor) finish() {
	g := e.active
	if g == nil {
		return
	}
	e.active = nil
	g.release()
}

// Active returns the preview of the gesture in progress.
func (e *Editor) Active() (Preview, bool) {
	if e.active == nil {
		return Preview{}, false
	}
	return e.active.preview, true
}

// Abort ends any gesture without waiting for pointer-up. Updates already
// emitted stand.
func (e *Editor) Abort() {
	e.finish()
}
