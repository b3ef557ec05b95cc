package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/scene"
)

type recorder struct {
	cmds []command.Command
}

func (r *recorder) Emit(cmd command.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recorder) wires() []string {
	out := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = c.Wire()
	}
	return out
}

// testConfig makes one unit of pointer travel equal one second.
func testConfig() Config {
	return Config{MaxTime: 60, LabelGutter: 10, MinDuration: 0.1}
}

const measured = 70

func TestPixelsToTime(t *testing.T) {
	c := DefaultConfig()
	assert.InDelta(t, 30.0, c.PixelsToTime(50, 100), 1e-9)
	assert.Equal(t, 0.0, c.PixelsToTime(50, 0))
	assert.Equal(t, 0.0, c.PixelsToTime(50, -5))

	tc := testConfig()
	assert.InDelta(t, 0.0, tc.TimeAt(3, measured), 1e-9)
	assert.InDelta(t, 15.0, tc.TimeAt(25, measured), 1e-9)
	assert.InDelta(t, 60.0, tc.TimeAt(500, measured), 1e-9)
}

func TestApplyKeepsClipInvariants(t *testing.T) {
	c := testConfig()
	starts := []float64{0, 0.05, 1, 4.5}
	durations := []float64{0.1, 0.25, 2, 10}
	deltas := []float64{-100, -5, -1, -0.05, 0, 0.05, 1, 5, 100}

	for _, s := range starts {
		for _, d := range durations {
			e := s + d
			for _, delta := range deltas {
				for _, kind := range []GestureKind{ResizeLeft, ResizeRight, Move} {
					ns, ne := c.Apply(kind, s, e, delta)
					assert.GreaterOrEqual(t, ns, 0.0, "%s %v..%v %+v", kind, s, e, delta)
					assert.GreaterOrEqual(t, ne-ns, c.MinDuration-1e-9, "%s %v..%v %+v", kind, s, e, delta)
				}
			}
		}
	}

	// Clips typed shorter than MinDuration never get a negative start.
	for _, s := range starts {
		for _, d := range []float64{0, 0.01, 0.05, 0.09} {
			e := s + d
			for _, delta := range deltas {
				for _, kind := range []GestureKind{ResizeLeft, ResizeRight, Move} {
					ns, ne := c.Apply(kind, s, e, delta)
					assert.GreaterOrEqual(t, ns, 0.0, "%s %v..%v %+v", kind, s, e, delta)
					assert.GreaterOrEqual(t, ne, ns, "%s %v..%v %+v", kind, s, e, delta)
				}
			}
		}
	}

	ns, ne := c.Apply(ResizeLeft, 0, 0.05, -1)
	assert.Equal(t, 0.0, ns)
	assert.Equal(t, 0.05, ne)

	ns, ne = c.Apply(Move, 2, 5, -10)
	assert.Equal(t, 0.0, ns)
	assert.InDelta(t, 3.0, ne, 1e-9)

	ns, ne = c.Apply(ResizeLeft, 2, 5, 10)
	assert.InDelta(t, 4.9, ns, 1e-9)
	assert.Equal(t, 5.0, ne)

	ns, ne = c.Apply(ResizeRight, 2, 5, -10)
	assert.Equal(t, 2.0, ns)
	assert.InDelta(t, 2.1, ne, 1e-9)
}

func TestMoveGestureEmitsUpdatesAndReleases(t *testing.T) {
	rec := &recorder{}
	bus := NewPointerBus()
	ed := NewEditor(testConfig(), bus, rec)
	clip := scene.Clip{ID: "c1", Name: "Lift", StartTime: 2, EndTime: 5}

	require.NoError(t, ed.Begin(Move, clip, 20, measured))
	require.Equal(t, 1, bus.Len())

	bus.Dispatch(PointerEvent{Kind: PointerMove, X: 21.5})
	p, ok := ed.Active()
	require.True(t, ok)
	assert.InDelta(t, 3.5, p.Start, 1e-9)
	assert.InDelta(t, 6.5, p.End, 1e-9)

	bus.Dispatch(PointerEvent{Kind: PointerMove, X: 0})
	bus.Dispatch(PointerEvent{Kind: PointerUp, X: 0})

	require.Equal(t, 0, bus.Len())
	_, ok = ed.Active()
	require.False(t, ok)
	require.Equal(t, []string{
		"UpdateClip(c1, Lift, 3.50, 6.50)",
		"UpdateClip(c1, Lift, 0.00, 3.00)",
	}, rec.wires())

	bus.Dispatch(PointerEvent{Kind: PointerMove, X: 40})
	require.Len(t, rec.cmds, 2, "no updates after pointer-up")
}

func TestResizeGesturesClamp(t *testing.T) {
	rec := &recorder{}
	bus := NewPointerBus()
	ed := NewEditor(testConfig(), bus, rec)
	clip := scene.Clip{ID: "c1", Name: "Lift", StartTime: 2, EndTime: 5}

	require.NoError(t, ed.Begin(ResizeLeft, clip, 20, measured))
	bus.Dispatch(PointerEvent{Kind: PointerMove, X: 60})
	bus.Dispatch(PointerEvent{Kind: PointerMove, X: 0})
	bus.Dispatch(PointerEvent{Kind: PointerUp})

	require.NoError(t, ed.Begin(ResizeRight, clip, 20, measured))
	bus.Dispatch(PointerEvent{Kind: PointerMove, X: -20})
	bus.Dispatch(PointerEvent{Kind: PointerUp})

	require.Equal(t, []string{
		"UpdateClip(c1, Lift, 4.90, 5.00)",
		"UpdateClip(c1, Lift, 0.00, 5.00)",
		"UpdateClip(c1, Lift, 2.00, 2.10)",
	}, rec.wires())
	require.Equal(t, 0, bus.Len())
}

func TestNoListenerLeaksAcrossGestures(t *testing.T) {
	bus := NewPointerBus()
	ed := NewEditor(testConfig(), bus, &recorder{})
	clip := scene.Clip{ID: "c1", StartTime: 0, EndTime: 1}

	for i := 0; i < 50; i++ {
		require.NoError(t, ed.Begin(GestureKind(i%3), clip, 15, measured))
		bus.Dispatch(PointerEvent{Kind: PointerMove, X: float64(i)})
		bus.Dispatch(PointerEvent{Kind: PointerUp, X: 1000})
		require.Equal(t, 0, bus.Len())
	}

	require.NoError(t, ed.Begin(Move, clip, 15, measured))
	require.True(t, errors.Is(ed.Begin(Move, clip, 15, measured), ErrBusy))
	ed.Abort()
	require.Equal(t, 0, bus.Len())
}

func TestRenameBlocksDragAndCommitsOnChange(t *testing.T) {
	rec := &recorder{}
	bus := NewPointerBus()
	ed := NewEditor(testConfig(), bus, rec)
	clip := scene.Clip{ID: "c1", Name: "Lift", StartTime: 1, EndTime: 2}

	ed.BeginRename(clip)
	require.True(t, errors.Is(ed.Begin(Move, clip, 0, measured), ErrRenaming))
	require.Equal(t, 0, bus.Len())

	require.NoError(t, ed.CommitRename(clip))
	require.Empty(t, rec.cmds, "unchanged name emits nothing")

	ed.BeginRename(clip)
	require.True(t, ed.SetRenameText("c1", "Raise"))
	draft, ok := ed.Renaming("c1")
	require.True(t, ok)
	require.Equal(t, "Raise", draft)
	require.NoError(t, ed.CommitRename(clip))
	require.Equal(t, []string{"UpdateClip(c1, Raise, 1.00, 2.00)"}, rec.wires())

	ed.BeginRename(clip)
	ed.SetRenameText("c1", "Drop")
	ed.CancelRename("c1")
	require.NoError(t, ed.CommitRename(clip))
	require.Len(t, rec.cmds, 1, "cancel discards the draft")
	require.False(t, ed.SetRenameText("c1", "x"))

	require.NoError(t, ed.Begin(Move, clip, 0, measured))
}

func TestPartition(t *testing.T) {
	clips := []scene.Clip{
		{ID: "a", TargetID: 3},
		{ID: "b", TargetID: 1},
		{ID: "c", TargetID: 3},
		{ID: "d", TargetID: 2},
	}
	tracks := Partition(clips)
	require.Len(t, tracks, 3)
	assert.Equal(t, 3, tracks[0].TargetID)
	assert.Equal(t, 1, tracks[1].TargetID)
	assert.Equal(t, 2, tracks[2].TargetID)
	assert.Len(t, tracks[0].Clips, 2)
	assert.Equal(t, "c", tracks[0].Clips[1].ID)
	assert.Empty(t, Partition(nil))
}

func TestDeleteAndPlayback(t *testing.T) {
	conf := DeleteClip(scene.Clip{ID: "c9", Name: "Spin"})
	assert.Equal(t, `Delete clip "Spin"?`, conf.Prompt)
	assert.Equal(t, "DeleteClipById(c9)", conf.Wire())

	assert.Equal(t, command.Pause{}, TogglePlay(true))
	assert.Equal(t, command.Play{}, TogglePlay(false))
}

func TestPointerBusReleaseIsIdempotent(t *testing.T) {
	bus := NewPointerBus()
	var calls int
	release := bus.Listen(func(PointerEvent) { calls++ })
	other := bus.Listen(func(PointerEvent) {})
	bus.Dispatch(PointerEvent{})
	release()
	release()
	require.Equal(t, 1, bus.Len())
	bus.Dispatch(PointerEvent{})
	require.Equal(t, 1, calls)
	other()
	require.Equal(t, 0, bus.Len())
}
