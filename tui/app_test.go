package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/goleak"

	"github.com/Kristof1273/3D-builder/editor"
	"github.com/Kristof1273/3D-builder/timeline"
)

const worldJSON = `{
	"points": [{"id": 0, "x": 0, "y": 0, "z": 0, "color": "#ffffff"}, {"id": 1, "x": 3, "y": 4, "z": 0, "color": "#ffffff"}],
	"connections": [{"fromId": 0, "toId": 1, "color": "#ffffff", "thickness": 2}],
	"clips": [{"id": "c1", "targetId": 0, "type": "Move", "name": "Lift", "startTime": 2, "endTime": 5, "axis": "y", "value": 5}]
}`

// newTestModel returns a 70 column model whose track area maps one cell to
// one second.
func newTestModel(t *testing.T) (*Model, chan string) {
	t.Helper()
	outbox := make(chan string, 32)
	s := editor.NewSession(editor.Options{
		Outbox:   outbox,
		Timeline: timeline.Config{MaxTime: 60, LabelGutter: 10, MinDuration: 0.1},
	})
	m := New(s)
	update(t, m, tea.WindowSizeMsg{Width: 70, Height: 40})
	update(t, m, SnapshotMsg(worldJSON))
	return m, outbox
}

func update(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	next, _ := m.Update(msg)
	if next != m {
		t.Fatalf("update must keep the model pointer")
	}
}

func typeText(t *testing.T, m *Model, text string) {
	t.Helper()
	update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(t *testing.T, m *Model, k tea.KeyType) {
	t.Helper()
	update(t, m, tea.KeyMsg{Type: k})
}

func drain(ch chan string) []string {
	var out []string
	for {
		select {
		case s := <-ch:
			out = append(out, s)
		default:
			return out
		}
	}
}

func equal(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCommandLineSubmitsAndRecallsHistory(t *testing.T) {
	m, outbox := newTestModel(t)

	typeText(t, m, "Connect(p0, p1, Material 1)")
	press(t, m, tea.KeyEnter)
	equal(t, drain(outbox), []string{"Connect(p0, p1, #ffffff, 2)"})
	if m.input.Value() != "" {
		t.Fatalf("input should clear after submit, got %q", m.input.Value())
	}

	press(t, m, tea.KeyUp)
	if got := m.input.Value(); got != "Connect(p0, p1, #ffffff, 2)" {
		t.Fatalf("history recall = %q", got)
	}
	press(t, m, tea.KeyDown)
	if got := m.input.Value(); got != "" {
		t.Fatalf("stepping past newest entry should clear input, got %q", got)
	}
}

func TestTabAcceptsSuggestion(t *testing.T) {
	m, _ := newTestModel(t)
	typeText(t, m, "addp")
	if !strings.Contains(m.View(), "AddPoint(x, y, z, color)") {
		t.Fatalf("ghost suggestion missing from view")
	}
	press(t, m, tea.KeyTab)
	if got := m.input.Value(); got != "AddPoint(x, y, z, color)" {
		t.Fatalf("tab should accept suggestion, got %q", got)
	}
}

func TestSnapshotFillsBOMTable(t *testing.T) {
	m, _ := newTestModel(t)
	rows := m.bom.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected one material row, got %d", len(rows))
	}
	if rows[0][0] != "Material 1" || rows[0][4] != "5.00" {
		t.Fatalf("unexpected row %v", rows[0])
	}

	update(t, m, SnapshotMsg(`{"points": [`))
	if m.Err() == nil {
		t.Fatalf("malformed snapshot should surface an error")
	}
	if len(m.session.World().Points) != 2 {
		t.Fatalf("malformed snapshot must not touch the world")
	}
}

func TestMouseDragMovesClip(t *testing.T) {
	m, outbox := newTestModel(t)

	// c1 spans cells 12..14 on the first track row.
	update(t, m, tea.MouseMsg{X: 13, Y: firstTrackY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if _, ok := m.session.Timeline().Active(); !ok {
		t.Fatalf("press on a clip should start a gesture")
	}
	update(t, m, tea.MouseMsg{X: 16, Y: 30, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	update(t, m, tea.MouseMsg{X: 16, Y: 30, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	equal(t, drain(outbox), []string{"UpdateClip(c1, Lift, 5.00, 8.00)"})
	if _, ok := m.session.Timeline().Active(); ok {
		t.Fatalf("release should end the gesture")
	}
	if n := m.session.Timeline().Bus().Len(); n != 0 {
		t.Fatalf("gesture listener leaked: %d", n)
	}
}

func TestMouseResizeClampsToMinimumDuration(t *testing.T) {
	m, outbox := newTestModel(t)

	update(t, m, tea.MouseMsg{X: 12, Y: firstTrackY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	p, ok := m.session.Timeline().Active()
	if !ok || p.Kind != timeline.ResizeLeft {
		t.Fatalf("press on the first cell should resize left, got %+v", p)
	}
	update(t, m, tea.MouseMsg{X: 20, Y: firstTrackY, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	update(t, m, tea.MouseMsg{X: 20, Y: firstTrackY, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	equal(t, drain(outbox), []string{"UpdateClip(c1, Lift, 4.90, 5.00)"})
}

func TestMousePressOutsideClipsIsIgnored(t *testing.T) {
	m, outbox := newTestModel(t)
	update(t, m, tea.MouseMsg{X: 40, Y: firstTrackY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	update(t, m, tea.MouseMsg{X: 45, Y: firstTrackY, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if len(drain(outbox)) != 0 {
		t.Fatalf("no command expected")
	}
}

func TestDeleteClipWaitsForConfirmation(t *testing.T) {
	m, outbox := newTestModel(t)
	press(t, m, tea.KeyF2)
	if m.focus != focusTimeline {
		t.Fatalf("F2 should focus the timeline, got %s", m.focus)
	}

	typeText(t, m, "d")
	if !strings.Contains(m.View(), `Delete clip "Lift"?`) {
		t.Fatalf("confirmation prompt missing")
	}
	typeText(t, m, "n")
	if len(drain(outbox)) != 0 {
		t.Fatalf("declining must not emit")
	}

	typeText(t, m, "d")
	typeText(t, m, "y")
	equal(t, drain(outbox), []string{"DeleteClipById(c1)"})
}

func TestRenameClipFromTimeline(t *testing.T) {
	m, outbox := newTestModel(t)
	press(t, m, tea.KeyF2)
	typeText(t, m, "r")
	if m.mode != inputRename || m.input.Value() != "Lift" {
		t.Fatalf("rename should open seeded with the clip name, got %q", m.input.Value())
	}

	update(t, m, tea.MouseMsg{X: 13, Y: firstTrackY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !errors.Is(m.Err(), timeline.ErrRenaming) {
		t.Fatalf("drag while renaming should be refused, got %v", m.Err())
	}

	for range "Lift" {
		press(t, m, tea.KeyBackspace)
	}
	typeText(t, m, "Drop")
	press(t, m, tea.KeyEnter)
	equal(t, drain(outbox), []string{"UpdateClip(c1, Drop, 2.00, 5.00)"})
	if m.mode != inputCommand {
		t.Fatalf("enter should close the rename field")
	}
}

func TestPlaybackKeys(t *testing.T) {
	m, outbox := newTestModel(t)
	press(t, m, tea.KeyF2)
	typeText(t, m, "p")
	typeText(t, m, "]")
	typeText(t, m, "s")
	equal(t, drain(outbox), []string{"Play", "Seek(1)", "Stop"})
	if got := m.session.World().CurrentTime; got != 1 {
		t.Fatalf("seek should move the playhead locally, got %v", got)
	}
}

func TestMaterialsPanelArmsBuildMode(t *testing.T) {
	m, outbox := newTestModel(t)
	press(t, m, tea.KeyF2)
	press(t, m, tea.KeyF2)
	if m.focus != focusMaterials {
		t.Fatalf("expected materials focus, got %s", m.focus)
	}
	typeText(t, m, "b")
	if !strings.Contains(m.View(), "building with #ffffff / 2") {
		t.Fatalf("build status missing")
	}
	if err := m.session.ClickPoint(0); err != nil {
		t.Fatal(err)
	}
	if err := m.session.ClickPoint(1); err != nil {
		t.Fatal(err)
	}
	equal(t, drain(outbox), []string{"Connect(p0, p1, #ffffff, 2)"})

	typeText(t, m, "a")
	if n := len(m.bom.Rows()); n != 2 {
		t.Fatalf("add should append a material row, got %d", n)
	}
}

func TestDriverRunsCallsInsideUpdate(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, outbox := newTestModel(t)
	msgs := make(chan tea.Msg)
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		for msg := range msgs {
			m.Update(msg)
		}
	}()
	d := newDriver(func(msg tea.Msg) { msgs <- msg })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	inbox := make(chan []byte, 1)
	inbox <- []byte(`{"isPlaying": true}`)
	close(inbox)
	if err := d.Forward(ctx, inbox); err != nil {
		t.Fatal(err)
	}

	var playing bool
	err := d.Call(ctx, func(s *editor.Session) error {
		playing = s.World().IsPlaying
		return s.TogglePlay()
	})
	if err != nil {
		t.Fatal(err)
	}
	if !playing {
		t.Fatalf("forwarded snapshot should be applied before the call")
	}
	equal(t, drain(outbox), []string{"Pause"})

	d.Stop()
	if err := d.Call(ctx, func(*editor.Session) error { return nil }); !errors.Is(err, editor.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}

	close(msgs)
	<-pumped
}

func TestMaterialsPanelEditsPrice(t *testing.T) {
	m, _ := newTestModel(t)
	press(t, m, tea.KeyF2)
	press(t, m, tea.KeyF2)

	typeText(t, m, "$")
	if m.mode != inputMaterial || m.input.Value() != "0" {
		t.Fatalf("price edit should open seeded with the current price, got %q", m.input.Value())
	}
	press(t, m, tea.KeyBackspace)
	typeText(t, m, "12.5")
	press(t, m, tea.KeyEnter)

	if m.mode != inputCommand {
		t.Fatalf("enter should close the edit field")
	}
	row := m.bom.Rows()[0]
	if row[3] != "12.50" || row[5] != "62.50" {
		t.Fatalf("price edit not reflected in the table: %v", row)
	}

	typeText(t, m, "t")
	press(t, m, tea.KeyBackspace)
	typeText(t, m, "abc")
	press(t, m, tea.KeyEnter)
	if m.Err() == nil {
		t.Fatalf("invalid thickness should surface an error")
	}
	if got := m.bom.Rows()[0][2]; got != "2" {
		t.Fatalf("invalid thickness must leave the material unchanged, got %q", got)
	}
}
