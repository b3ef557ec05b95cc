// Package tui is the terminal front-end of the editor. It uses bubbletea,
// so the Model's Update is the single goroutine that owns the session.
// Snapshots and calls from other goroutines arrive as messages through
// Program.Send (see Driver).
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Kristof1273/3D-builder/editor"
	"github.com/Kristof1273/3D-builder/scene"
	"github.com/Kristof1273/3D-builder/timeline"
)

// focus is the panel receiving keys.
type focus int

const (
	focusCommand focus = iota
	focusTimeline
	focusMaterials
)

func (f focus) String() string {
	switch f {
	case focusTimeline:
		return "timeline"
	case focusMaterials:
		return "materials"
	default:
		return "command"
	}
}

type inputMode int

const (
	inputCommand inputMode = iota
	inputRename
	inputMaterial
)

// materialField is the column a material edit writes to.
type materialField int

const (
	fieldName materialField = iota
	fieldColor
	fieldThickness
	fieldPrice
)

func (f materialField) String() string {
	switch f {
	case fieldColor:
		return "color"
	case fieldThickness:
		return "size"
	case fieldPrice:
		return "price"
	default:
		return "name"
	}
}

const (
	defaultWidth = 80
	seekStep     = 1.0
)

// SnapshotMsg carries one inbound world payload.
type SnapshotMsg []byte

type callMsg struct {
	fn   func(*editor.Session) error
	done chan error
}

// Option customizes Model construction.
type Option func(*Model)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Model is the bubbletea model. It holds the session and the widget state.
type Model struct {
	session *editor.Session
	logger  *zap.Logger

	focus    focus
	mode     inputMode
	input    textinput.Model
	bom      table.Model
	selected int
	renaming string
	editing  string
	field    materialField

	status string
	err    error

	width  int
	height int
}

func New(session *editor.Session, opts ...Option) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "AddPoint(0, 0, 0, #ffffff)"
	ti.CharLimit = 512
	ti.Focus()

	bom := table.New(
		table.WithColumns(bomColumns),
		table.WithHeight(6),
	)
	bom.SetStyles(tableStyles())

	m := &Model{
		session: session,
		logger:  zap.NewNop(),
		input:   ti,
		bom:     bom,
		width:   defaultWidth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refreshBOM()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)
		m.bom.SetWidth(max(20, msg.Width-2))
		return m, nil

	case SnapshotMsg:
		if err := m.session.ApplySnapshot(msg); err != nil {
			m.setErr(err)
		}
		m.clampSelection()
		m.refreshBOM()
		return m, nil

	case callMsg:
		msg.done <- msg.fn(m.session)
		m.clampSelection()
		m.refreshBOM()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if _, ok := m.session.Pending(); ok {
			m.handleConfirmKey(msg)
			return m, nil
		}
		switch m.mode {
		case inputRename:
			return m, m.handleRenameKey(msg)
		case inputMaterial:
			cmd := m.handleMaterialEditKey(msg)
			m.refreshBOM()
			return m, cmd
		}
		if msg.String() == "f2" {
			m.cycleFocus()
			return m, nil
		}
		var cmd tea.Cmd
		switch m.focus {
		case focusTimeline:
			m.handleTimelineKey(msg)
		case focusMaterials:
			cmd = m.handleMaterialsKey(msg)
		default:
			cmd = m.handleCommandKey(msg)
		}
		m.refreshBOM()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setErr(err error) {
	m.err = err
	if err != nil {
		m.status = ""
		m.logger.Debug("action failed", zap.Error(err))
	}
}

func (m *Model) setStatus(text string) {
	m.err = nil
	m.status = text
}

func (m *Model) cycleFocus() {
	m.focus = (m.focus + 1) % 3
	if m.focus == focusCommand {
		m.input.Focus()
		m.bom.Blur()
		return
	}
	m.input.Blur()
	if m.focus == focusMaterials {
		m.bom.Focus()
	} else {
		m.bom.Blur()
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.setErr(m.session.Confirm(true))
	case "n", "N", "esc":
		m.setErr(m.session.Confirm(false))
		m.setStatus("cancelled")
	}
	m.clampSelection()
	m.refreshBOM()
}

func (m *Model) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return nil
		}
		cmd, err := m.session.Submit(line)
		m.input.Reset()
		if err != nil {
			m.setErr(err)
			return nil
		}
		if cmd != nil {
			m.setStatus("sent " + cmd.Wire())
		}
		return nil
	case "tab":
		if ghost := m.session.Suggest(m.input.Value()); ghost != "" {
			m.input.SetValue(ghost)
			m.input.CursorEnd()
		}
		return nil
	case "up":
		if text, ok := m.session.History().Up(); ok {
			m.input.SetValue(text)
			m.input.CursorEnd()
		}
		return nil
	case "down":
		if text, ok := m.session.History().Down(); ok {
			m.input.SetValue(text)
			m.input.CursorEnd()
		}
		return nil
	case "esc":
		m.session.CancelBuild()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) clips() []scene.Clip {
	return m.session.World().Clips
}

func (m *Model) selectedClip() (scene.Clip, bool) {
	clips := m.clips()
	if m.selected < 0 || m.selected >= len(clips) {
		return scene.Clip{}, false
	}
	return clips[m.selected], true
}

func (m *Model) clampSelection() {
	n := len(m.clips())
	if m.selected >= n {
		m.selected = max(0, n-1)
	}
}

func (m *Model) handleTimelineKey(msg tea.KeyMsg) {
	n := len(m.clips())
	switch msg.String() {
	case "left", "h":
		if n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
	case "right", "l":
		if n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case " ", "space", "p":
		m.setErr(m.session.TogglePlay())
	case "s":
		m.setErr(m.session.Stop())
	case "[":
		m.setErr(m.session.Seek(m.session.World().CurrentTime - seekStep))
	case "]":
		m.setErr(m.session.Seek(m.session.World().CurrentTime + seekStep))
	case "home", "0":
		m.setErr(m.session.Seek(0))
	case "r", "enter":
		clip, ok := m.selectedClip()
		if !ok {
			return
		}
		if err := m.session.BeginClipRename(clip.ID); err != nil {
			m.setErr(err)
			return
		}
		m.renaming = clip.ID
		m.mode = inputRename
		m.input.Prompt = "rename> "
		m.input.SetValue(clip.Name)
		m.input.CursorEnd()
		m.input.Focus()
	case "d", "delete":
		clip, ok := m.selectedClip()
		if !ok {
			return
		}
		if _, err := m.session.DeleteClip(clip.ID); err != nil {
			m.setErr(err)
		}
	case "esc":
		m.session.CancelBuild()
	}
}

func (m *Model) endEdit() {
	m.mode = inputCommand
	m.renaming = ""
	m.editing = ""
	m.input.Prompt = "> "
	m.input.Reset()
	if m.focus != focusCommand {
		m.input.Blur()
	}
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	id := m.renaming
	switch msg.String() {
	case "enter":
		m.session.SetClipRenameText(id, m.input.Value())
		m.setErr(m.session.CommitClipRename(id))
		m.endEdit()
		return nil
	case "esc":
		m.session.CancelClipRename(id)
		m.endEdit()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetClipRenameText(id, m.input.Value())
	return cmd
}

func (m *Model) selectedMaterial() (string, bool) {
	mats := m.session.Catalog().Materials()
	i := m.bom.Cursor()
	if i < 0 || i >= len(mats) {
		return "", false
	}
	return mats[i].ID, true
}

func (m *Model) handleMaterialsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "b", "enter":
		id, ok := m.selectedMaterial()
		if !ok {
			return nil
		}
		m.setErr(m.session.ToggleBuild(id))
		return nil
	case "a":
		mat := m.session.AddMaterial()
		m.setStatus("added " + mat.Name)
		return nil
	case "x":
		m.session.DisarmBuild()
		return nil
	case "n":
		m.beginMaterialEdit(fieldName)
		return nil
	case "c":
		m.beginMaterialEdit(fieldColor)
		return nil
	case "t":
		m.beginMaterialEdit(fieldThickness)
		return nil
	case "$":
		m.beginMaterialEdit(fieldPrice)
		return nil
	case "esc":
		m.session.CancelBuild()
		return nil
	}
	var cmd tea.Cmd
	m.bom, cmd = m.bom.Update(msg)
	return cmd
}

// beginMaterialEdit opens the input line on one field of the material
// under the table cursor, seeded with its current value.
func (m *Model) beginMaterialEdit(f materialField) {
	id, ok := m.selectedMaterial()
	if !ok {
		return
	}
	mat, _ := m.session.Catalog().Get(id)
	value := mat.Name
	switch f {
	case fieldColor:
		value = mat.Color
	case fieldThickness:
		value = strconv.FormatFloat(mat.Thickness, 'f', -1, 64)
	case fieldPrice:
		value = strconv.FormatFloat(mat.Price, 'f', -1, 64)
	}
	m.editing = id
	m.field = f
	m.mode = inputMaterial
	m.input.Prompt = f.String() + "> "
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) handleMaterialEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		id, text := m.editing, m.input.Value()
		var err error
		switch m.field {
		case fieldName:
			err = m.session.RenameMaterial(id, text)
		case fieldColor:
			err = m.session.SetMaterialColor(id, text)
		case fieldThickness:
			err = m.session.SetMaterialThickness(id, text)
		case fieldPrice:
			err = m.session.SetMaterialPrice(id, text)
		}
		m.setErr(err)
		m.endEdit()
		return nil
	case "esc":
		m.endEdit()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// handleMouse turns terminal mouse events into timeline pointer events.
// Presses on a clip start a gesture; motion and release are delivered
// globally, wherever the pointer is.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x := float64(msg.X)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		hit, ok := m.hitTest(msg.X, msg.Y)
		if !ok {
			return
		}
		m.selectClip(hit.clipID)
		if err := m.session.BeginClipGesture(hit.kind, hit.clipID, x, float64(m.width)); err != nil {
			m.setErr(err)
		}
	case tea.MouseActionMotion:
		if _, ok := m.session.Timeline().Active(); ok {
			m.session.Pointer(timeline.PointerEvent{Kind: timeline.PointerMove, X: x})
		}
	case tea.MouseActionRelease:
		if _, ok := m.session.Timeline().Active(); ok {
			m.session.Pointer(timeline.PointerEvent{Kind: timeline.PointerUp, X: x})
		}
	}
}

func (m *Model) selectClip(id string) {
	for i, c := range m.clips() {
		if c.ID == id {
			m.selected = i
			return
		}
	}
}

func (m *Model) refreshBOM() {
	report := m.session.View().BOM
	rows := make([]table.Row, 0, len(report.Rows))
	for _, r := range report.Rows {
		name := r.Name
		if r.Duplicate {
			name += " (dup)"
		}
		rows = append(rows, table.Row{
			name,
			r.Color,
			strconv.FormatFloat(r.Thickness, 'f', -1, 64),
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			strconv.FormatFloat(r.TotalLength, 'f', 2, 64),
			strconv.FormatFloat(r.Cost, 'f', 2, 64),
		})
	}
	m.bom.SetRows(rows)
}

// Err returns the last action error shown in the status line.
func (m *Model) Err() error {
	return m.err
}

var errNoSession = errors.New("tui: no session")

// Program builds the terminal program for session together with the driver
// other goroutines use to reach the session while it runs.
func Program(ctx context.Context, session *editor.Session, opts ...Option) (*tea.Program, *Driver, error) {
	if session == nil {
		return nil, nil, errNoSession
	}
	p := tea.NewProgram(
		New(session, opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	return p, NewDriver(p), nil
}
