package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Kristof1273/3D-builder/editor"
	"github.com/Kristof1273/3D-builder/scene"
	"github.com/Kristof1273/3D-builder/timeline"
)

// The timeline is drawn right under the header so its rows have fixed
// screen positions for hit testing.
const (
	headerRows   = 1
	rulerRows    = 1
	firstTrackY  = headerRows + rulerRows
	rulerStepSec = 10
)

var bomColumns = []table.Column{
	{Title: "Material", Width: 16},
	{Title: "Color", Width: 9},
	{Title: "Size", Width: 6},
	{Title: "Price", Width: 9},
	{Title: "Length", Width: 9},
	{Title: "Cost", Width: 10},
}

var (
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
	playhead    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00"))
	panelTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9"))
)

var promptStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#F1FA8C")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#F1FA8C")).
	Padding(0, 1)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

// clipSpan is where a clip is drawn on screen.
type clipSpan struct {
	clipID   string
	row      int
	from, to int
}

type clipHit struct {
	clipID string
	kind   timeline.GestureKind
}

func (m *Model) gutter() int {
	return int(m.session.Timeline().Config().LabelGutter)
}

// cellAt maps a time to a screen column.
func (m *Model) cellAt(t float64) int {
	cfg := m.session.Timeline().Config()
	track := m.width - m.gutter()
	if track <= 0 || cfg.MaxTime <= 0 {
		return m.gutter()
	}
	cell := int(math.Floor(t / cfg.MaxTime * float64(track)))
	return m.gutter() + min(max(cell, 0), track-1)
}

// layout places every clip, using the preview bounds for the clip under a
// gesture.
func (m *Model) layout() ([]timeline.Track, []clipSpan) {
	tracks := timeline.Partition(m.clips())
	preview, dragging := m.session.Timeline().Active()
	var spans []clipSpan
	for i, tr := range tracks {
		for _, c := range tr.Clips {
			start, end := c.StartTime, c.EndTime
			if dragging && preview.ClipID == c.ID {
				start, end = preview.Start, preview.End
			}
			from := m.cellAt(start)
			to := max(from, m.cellAt(end)-1)
			spans = append(spans, clipSpan{clipID: c.ID, row: firstTrackY + i, from: from, to: to})
		}
	}
	return tracks, spans
}

// hitTest finds the clip under a screen cell. The first and last cells of a
// clip wider than two cells are its resize handles.
func (m *Model) hitTest(x, y int) (clipHit, bool) {
	_, spans := m.layout()
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if s.row != y || x < s.from || x > s.to {
			continue
		}
		kind := timeline.Move
		if s.to-s.from >= 2 {
			switch x {
			case s.from:
				kind = timeline.ResizeLeft
			case s.to:
				kind = timeline.ResizeRight
			}
		}
		return clipHit{clipID: s.clipID, kind: kind}, true
	}
	return clipHit{}, false
}

func (m *Model) View() string {
	v := m.session.View()
	var b strings.Builder

	b.WriteString(m.renderHeader(v))
	b.WriteString("\n")
	b.WriteString(m.renderTimeline(v))
	b.WriteString("\n")
	b.WriteString(m.renderSelection(v))
	b.WriteString("\n\n")
	b.WriteString(panelTitle.Render("Bill of materials"))
	b.WriteString("\n")
	b.WriteString(m.bom.View())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Grand total: %.2f", v.BOM.GrandTotal))
	b.WriteString("\n")
	b.WriteString(renderBuild(v.Build))
	b.WriteString("\n")
	if v.Confirm != nil {
		b.WriteString(promptStyle.Render(v.Confirm.Prompt + "  [y/n]"))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("F2 focus · tab complete · ↑/↓ history · ctrl+c quit"))
	return b.String()
}

func (m *Model) renderHeader(v editor.View) string {
	project := v.Project
	if project == "" {
		project = "untitled"
	}
	state := "stopped"
	if v.World.IsPlaying {
		state = "playing"
	}
	return headerStyle.Render(fmt.Sprintf("3D builder · %s", project)) +
		faintStyle.Render(fmt.Sprintf("  rev %d · %s %.2fs · labels %s · focus %s",
			v.Revision, state, v.World.CurrentTime, v.Labels, m.focus))
}

func (m *Model) renderTimeline(v editor.View) string {
	gutter := m.gutter()
	width := max(m.width, gutter+1)
	cfg := m.session.Timeline().Config()

	ruler := []rune(strings.Repeat(" ", width))
	for t := 0.0; t < cfg.MaxTime; t += rulerStepSec {
		label := fmt.Sprintf("%gs", t)
		at := m.cellAt(t)
		for i, r := range label {
			if at+i < width {
				ruler[at+i] = r
			}
		}
	}
	lines := []string{faintStyle.Render(string(ruler))}

	tracks, spans := m.layout()
	if len(tracks) == 0 {
		lines = append(lines, faintStyle.Render(pad("no clips", width)))
		return strings.Join(lines, "\n")
	}
	head := m.cellAt(v.World.CurrentTime)
	selected, _ := m.selectedClip()
	for i, tr := range tracks {
		row := []rune(pad(fmt.Sprintf("p%d", tr.TargetID), gutter) + strings.Repeat("·", width-gutter))
		for _, s := range spans {
			if s.row != firstTrackY+i {
				continue
			}
			fill := '█'
			if s.clipID == selected.ID {
				fill = '▓'
			}
			for x := s.from; x <= s.to && x < width; x++ {
				row[x] = fill
			}
		}
		line := string(row[:head]) + playhead.Render(string(row[head])) + string(row[head+1:])
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSelection(v editor.View) string {
	if m.mode == inputRename {
		return panelTitle.Render("Renaming clip")
	}
	clip, ok := m.selectedClip()
	if !ok {
		return faintStyle.Render("select a clip with F2 then ←/→")
	}
	start, end := clip.StartTime, clip.EndTime
	if v.Gesture != nil && v.Gesture.ClipID == clip.ID {
		start, end = v.Gesture.Start, v.Gesture.End
	}
	return fmt.Sprintf("%s  %s %s  %.2fs → %.2fs", clipLabel(clip), clip.Type, clip.Axis, start, end)
}

func clipLabel(c scene.Clip) string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name
}

func renderBuild(b editor.BuildView) string {
	if !b.Armed {
		return faintStyle.Render("build mode off")
	}
	text := fmt.Sprintf("building with %s / %g", b.Color, b.Thickness)
	if b.PendingID != nil {
		text += fmt.Sprintf(" · from p%d, pick the end point (esc cancels)", *b.PendingID)
	} else {
		text += " · pick a start point"
	}
	return statusStyle.Render(text)
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error())
	}
	return statusStyle.Render(m.status)
}

func (m *Model) renderInput() string {
	view := m.input.View()
	if m.mode == inputCommand && m.focus == focusCommand {
		if ghost := m.session.Suggest(m.input.Value()); ghost != "" {
			view += faintStyle.Render("  " + ghost)
		}
	}
	return view
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
