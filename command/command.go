// Package command models the editor's textual command language as typed
// values. Text is produced only when a command is handed to the outbound
// channel.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one instruction for the remote engine (or, for the few local
// pseudo-commands, for the client itself).
type Command interface {
	Name() string
	Wire() string
}

// local marks commands that never leave the client.
type local interface {
	Command
	isLocal()
}

// IsLocal reports whether cmd is handled entirely on the client.
func IsLocal(cmd Command) bool {
	_, ok := cmd.(local)
	return ok
}

// PointRef renders a point id the way the engine expects it.
func PointRef(id int) string {
	return "p" + strconv.Itoa(id)
}

// FormatIDs renders a bracketed point list: [p1, p2].
func FormatIDs(ids []int) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = PointRef(id)
	}
	return "[" + strings.Join(refs, ", ") + "]"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func call(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

// Raw is free text forwarded unmodified. Validation is the engine's job.
type Raw struct {
	Text string
}

func (c Raw) Name() string {
	name, _, _ := strings.Cut(c.Text, "(")
	return strings.TrimSpace(name)
}
func (c Raw) Wire() string { return c.Text }

type AddPoint struct {
	X, Y, Z float64
	Color   string
}

func (AddPoint) Name() string { return "AddPoint" }
func (c AddPoint) Wire() string {
	return call("AddPoint", num(c.X), num(c.Y), num(c.Z), c.Color)
}

// Connect joins From and To. From and To are references as the user typed
// them (p3, a collection name); build mode fills them with PointRef.
type Connect struct {
	From, To  string
	Color     string
	Thickness float64
}

func (Connect) Name() string { return "Connect" }
func (c Connect) Wire() string {
	return call("Connect", c.From, c.To, c.Color, num(c.Thickness))
}

type AddFace struct {
	PointIDs []int
	Color    string
}

func (AddFace) Name() string { return "AddFace" }
func (c AddFace) Wire() string {
	return call("AddFace", FormatIDs(c.PointIDs), c.Color)
}

type Color struct {
	PointID int
	Color   string
}

func (Color) Name() string { return "Color" }
func (c Color) Wire() string {
	return call("Color", PointRef(c.PointID), c.Color)
}

type Move struct {
	PointID int
	X, Y, Z float64
}

func (Move) Name() string { return "Move" }
func (c Move) Wire() string {
	return call("Move", PointRef(c.PointID), num(c.X), num(c.Y), num(c.Z))
}

// Delete removes a point, face or link; Target is engine syntax.
type Delete struct {
	Target string
}

func (Delete) Name() string   { return "Delete" }
func (c Delete) Wire() string { return call("Delete", c.Target) }

type AddCollection struct {
	Collection string
	PointIDs   []int
}

func (AddCollection) Name() string { return "AddCollection" }
func (c AddCollection) Wire() string {
	return call("AddCollection", c.Collection, FormatIDs(c.PointIDs))
}

type AddToCollection struct {
	Collection string
	PointIDs   []int
}

func (AddToCollection) Name() string { return "AddToCollection" }
func (c AddToCollection) Wire() string {
	return call("AddToCollection", c.Collection, FormatIDs(c.PointIDs))
}

type RemoveFromCollection struct {
	Collection string
	PointIDs   []int
}

func (RemoveFromCollection) Name() string { return "RemoveFromCollection" }
func (c RemoveFromCollection) Wire() string {
	return call("RemoveFromCollection", c.Collection, FormatIDs(c.PointIDs))
}

type RenameCollection struct {
	From, To string
}

func (RenameCollection) Name() string { return "RenameCollection" }
func (c RenameCollection) Wire() string {
	return call("RenameCollection", c.From, c.To)
}

// AddClip animates Target along Axis by Value between Start and End.
// ClipName is optional; the engine names unnamed clips itself.
type AddClip struct {
	Target     int
	Type       string
	Start, End float64
	Axis       string
	Value      float64
	ClipName   string
}

func (AddClip) Name() string { return "AddClip" }
func (c AddClip) Wire() string {
	args := []string{PointRef(c.Target), c.Type, num(c.Start), num(c.End), c.Axis, num(c.Value)}
	if c.ClipName != "" {
		args = append(args, strconv.Quote(c.ClipName))
	}
	return call("AddClip", args...)
}

// UpdateClip rewrites a clip's name and time span. Times go out with two
// decimals.
type UpdateClip struct {
	ID         string
	ClipName   string
	Start, End float64
}

func (UpdateClip) Name() string { return "UpdateClip" }
func (c UpdateClip) Wire() string {
	return fmt.Sprintf("UpdateClip(%s, %s, %.2f, %.2f)", c.ID, c.ClipName, c.Start, c.End)
}

type DeleteClip struct {
	ClipName string
}

func (DeleteClip) Name() string   { return "DeleteClip" }
func (c DeleteClip) Wire() string { return call("DeleteClip", c.ClipName) }

type DeleteClipByID struct {
	ID string
}

func (DeleteClipByID) Name() string   { return "DeleteClipById" }
func (c DeleteClipByID) Wire() string { return call("DeleteClipById", c.ID) }

type Seek struct {
	Time float64
}

func (Seek) Name() string   { return "Seek" }
func (c Seek) Wire() string { return call("Seek", num(c.Time)) }

type SaveProject struct {
	Project string
}

func (SaveProject) Name() string   { return "SaveProject" }
func (c SaveProject) Wire() string { return call("SaveProject", c.Project) }

type LoadProject struct {
	ID string
}

func (LoadProject) Name() string   { return "LoadProject" }
func (c LoadProject) Wire() string { return call("LoadProject", c.ID) }

// Bare-word commands.
type (
	Play  struct{}
	Pause struct{}
	Stop  struct{}
	Undo  struct{}
	Redo  struct{}
	Clear struct{}
)

func (Play) Name() string  { return "Play" }
func (Play) Wire() string  { return "Play" }
func (Pause) Name() string { return "Pause" }
func (Pause) Wire() string { return "Pause" }
func (Stop) Name() string  { return "Stop" }
func (Stop) Wire() string  { return "Stop" }
func (Undo) Name() string  { return "Undo" }
func (Undo) Wire() string  { return "Undo" }
func (Redo) Name() string  { return "Redo" }
func (Redo) Wire() string  { return "Redo" }
func (Clear) Name() string { return "Clear" }
func (Clear) Wire() string { return "Clear" }

// LabelMode selects what the renderer prints next to points.
type LabelMode int

const (
	LabelsHidden      LabelMode = -1
	LabelsID          LabelMode = 0
	LabelsCoordinates LabelMode = 1
)

func (m LabelMode) String() string {
	switch m {
	case LabelsHidden:
		return "hidden"
	case LabelsID:
		return "id"
	case LabelsCoordinates:
		return "id+coords"
	default:
		return "unknown"
	}
}

type ShowIndexes struct {
	Mode LabelMode
}

func (ShowIndexes) Name() string   { return "ShowIndexes" }
func (c ShowIndexes) Wire() string { return call("ShowIndexes", strconv.Itoa(int(c.Mode))) }
func (ShowIndexes) isLocal()       {}

type HideIndexes struct{}

func (HideIndexes) Name() string { return "HideIndexes" }
func (HideIndexes) Wire() string { return "HideIndexes" }
func (HideIndexes) isLocal()     {}

type ClearHistory struct{}

func (ClearHistory) Name() string { return "clearhistory" }
func (ClearHistory) Wire() string { return "clearhistory" }
func (ClearHistory) isLocal()     {}
