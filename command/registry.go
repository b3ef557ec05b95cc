package command

import "strings"

// Spec documents one command of the language.
type Spec struct {
	Name        string
	Syntax      string
	Description string
	Example     string
}

// Registry is the ordered help table. Autocomplete walks it in order, so the
// first matching entry wins.
type Registry struct {
	specs []Spec
}

// DefaultSpecs is the command surface of the engine plus the local
// pseudo-commands.
var DefaultSpecs = []Spec{
	{Name: "addpoint", Syntax: "AddPoint(x, y, z, color)", Description: "Adds a point.", Example: "AddPoint(0, 0, 0, #ffffff)"},
	{Name: "connect", Syntax: "Connect(from, to, color, size)", Description: "Connects points (p1 to p2 or list).", Example: "Connect(p0, p1, #ffffff, 3)"},
	{Name: "addface", Syntax: "AddFace([ids], color)", Description: "Creates a polygon.", Example: "AddFace([p0, p1, p2], #888888)"},
	{Name: "color", Syntax: "Color(pID, color)", Description: "Updates color.", Example: "Color(p0, #ff0000)"},
	{Name: "move", Syntax: "Move(pID, x, y, z)", Description: "Absolute move.", Example: "Move(p0, 5, 5, 5)"},
	{Name: "delete", Syntax: "Delete(target)", Description: "Removes point/face/link.", Example: "Delete(p0)"},
	{Name: "addcollection", Syntax: "AddCollection(name, [ids])", Description: "Creates group.", Example: "AddCollection(fal, [p0, p1])"},
	{Name: "addtocollection", Syntax: "AddToCollection(name, [ids])", Description: "Adds to group.", Example: "AddToCollection(fal, [p2])"},
	{Name: "removefromcollection", Syntax: "RemoveFromCollection(name, [ids])", Description: "Removes from group.", Example: "RemoveFromCollection(fal, [p0])"},
	{Name: "renamecollection", Syntax: "RenameCollection(old, new)", Description: "Renames a group.", Example: "RenameCollection(fal, wall)"},
	{Name: "addclip", Syntax: "AddClip(target, type, start, end, axis, val)", Description: "Anim: Move p0 on Y by 5.", Example: `AddClip(p0, Move, 0, 5, y, 5, "Name")`},
	{Name: "updateclip", Syntax: "UpdateClip(id, name, start, end)", Description: "Updates a clip."},
	{Name: "deleteclip", Syntax: "DeleteClip(name)", Description: "Removes clip by name.", Example: "DeleteClip(Move1)"},
	{Name: "deleteclipbyid", Syntax: "DeleteClipById(id)", Description: "Removes clip by ID."},
	{Name: "play", Syntax: "Play", Description: "Starts timeline.", Example: "Play"},
	{Name: "pause", Syntax: "Pause", Description: "Pauses timeline.", Example: "Pause"},
	{Name: "seek", Syntax: "Seek(seconds)", Description: "Jumps to time.", Example: "Seek(2.5)"},
	{Name: "stop", Syntax: "Stop", Description: "Stops/Resets everything.", Example: "Stop"},
	{Name: "undo", Syntax: "Undo", Description: "Reverts the last change.", Example: "Undo"},
	{Name: "redo", Syntax: "Redo", Description: "Re-applies a reverted change.", Example: "Redo"},
	{Name: "saveproject", Syntax: "SaveProject(name)", Description: "Saves the world under a name.", Example: "SaveProject(bridge)"},
	{Name: "loadproject", Syntax: "LoadProject(id)", Description: "Loads a saved project."},
	{Name: "showindexes", Syntax: "ShowIndexes(mode)", Description: "0: ID, 1: Coords.", Example: "ShowIndexes(1)"},
	{Name: "hideindexes", Syntax: "HideIndexes", Description: "Hides labels.", Example: "HideIndexes"},
	{Name: "clear", Syntax: "Clear", Description: "Wipes world.", Example: "Clear"},
	{Name: "clearhistory", Syntax: "clearhistory", Description: "Empties the command history.", Example: "clearhistory"},
}

func NewRegistry(specs []Spec) *Registry {
	if specs == nil {
		specs = DefaultSpecs
	}
	return &Registry{specs: specs}
}

// Suggest returns the full syntax of the first command whose name starts
// with the lowercased input, or "" when there is none or the input already
// is that name.
func (r *Registry) Suggest(input string) string {
	if input == "" {
		return ""
	}
	lower := strings.ToLower(input)
	for _, spec := range r.specs {
		if strings.HasPrefix(spec.Name, lower) {
			if spec.Name == lower {
				return ""
			}
			return spec.Syntax
		}
	}
	return ""
}

// Filter returns the specs whose syntax or description contains term,
// ignoring case.
func (r *Registry) Filter(term string) []Spec {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Spec
	for _, spec := range r.specs {
		if term == "" ||
			strings.Contains(strings.ToLower(spec.Syntax), term) ||
			strings.Contains(strings.ToLower(spec.Description), term) {
			out = append(out, spec)
		}
	}
	return out
}
