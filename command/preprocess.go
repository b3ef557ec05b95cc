package command

import (
	"regexp"
	"strconv"
	"strings"
)

// MaterialLookup resolves a material name to the connection properties the
// engine understands.
type MaterialLookup interface {
	LookupMaterial(name string) (color string, thickness float64, ok bool)
}

var (
	connectPattern    = regexp.MustCompile(`(?i)^Connect\s*\(([^,]+),\s*([^,]+),\s*(.+)\)$`)
	collectionPattern = regexp.MustCompile(`(?i)^(AddCollection|AddToCollection|RemoveFromCollection)\s*\(\s*([^,\[\]]+?)\s*,\s*\[([^\[\]]*)\]\s*\)$`)
	showIndexesArg    = regexp.MustCompile(`\((\d)\)`)
)

// Preprocessor rewrites raw input into commands. It never rejects input:
// anything it cannot improve on is forwarded as Raw.
type Preprocessor struct {
	materials MaterialLookup
}

func NewPreprocessor(materials MaterialLookup) *Preprocessor {
	return &Preprocessor{materials: materials}
}

// Rewrite returns nil for blank input.
func (p *Preprocessor) Rewrite(line string) Command {
	text := strings.TrimSpace(line)
	if text == "" {
		return nil
	}
	if cmd, ok := parseLocal(text); ok {
		return cmd
	}
	if cmd, ok := p.resolveConnect(text); ok {
		return cmd
	}
	if cmd, ok := expandCollection(text); ok {
		return cmd
	}
	return Raw{Text: text}
}

func parseLocal(text string) (Command, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "showindexes"):
		mode := LabelsID
		if m := showIndexesArg.FindStringSubmatch(lower); m != nil {
			if n, _ := strconv.Atoi(m[1]); n == 1 {
				mode = LabelsCoordinates
			}
		}
		return ShowIndexes{Mode: mode}, true
	case lower == "hideindexes":
		return HideIndexes{}, true
	case lower == "clearhistory":
		return ClearHistory{}, true
	}
	return nil, false
}

// resolveConnect turns Connect(a, b, Material Name) into
// Connect(a, b, color, thickness). A quoted spec is always treated as a name.
func (p *Preprocessor) resolveConnect(text string) (Command, bool) {
	if p.materials == nil {
		return nil, false
	}
	m := connectPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	spec := strings.TrimSpace(m[3])
	quoted := strings.HasPrefix(spec, `"`) || strings.HasPrefix(spec, "'")
	if strings.Contains(spec, ",") && !quoted {
		return nil, false
	}
	name := strings.NewReplacer(`"`, "", "'", "").Replace(spec)
	color, thickness, ok := p.materials.LookupMaterial(name)
	if !ok {
		return nil, false
	}
	return Connect{
		From:      strings.TrimSpace(m[1]),
		To:        strings.TrimSpace(m[2]),
		Color:     color,
		Thickness: thickness,
	}, true
}

// expandCollection rewrites range items in collection point lists. Any item
// that does not parse leaves the whole line untouched.
func expandCollection(text string) (Command, bool) {
	m := collectionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	ids, err := parseIDList(m[3])
	if err != nil {
		return nil, false
	}
	name := m[2]
	switch strings.ToLower(m[1]) {
	case "addcollection":
		return AddCollection{Collection: name, PointIDs: ids}, true
	case "addtocollection":
		return AddToCollection{Collection: name, PointIDs: ids}, true
	default:
		return RemoveFromCollection{Collection: name, PointIDs: ids}, true
	}
}
