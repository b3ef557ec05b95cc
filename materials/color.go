package materials

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// DefaultColor is used for blank colors and new materials.
const DefaultColor = "#ffffff"

// Normalize canonicalizes a color to lowercase #rrggbb. Hex input may use
// either the short or the long form; names go through the SVG/CSS color
// table. Anything else comes back lowercased so it still compares equal to
// itself.
func Normalize(color string) string {
	s := strings.ToLower(strings.TrimSpace(color))
	if s == "" {
		return DefaultColor
	}
	if strings.HasPrefix(s, "#") {
		if c, err := colorful.Hex(s); err == nil {
			return c.Hex()
		}
		return s
	}
	if rgba, ok := colornames.Map[s]; ok {
		if c, ok := colorful.MakeColor(rgba); ok {
			return c.Hex()
		}
	}
	return s
}

// SameColor compares two colors by their normalized form.
func SameColor(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
