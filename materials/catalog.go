// Package materials derives the client-side material catalog from the live
// connection set and prices it as a bill of materials.
package materials

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/segmentio/ksuid"

	"github.com/Kristof1273/3D-builder/scene"
)

var (
	ErrUnknownMaterial = errors.New("materials: unknown material")
	ErrInvalidNumber   = errors.New("materials: invalid number")
)

// Material is a named (color, thickness) pair with a unit price. The server
// never sees materials, only the raw pair on connections.
type Material struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Thickness float64 `json:"thickness"`
	Price     float64 `json:"price"`
}

// Key is the logical identity of a material.
type Key struct {
	Color     string
	Thickness float64
}

func (m Material) Key() Key {
	return Key{Color: Normalize(m.Color), Thickness: m.Thickness}
}

// PriceList seeds the unit price of newly discovered materials, keyed by
// normalized color.
type PriceList map[string]float64

func (p PriceList) lookup(color string) float64 {
	if p == nil {
		return 0
	}
	return p[Normalize(color)]
}

// Catalog is the ordered material list. Scans only ever append; edits are
// explicit. Not safe for concurrent use.
type Catalog struct {
	materials []Material
	prices    PriceList
}

func NewCatalog(prices PriceList) *Catalog {
	normalized := make(PriceList, len(prices))
	for color, price := range prices {
		normalized[Normalize(color)] = price
	}
	return &Catalog{prices: normalized}
}

// Materials returns a copy of the catalog in display order.
func (c *Catalog) Materials() []Material {
	out := make([]Material, len(c.materials))
	copy(out, c.materials)
	return out
}

func (c *Catalog) Len() int {
	return len(c.materials)
}

// Get returns the material with the given id.
func (c *Catalog) Get(id string) (Material, bool) {
	i := c.index(id)
	if i < 0 {
		return Material{}, false
	}
	return c.materials[i], true
}

func (c *Catalog) index(id string) int {
	for i, m := range c.materials {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) has(key Key) bool {
	for _, m := range c.materials {
		if m.Key() == key {
			return true
		}
	}
	return false
}

func (c *Catalog) nextName() string {
	return "Material " + strconv.Itoa(len(c.materials)+1)
}

// Scan appends a material for every (color, thickness) pair on connections
// that no material covers yet, and returns how many were added.
func (c *Catalog) Scan(connections []scene.Connection) int {
	added := 0
	for _, conn := range connections {
		key := Key{Color: Normalize(conn.Color), Thickness: conn.Thickness}
		if c.has(key) {
			continue
		}
		c.materials = append(c.materials, Material{
			ID:        ksuid.New().String(),
			Name:      c.nextName(),
			Color:     conn.Color,
			Thickness: conn.Thickness,
			Price:     c.prices.lookup(conn.Color),
		})
		added++
	}
	return added
}

// AddBlank appends a white material, bumping the thickness until it does
// not collide with an existing white one.
func (c *Catalog) AddBlank() Material {
	thickness := 2.0
	for c.has(Key{Color: DefaultColor, Thickness: thickness}) {
		thickness++
	}
	m := Material{
		ID:        ksuid.New().String(),
		Name:      c.nextName(),
		Color:     DefaultColor,
		Thickness: thickness,
		Price:     c.prices.lookup(DefaultColor),
	}
	c.materials = append(c.materials, m)
	return m
}

// LookupMaterial finds a material by name, ignoring case. The first match
// wins.
func (c *Catalog) LookupMaterial(name string) (string, float64, bool) {
	name = strings.TrimSpace(name)
	for _, m := range c.materials {
		if strings.EqualFold(m.Name, name) {
			return m.Color, m.Thickness, true
		}
	}
	return "", 0, false
}

func (c *Catalog) update(id string, fn func(*Material) error) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMaterial, id)
	}
	m := c.materials[i]
	if err := fn(&m); err != nil {
		return err
	}
	c.materials[i] = m
	return nil
}

func (c *Catalog) SetName(id, name string) error {
	return c.update(id, func(m *Material) error {
		m.Name = name
		return nil
	})
}

func (c *Catalog) SetColor(id, color string) error {
	return c.update(id, func(m *Material) error {
		m.Color = strings.TrimSpace(color)
		return nil
	})
}

// SetThickness parses text; a non-numeric or non-positive value leaves the
// material unchanged.
func (c *Catalog) SetThickness(id, text string) error {
	return c.update(id, func(m *Material) error {
		v, err := parseNumber(text)
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: thickness %q", ErrInvalidNumber, text)
		}
		m.Thickness = v
		return nil
	})
}

// SetPrice parses text; a non-numeric or negative value leaves the material
// unchanged.
func (c *Catalog) SetPrice(id, text string) error {
	return c.update(id, func(m *Material) error {
		v, err := parseNumber(text)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: price %q", ErrInvalidNumber, text)
		}
		m.Price = v
		return nil
	})
}

// IsDuplicate reports whether another material shares id's key. It is
// evaluated on every call since any edit can create or resolve a clash.
func (c *Catalog) IsDuplicate(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	return duplicates(c.materials)[i]
}

func duplicates(materials []Material) []bool {
	counts := make(map[Key]int, len(materials))
	for _, m := range materials {
		counts[m.Key()]++
	}
	out := make([]bool, len(materials))
	for i, m := range materials {
		out[i] = counts[m.Key()] > 1
	}
	return out
}

func parseNumber(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if v != v {
		return 0, ErrInvalidNumber
	}
	return v, nil
}
