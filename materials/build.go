package materials

import (
	"errors"

	"github.com/Kristof1273/3D-builder/command"
)

var ErrDuplicateMaterial = errors.New("materials: duplicate material cannot be armed")

// Armed is the (color, thickness) pair new connections are built with.
// It is a copy taken when the material was armed.
type Armed struct {
	MaterialID string
	Color      string
	Thickness  float64
}

// BuildMode turns pairs of point clicks into Connect commands while a
// material is armed. The zero value is disarmed.
type BuildMode struct {
	armed   *Armed
	pending *int
}

// Toggle arms the material, or disarms when the same material is already
// armed. Duplicate materials cannot be armed; toggling an armed material
// that has since become a duplicate disarms it and reports the duplicate.
func (b *BuildMode) Toggle(c *Catalog, id string) error {
	m, ok := c.Get(id)
	if !ok {
		return ErrUnknownMaterial
	}
	if c.IsDuplicate(id) {
		if b.armed != nil && b.armed.MaterialID == id {
			b.Disarm()
		}
		return ErrDuplicateMaterial
	}
	if b.armed != nil && b.armed.MaterialID == id {
		b.Disarm()
		return nil
	}
	b.armed = &Armed{MaterialID: m.ID, Color: m.Color, Thickness: m.Thickness}
	b.pending = nil
	return nil
}

// Revalidate disarms when the armed material has since become a duplicate
// or been removed from c.
func (b *BuildMode) Revalidate(c *Catalog) {
	if b.armed == nil {
		return
	}
	if _, ok := c.Get(b.armed.MaterialID); !ok || c.IsDuplicate(b.armed.MaterialID) {
		b.Disarm()
	}
}

func (b *BuildMode) Disarm() {
	b.armed = nil
	b.pending = nil
}

// Cancel drops the pending first point but stays armed.
func (b *BuildMode) Cancel() {
	b.pending = nil
}

func (b *BuildMode) Armed() (Armed, bool) {
	if b.armed == nil {
		return Armed{}, false
	}
	return *b.armed, true
}

func (b *BuildMode) Pending() (int, bool) {
	if b.pending == nil {
		return 0, false
	}
	return *b.pending, true
}

// Click records a point click. The second click on a different point
// yields a Connect and clears the pending point. Clicking the pending point
// again does nothing.
func (b *BuildMode) Click(pointID int) (command.Connect, bool) {
	if b.armed == nil {
		return command.Connect{}, false
	}
	if b.pending == nil {
		id := pointID
		b.pending = &id
		return command.Connect{}, false
	}
	from := *b.pending
	if from == pointID {
		return command.Connect{}, false
	}
	b.pending = nil
	return command.Connect{
		From:      command.PointRef(from),
		To:        command.PointRef(pointID),
		Color:     b.armed.Color,
		Thickness: b.armed.Thickness,
	}, true
}
