package materials

import (
	"math"

	"github.com/Kristof1273/3D-builder/scene"
)

// Row is one material line of the bill of materials.
type Row struct {
	Material
	TotalLength float64 `json:"totalLength"`
	Cost        float64 `json:"cost"`
	Duplicate   bool    `json:"duplicate"`
}

type Report struct {
	Rows       []Row   `json:"rows"`
	GrandTotal float64 `json:"grandTotal"`
}

// Aggregate sums the length of every connection whose normalized color and
// exact thickness match a material. Connections that reference a missing
// point contribute nothing.
func Aggregate(materials []Material, world scene.World) Report {
	points := world.PointIndex()
	lengths := make(map[Key]float64)
	for _, conn := range world.Connections {
		from, ok := points[conn.FromID]
		if !ok {
			continue
		}
		to, ok := points[conn.ToID]
		if !ok {
			continue
		}
		key := Key{Color: Normalize(conn.Color), Thickness: conn.Thickness}
		lengths[key] += distance(from, to)
	}

	dups := duplicates(materials)
	report := Report{Rows: make([]Row, 0, len(materials))}
	for i, m := range materials {
		total := lengths[m.Key()]
		row := Row{
			Material:    m,
			TotalLength: total,
			Cost:        total * m.Price,
			Duplicate:   dups[i],
		}
		report.Rows = append(report.Rows, row)
		report.GrandTotal += row.Cost
	}
	return report
}

func distance(a, b scene.Point) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
