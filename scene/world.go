package scene

// Point is a vertex of the scene. Identity is the ID; everything else is
// owned by the remote engine.
type Point struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Color string  `json:"color"`
}

// Connection is an edge between two points. Several connections may join the
// same pair of points with different materials.
type Connection struct {
	FromID    int     `json:"fromId"`
	ToID      int     `json:"toId"`
	Color     string  `json:"color"`
	Thickness float64 `json:"thickness"`
}

type Face struct {
	PointIDs []int  `json:"pointIds"`
	Color    string `json:"color"`
}

// Clip is a timed animation segment attached to a target point.
type Clip struct {
	ID        string  `json:"id"`
	TargetID  int     `json:"targetId"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Axis      string  `json:"axis,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// Duration returns EndTime - StartTime.
func (c Clip) Duration() float64 {
	return c.EndTime - c.StartTime
}

// World is the last known authoritative state.
type World struct {
	Points      []Point          `json:"points"`
	Connections []Connection     `json:"connections"`
	Faces       []Face           `json:"faces"`
	Collections map[string][]int `json:"collections"`
	CurrentTime float64          `json:"currentTime"`
	IsPlaying   bool             `json:"isPlaying"`
	Clips       []Clip           `json:"clips"`
}

// Empty returns the world a client starts from before its first snapshot.
func Empty() World {
	return World{
		Points:      []Point{},
		Connections: []Connection{},
		Faces:       []Face{},
		Collections: map[string][]int{},
		Clips:       []Clip{},
	}
}

// Point looks up a point by id.
func (w World) Point(id int) (Point, bool) {
	for _, p := range w.Points {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}

// PointIndex maps point ids to points for repeated lookups.
func (w World) PointIndex() map[int]Point {
	index := make(map[int]Point, len(w.Points))
	for _, p := range w.Points {
		index[p.ID] = p
	}
	return index
}

// Clip looks up a clip by id.
func (w World) Clip(id string) (Clip, bool) {
	for _, c := range w.Clips {
		if c.ID == id {
			return c, true
		}
	}
	return Clip{}, false
}
