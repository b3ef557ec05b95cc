package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Field names a top-level world field as it appears on the wire.
type Field string

const (
	FieldPoints      Field = "points"
	FieldConnections Field = "connections"
	FieldFaces       Field = "faces"
	FieldCollections Field = "collections"
	FieldCurrentTime Field = "currentTime"
	FieldIsPlaying   Field = "isPlaying"
	FieldClips       Field = "clips"
)

// OmissionPolicy decides what happens to a field missing from a snapshot.
type OmissionPolicy int

const (
	// Retain keeps the previous value.
	Retain OmissionPolicy = iota
	// Reset replaces the previous value with the field's empty value.
	Reset
)

// OmissionPolicies lists the merge behavior for every field. Collections and
// clips reset when omitted; the engine always sends both, so the asymmetry
// only shows on hand-made partial payloads.
var OmissionPolicies = map[Field]OmissionPolicy{
	FieldPoints:      Retain,
	FieldConnections: Retain,
	FieldFaces:       Retain,
	FieldCollections: Reset,
	FieldCurrentTime: Retain,
	FieldIsPlaying:   Retain,
	FieldClips:       Reset,
}

// Snapshot is a possibly partial world broadcast. A nil field was absent from
// the payload (an explicit JSON null is treated the same way).
type Snapshot struct {
	Points      []Point          `json:"points"`
	Connections []Connection     `json:"connections"`
	Faces       []Face           `json:"faces"`
	Collections map[string][]int `json:"collections"`
	CurrentTime *float64         `json:"currentTime"`
	IsPlaying   *bool            `json:"isPlaying"`
	Clips       []Clip           `json:"clips"`
}

var ErrNotObject = errors.New("scene: snapshot is not a JSON object")

// DecodeSnapshot parses an inbound payload. Nothing is applied on error.
// Only a JSON object is a snapshot; null, arrays and scalars are rejected.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	if trimmed := bytes.TrimSpace(payload); len(trimmed) == 0 || trimmed[0] != '{' {
		return Snapshot{}, ErrNotObject
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("scene: decode snapshot: %w", err)
	}
	return snap, nil
}

// Fields reports which fields the snapshot carries.
func (s Snapshot) Fields() []Field {
	var fields []Field
	if s.Points != nil {
		fields = append(fields, FieldPoints)
	}
	if s.Connections != nil {
		fields = append(fields, FieldConnections)
	}
	if s.Faces != nil {
		fields = append(fields, FieldFaces)
	}
	if s.Collections != nil {
		fields = append(fields, FieldCollections)
	}
	if s.CurrentTime != nil {
		fields = append(fields, FieldCurrentTime)
	}
	if s.IsPlaying != nil {
		fields = append(fields, FieldIsPlaying)
	}
	if s.Clips != nil {
		fields = append(fields, FieldClips)
	}
	return fields
}

// Merge overlays snap onto prev field by field and returns the new world.
// prev is not modified.
func Merge(prev World, snap Snapshot) World {
	next := prev

	if snap.Points != nil {
		next.Points = snap.Points
	} else if OmissionPolicies[FieldPoints] == Reset {
		next.Points = []Point{}
	}
	if snap.Connections != nil {
		next.Connections = snap.Connections
	} else if OmissionPolicies[FieldConnections] == Reset {
		next.Connections = []Connection{}
	}
	if snap.Faces != nil {
		next.Faces = snap.Faces
	} else if OmissionPolicies[FieldFaces] == Reset {
		next.Faces = []Face{}
	}
	if snap.Collections != nil {
		next.Collections = snap.Collections
	} else if OmissionPolicies[FieldCollections] == Reset {
		next.Collections = map[string][]int{}
	}
	if snap.CurrentTime != nil {
		next.CurrentTime = *snap.CurrentTime
	} else if OmissionPolicies[FieldCurrentTime] == Reset {
		next.CurrentTime = 0
	}
	if snap.IsPlaying != nil {
		next.IsPlaying = *snap.IsPlaying
	} else if OmissionPolicies[FieldIsPlaying] == Reset {
		next.IsPlaying = false
	}
	if snap.Clips != nil {
		next.Clips = snap.Clips
	} else if OmissionPolicies[FieldClips] == Reset {
		next.Clips = []Clip{}
	}
	return next
}

func connectionsEqual(a, b []Connection) bool {
	return slices.Equal(a, b)
}
