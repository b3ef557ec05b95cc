package editor

import (
	"github.com/Kristof1273/3D-builder/materials"
	"github.com/Kristof1273/3D-builder/scene"
	"github.com/Kristof1273/3D-builder/timeline"
)

// View is everything a front-end needs to draw the editor.
type View struct {
	Revision uint64            `json:"revision"`
	World    scene.World       `json:"world"`
	Labels   string            `json:"labels"`
	BOM      materials.Report  `json:"bom"`
	Build    BuildView         `json:"build"`
	Project  string            `json:"project,omitempty"`
	Confirm  *ConfirmView      `json:"confirm,omitempty"`
	Gesture  *timeline.Preview `json:"gesture,omitempty"`
}

type BuildView struct {
	Armed      bool    `json:"armed"`
	MaterialID string  `json:"materialId,omitempty"`
	Color      string  `json:"color,omitempty"`
	Thickness  float64 `json:"thickness,omitempty"`
	PendingID  *int    `json:"pendingId,omitempty"`
}

type ConfirmView struct {
	Prompt  string `json:"prompt"`
	Command string `json:"command"`
}

func (s *Session) View() View {
	world := s.sync.World()
	v := View{
		Revision: s.sync.Revision(),
		World:    world,
		Labels:   s.dispatcher.LabelMode().String(),
		BOM:      materials.Aggregate(s.catalog.Materials(), world),
		Project:  s.project,
	}
	if armed, ok := s.build.Armed(); ok {
		v.Build = BuildView{
			Armed:      true,
			MaterialID: armed.MaterialID,
			Color:      armed.Color,
			Thickness:  armed.Thickness,
		}
		if id, ok := s.build.Pending(); ok {
			v.Build.PendingID = &id
		}
	}
	if conf, ok := s.Pending(); ok {
		v.Confirm = &ConfirmView{Prompt: conf.Prompt, Command: conf.Wire()}
	}
	if p, ok := s.timeline.Active(); ok {
		v.Gesture = &p
	}
	return v
}
