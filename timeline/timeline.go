// Package timeline edits animation clips. Edits never touch local clip
// state; they become UpdateClip commands and the next snapshot is the
// source of truth.
package timeline

import (
	"errors"
	"fmt"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/scene"
)

var (
	ErrRenaming    = errors.New("timeline: clip is being renamed")
	ErrUnknownClip = errors.New("timeline: unknown clip")
	ErrBusy        = errors.New("timeline: another gesture is in progress")
)

// Config holds the timeline geometry.
type Config struct {
	// MaxTime is the number of seconds the track area represents.
	MaxTime float64
	// LabelGutter is the width taken by track labels, in the unit pointer
	// positions are reported in.
	LabelGutter float64
	// MinDuration is the shortest clip an edit may produce.
	MinDuration float64
}

func DefaultConfig() Config {
	return Config{MaxTime: 60, LabelGutter: 12, MinDuration: 0.1}
}

// TrackWidth is the usable width of a track area of the given measured width.
func (c Config) TrackWidth(measured float64) float64 {
	return measured - c.LabelGutter
}

// PixelsToTime converts a pointer delta into seconds. A non-positive track
// width yields 0.
func (c Config) PixelsToTime(delta, trackWidth float64) float64 {
	if trackWidth <= 0 {
		return 0
	}
	return delta / trackWidth * c.MaxTime
}

// Emitter queues UI-originated commands.
type Emitter interface {
	Emit(command.Command) error
}

// Track is the set of clips animating one target point.
type Track struct {
	TargetID int
	Clips    []scene.Clip
}

// Partition groups clips by target in first-seen order.
func Partition(clips []scene.Clip) []Track {
	var tracks []Track
	index := make(map[int]int)
	for _, c := range clips {
		i, ok := index[c.TargetID]
		if !ok {
			i = len(tracks)
			index[c.TargetID] = i
			tracks = append(tracks, Track{TargetID: c.TargetID})
		}
		tracks[i].Clips = append(tracks[i].Clips, c)
	}
	return tracks
}

// DeleteClip asks for confirmation before a DeleteClipById is emitted.
func DeleteClip(clip scene.Clip) command.Confirmation {
	return command.Confirmation{
		Prompt:  fmt.Sprintf("Delete clip %q?", clip.Name),
		Command: command.DeleteClipByID{ID: clip.ID},
	}
}

// TogglePlay returns Pause while playing and Play otherwise.
func TogglePlay(isPlaying bool) command.Command {
	if isPlaying {
		return command.Pause{}
	}
	return command.Play{}
}
