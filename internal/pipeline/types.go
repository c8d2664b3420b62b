package pipeline

import (
	"time"

	"github.com/keagan/beatreel/internal/effects"
	"github.com/keagan/beatreel/internal/imagegen"
	"github.com/keagan/beatreel/internal/scene"
)

// MusicOptions configures a music-driven background render
type MusicOptions struct {
	Output string
	Theme  scene.Theme

	// Duration caps the render in seconds; zero renders the whole track
	Duration float64

	// FramesDir, when set, also writes every frame as PNG
	FramesDir string

	// VolumeDB adjusts the track's gain in the output
	VolumeDB float64
}

// SlideshowOptions configures a still-image slideshow. Images and prompts
// may be mixed; images come first.
type SlideshowOptions struct {
	Output             string
	Images             []string
	Prompts            []string
	Style              imagegen.Style
	Audio              string
	StillDuration      float64
	Transition         effects.TransitionKind
	TransitionDuration float64
	VolumeDB           float64
}

// Result describes a finished render
type Result struct {
	RunID      string
	Output     string
	Frames     int
	Duration   float64
	SyncPoints int
	Seed       uint64
	Elapsed    time.Duration
}
