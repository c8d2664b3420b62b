// Package effects implements the audio-driven visual renderers: a particle
// system, geometric patterns, light effects, color grading and scene
// transitions. Every renderer produces or mutates a frame.Buffer.
//
// Renderers are plain CPU work with no I/O. PatternGenerator, LightEffects
// and the grading functions are safe to call from several goroutines as
// long as each instance owns its random source. ParticleSystem mutates its
// state on Update and must be driven by a single goroutine in frame order.
package effects

import "errors"

var (
	// ErrConfiguration reports invalid construction or call parameters
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedPattern reports a pattern kind with no renderer
	ErrUnsupportedPattern = errors.New("unsupported pattern")

	// ErrUnsupportedTransition reports a transition kind with no builder
	ErrUnsupportedTransition = errors.New("unsupported transition")
)
