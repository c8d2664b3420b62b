package energy

import "github.com/charmbracelet/harmonica"

// Smoother eases a per-frame energy series with a damped spring so sharp
// onsets read as motion rather than flicker
type Smoother struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

// NewSmoother creates a spring stepped once per video frame
func NewSmoother(fps int, frequency, damping float64) *Smoother {
	return &Smoother{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// Next moves toward target by one frame and returns the eased value
func (s *Smoother) Next(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, target)
	return s.pos
}

// Reset puts the spring back at rest at v
func (s *Smoother) Reset(v float64) {
	s.pos = v
	s.vel = 0
}
