package effects

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/keagan/beatreel/internal/frame"
)

const (
	particleMaxInitialSize = 10.0
	particleMinSize        = 1.0
	particleMaxSize        = 20.0
)

// Particle is a single moving disc
type Particle struct {
	X, Y  float64
	Size  float64
	Speed float64
	Angle float64
	Color frame.RGB
}

// ParticleSystem owns a fixed population of particles moving on a torus the
// size of the frame. Particles are never added or removed after creation.
type ParticleSystem struct {
	width     int
	height    int
	particles []Particle
}

// NewParticleSystem creates count particles with random position, size,
// velocity and color drawn from rng. A nil rng uses a random seed.
func NewParticleSystem(width, height, count int, rng *rand.Rand) (*ParticleSystem, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: particle count must be positive, got %d", ErrConfiguration, count)
	}
	rng = orRandom(rng)

	particles := make([]Particle, count)
	for i := range particles {
		particles[i] = Particle{
			X:     rng.Float64() * float64(width),
			Y:     rng.Float64() * float64(height),
			Size:  rng.Float64() * particleMaxInitialSize,
			Speed: rng.Float64(),
			Angle: rng.Float64() * 2 * math.Pi,
			Color: frame.RGB{
				R: uint8(rng.IntN(256)),
				G: uint8(rng.IntN(256)),
				B: uint8(rng.IntN(256)),
			},
		}
	}

	return &ParticleSystem{
		width:     width,
		height:    height,
		particles: particles,
	}, nil
}

// Len returns the population size
func (ps *ParticleSystem) Len() int {
	return len(ps.particles)
}

// Particles returns a copy of the current population in draw order
func (ps *ParticleSystem) Particles() []Particle {
	out := make([]Particle, len(ps.particles))
	copy(out, ps.particles)
	return out
}

// Update advances every particle one step. Energy scales both the step
// length and the size by (1 + energy); values outside [0,1] are applied as
// given. Size is clamped to [1,20] on every call.
func (ps *ParticleSystem) Update(energy float64) {
	gain := 1 + energy
	for i := range ps.particles {
		p := &ps.particles[i]
		p.X = wrap(p.X+p.Speed*math.Cos(p.Angle)*gain, float64(ps.width))
		p.Y = wrap(p.Y+p.Speed*math.Sin(p.Angle)*gain, float64(ps.height))
		p.Size = clamp(p.Size*gain, particleMinSize, particleMaxSize)
	}
}

// Render draws every particle as a filled disc on a fresh black frame.
// Later particles overwrite earlier ones.
func (ps *ParticleSystem) Render() *frame.Buffer {
	buf := frame.New(ps.width, ps.height)
	for _, p := range ps.particles {
		buf.FillCircle(
			int(math.Round(p.X)),
			int(math.Round(p.Y)),
			int(math.Round(p.Size)),
			p.Color,
		)
	}
	return buf
}

// wrap maps v into [0, n)
func wrap(v, n float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Mod(v, n)
	if v < 0 {
		v += n
	}
	if v >= n {
		v = 0
	}
	return v
}
