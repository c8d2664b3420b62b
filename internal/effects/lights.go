package effects

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/keagan/beatreel/internal/frame"
)

const (
	// flareRadiusScale maps intensity 1 to a quarter of the short side
	flareRadiusScale = 0.25
	flareBlurSigma   = 15.0

	bokehMinRadius = 5
	bokehMaxRadius = 30
	bokehBlurScale = 10.0
)

var flareColor = frame.RGB{R: 255, G: 255, B: 240}

// LightEffects renders flare glows and bokeh highlights
type LightEffects struct {
	width  int
	height int
	rng    *rand.Rand
}

// NewLightEffects creates a light renderer for frames of the given size.
// rng places bokeh points; nil uses a random seed.
func NewLightEffects(width, height int, rng *rand.Rand) (*LightEffects, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	return &LightEffects{width: width, height: height, rng: orRandom(rng)}, nil
}

// FlareRadius is the unblurred disc radius for the given intensity
func (l *LightEffects) FlareRadius(intensity float64) float64 {
	return intensity * float64(min(l.width, l.height)) * flareRadiusScale
}

// GenerateLightFlare paints a near-white disc around pos and blurs it into
// a glow. Intensity must be positive.
func (l *LightEffects) GenerateLightFlare(pos frame.Point, intensity float64) (*frame.Buffer, error) {
	if !(intensity > 0) {
		return nil, fmt.Errorf("%w: flare intensity must be positive, got %v", ErrConfiguration, intensity)
	}

	buf := frame.New(l.width, l.height)
	r := l.FlareRadius(intensity)
	threshold := r * r
	for y := 0; y < l.height; y++ {
		dy := float64(y - pos.Y)
		for x := 0; x < l.width; x++ {
			dx := float64(x - pos.X)
			if dx*dx+dy*dy <= threshold {
				buf.Set(x, y, flareColor)
			}
		}
	}
	return buf.Blur(flareBlurSigma), nil
}

// BokehBlur is the blur sigma applied for the given intensity
func BokehBlur(intensity float64) float64 {
	return math.Max(0, intensity) * bokehBlurScale
}

// GenerateBokeh scatters numPoints soft near-white discs over the frame
func (l *LightEffects) GenerateBokeh(numPoints int, intensity float64) (*frame.Buffer, error) {
	if numPoints < 0 {
		return nil, fmt.Errorf("%w: bokeh point count must not be negative, got %d", ErrConfiguration, numPoints)
	}

	buf := frame.New(l.width, l.height)
	for i := 0; i < numPoints; i++ {
		x := l.rng.IntN(l.width)
		y := l.rng.IntN(l.height)
		radius := bokehMinRadius + l.rng.IntN(bokehMaxRadius-bokehMinRadius+1)
		c := frame.RGB{
			R: uint8(200 + l.rng.IntN(56)),
			G: uint8(200 + l.rng.IntN(56)),
			B: uint8(200 + l.rng.IntN(56)),
		}
		buf.FillCircle(x, y, radius, c)
	}
	return buf.Blur(BokehBlur(intensity)), nil
}
