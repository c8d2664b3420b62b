package effects

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/keagan/beatreel/internal/frame"
)

// PatternKind selects a geometric pattern family
type PatternKind int

const (
	PatternCircles PatternKind = iota
	PatternLines
	PatternWaves
)

// waveFrequency is the number of sine periods across the frame width
const waveFrequency = 3.0

var patternNames = map[PatternKind]string{
	PatternCircles: "circles",
	PatternLines:   "lines",
	PatternWaves:   "waves",
}

type patternFunc func(g *PatternGenerator, buf *frame.Buffer, energy float64)

var patternRenderers = map[PatternKind]patternFunc{
	PatternCircles: (*PatternGenerator).drawCircles,
	PatternLines:   (*PatternGenerator).drawLines,
	PatternWaves:   (*PatternGenerator).drawWaves,
}

func init() {
	for kind, name := range patternNames {
		if _, ok := patternRenderers[kind]; !ok {
			panic("effects: no renderer for pattern " + name)
		}
	}
}

// Patterns lists every pattern kind
func Patterns() []PatternKind {
	return []PatternKind{PatternCircles, PatternLines, PatternWaves}
}

func (k PatternKind) String() string {
	if name, ok := patternNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PatternKind(%d)", int(k))
}

// ParsePattern resolves a pattern name such as "circles"
func ParsePattern(name string) (PatternKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range patternNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedPattern, name)
}

// UnmarshalText lets pattern kinds be read from config files and flags
func (k *PatternKind) UnmarshalText(text []byte) error {
	kind, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalText writes the pattern name
func (k PatternKind) MarshalText() ([]byte, error) {
	if _, ok := patternNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPattern, int(k))
	}
	return []byte(k.String()), nil
}

// PatternGenerator renders energy-parameterized geometric patterns
type PatternGenerator struct {
	width  int
	height int
	rng    *rand.Rand
}

// NewPatternGenerator creates a generator for frames of the given size.
// rng drives the randomized line pattern; nil uses a random seed.
func NewPatternGenerator(width, height int, rng *rand.Rand) (*PatternGenerator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	return &PatternGenerator{width: width, height: height, rng: orRandom(rng)}, nil
}

// GeneratePattern renders one pattern on a fresh black frame.
//
// Circles always strokes CircleCount rings, but radii are rounded to whole
// pixels, so on frames smaller than about 2×CircleCount pixels several rings
// share a radius and fewer distinct rings are visible.
func (g *PatternGenerator) GeneratePattern(kind PatternKind, energy float64) (*frame.Buffer, error) {
	draw, ok := patternRenderers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPattern, kind)
	}
	buf := frame.New(g.width, g.height)
	draw(g, buf, energy)
	return buf, nil
}

// CircleCount is the number of rings drawn for the given energy
func CircleCount(energy float64) int {
	return max(int(math.Round(10+15*energy)), 0)
}

// LineCount is the number of segments drawn for the given energy
func LineCount(energy float64) int {
	return max(int(math.Round(5+15*energy)), 0)
}

// WaveAmplitude is the wave height in pixels for the given energy
func WaveAmplitude(energy float64) int {
	return int(math.Round(20 + 30*energy))
}

// drawCircles strokes concentric rings around the center, brighter outward
func (g *PatternGenerator) drawCircles(buf *frame.Buffer, energy float64) {
	n := CircleCount(energy)
	cx, cy := g.width/2, g.height/2
	maxRadius := float64(min(g.width, g.height)) / 2

	for i := 0; i < n; i++ {
		t := float64(i+1) / float64(n)
		c := frame.RGB{
			R: u8(255 * t),
			G: u8(180 * t),
			B: u8(100 * t),
		}
		buf.StrokeCircle(cx, cy, ringRadius(i, n, maxRadius), c)
	}
}

// ringRadius is the radius of ring i of n, the outermost touching maxRadius
func ringRadius(i, n int, maxRadius float64) int {
	return int(math.Round(float64(i+1) / float64(n) * maxRadius))
}

type segment struct {
	from, to frame.Point
	color    frame.RGB
}

func (g *PatternGenerator) lineSegments(energy float64) []segment {
	n := LineCount(energy)
	k := clamp(0.5+0.5*energy, 0.5, 1)

	segs := make([]segment, n)
	for i := range segs {
		segs[i] = segment{
			from: frame.Point{X: g.rng.IntN(g.width), Y: g.rng.IntN(g.height)},
			to:   frame.Point{X: g.rng.IntN(g.width), Y: g.rng.IntN(g.height)},
			color: frame.RGB{
				R: u8(float64(64+g.rng.IntN(192)) * k),
				G: u8(float64(64+g.rng.IntN(192)) * k),
				B: u8(float64(64+g.rng.IntN(192)) * k),
			},
		}
	}
	return segs
}

func (g *PatternGenerator) drawLines(buf *frame.Buffer, energy float64) {
	for _, s := range g.lineSegments(energy) {
		buf.Line(s.from.X, s.from.Y, s.to.X, s.to.Y, s.color)
	}
}

func (g *PatternGenerator) wavePoints(energy float64) []frame.Point {
	amplitude := float64(WaveAmplitude(energy))
	phase := energy * math.Pi
	mid := float64(g.height) / 2

	pts := make([]frame.Point, g.width)
	for x := range pts {
		y := mid + amplitude*math.Sin(2*math.Pi*waveFrequency*float64(x)/float64(g.width)+phase)
		pts[x] = frame.Point{X: x, Y: int(math.Round(y))}
	}
	return pts
}

func (g *PatternGenerator) drawWaves(buf *frame.Buffer, energy float64) {
	k := clamp(energy, 0, 1)
	c := frame.RGB{
		R: u8(255 * k),
		G: u8(100 + 155*k),
		B: 255,
	}
	buf.Polyline(g.wavePoints(energy), c)
}
