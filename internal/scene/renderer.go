package scene

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/keagan/beatreel/internal/effects"
	"github.com/keagan/beatreel/internal/energy"
	"github.com/keagan/beatreel/internal/frame"
	"github.com/keagan/beatreel/pkg/util"
)

// DefaultSyncWindow is how long, in seconds, a flare lingers either side of
// a sync point
const DefaultSyncWindow = 0.25

// Smoothing eases per-frame energy with a spring
type Smoothing struct {
	Frequency float64
	Damping   float64
}

// Options configures a Renderer. Seed pins every random source; zero
// picks one, which Renderer.Seed reports.
type Options struct {
	Width         int
	Height        int
	FPS           int
	ParticleCount int
	Seed          uint64
	Post          effects.PostChain
	Smoothing     *Smoothing
	SyncWindow    float64
	Workers       int
}

// Renderer turns an energy profile into background frames and still
// images into slideshows
type Renderer struct {
	logger zerolog.Logger
	opts   Options
}

// NewRenderer validates opts and returns a renderer
func NewRenderer(logger zerolog.Logger, opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: frame size must be positive, got %dx%d", effects.ErrConfiguration, opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", effects.ErrConfiguration, opts.FPS)
	}
	if opts.SyncWindow <= 0 {
		opts.SyncWindow = DefaultSyncWindow
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	return &Renderer{
		logger: logger.With().Str("component", "scene").Logger(),
		opts:   opts,
	}, nil
}

// Seed returns the seed used for all random sources
func (r *Renderer) Seed() uint64 {
	return r.opts.Seed
}

// layers holds one generator per layer so concurrent layers never share a
// random source
type layers struct {
	particles *effects.ParticleSystem
	patterns  *effects.PatternGenerator
	flares    *effects.LightEffects
	bokeh     *effects.LightEffects
	sync      []energy.SyncPoint
	flareAt   []frame.Point
}

func (r *Renderer) newLayers(theme Theme, sync []energy.SyncPoint) (*layers, error) {
	w, h, seed := r.opts.Width, r.opts.Height, r.opts.Seed
	l := &layers{sync: sync}

	var err error
	if theme.usesParticles() {
		l.particles, err = effects.NewParticleSystem(w, h, r.opts.ParticleCount, effects.NewRand(seed))
		if err != nil {
			return nil, err
		}
	}
	if l.patterns, err = effects.NewPatternGenerator(w, h, effects.NewRand(seed+1)); err != nil {
		return nil, err
	}
	if l.flares, err = effects.NewLightEffects(w, h, effects.NewRand(seed+2)); err != nil {
		return nil, err
	}
	if l.bokeh, err = effects.NewLightEffects(w, h, effects.NewRand(seed+3)); err != nil {
		return nil, err
	}

	// each sync point gets a fixed flare position for the whole render
	rng := effects.NewRand(seed + 4)
	l.flareAt = make([]frame.Point, len(sync))
	for i := range sync {
		l.flareAt[i] = frame.Point{X: rng.IntN(w), Y: rng.IntN(h)}
	}
	return l, nil
}

// bokehPoints scales the highlight count with energy
func bokehPoints(e float64) int {
	return max(0, int(math.Round(5+20*e)))
}

func (l *layers) render(kind layerKind, t, e float64, window float64) (*frame.Buffer, error) {
	switch kind {
	case layerParticles:
		return l.particles.Render(), nil
	case layerCircles:
		return l.patterns.GeneratePattern(effects.PatternCircles, e)
	case layerWaves:
		return l.patterns.GeneratePattern(effects.PatternWaves, e)
	case layerBokeh:
		return l.bokeh.GenerateBokeh(bokehPoints(e), e)
	case layerFlare:
		idx, intensity := l.flareIntensity(t, window)
		if idx < 0 {
			return nil, nil
		}
		return l.flares.GenerateLightFlare(l.flareAt[idx], intensity)
	default:
		return nil, fmt.Errorf("unknown layer %d", kind)
	}
}

// flareIntensity is the strength of the nearest sync point, fading linearly
// to zero at the window edge. idx is -1 when no flare is visible.
func (l *layers) flareIntensity(t, window float64) (int, float64) {
	idx, ok := energy.Nearest(l.sync, t, window)
	if !ok {
		return -1, 0
	}
	sp := l.sync[idx]
	intensity := sp.Strength * (1 - math.Abs(sp.Time-t)/window)
	if intensity <= 0 {
		return -1, 0
	}
	return idx, intensity
}

// RenderBackground renders duration seconds of the theme driven by the
// track's energy profile, flaring on its sync points, and writes every
// frame to sink in order
func (r *Renderer) RenderBackground(ctx context.Context, track *energy.Analysis, duration float64, theme Theme, sink FrameSink) error {
	if track == nil || track.Profile == nil || len(track.Profile.Values) == 0 {
		return fmt.Errorf("energy profile is empty")
	}
	profile := track.Profile
	if !(duration > 0) {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	kinds, ok := themeLayers[theme]
	if !ok {
		return fmt.Errorf("unknown theme %q", theme)
	}

	sync := track.SyncPoints
	ls, err := r.newLayers(theme, sync)
	if err != nil {
		return fmt.Errorf("failed to set up %s theme: %w", theme, err)
	}

	var smoother *energy.Smoother
	if s := r.opts.Smoothing; s != nil {
		smoother = energy.NewSmoother(r.opts.FPS, s.Frequency, s.Damping)
		smoother.Reset(profile.At(0))
	}

	total := util.FrameCount(util.SecondsToDuration(duration), r.opts.FPS)
	energies := profile.ForFrames(float64(r.opts.FPS), total)
	grade := theme.grading()

	r.logger.Info().
		Str("theme", string(theme)).
		Int("frames", total).
		Int("sync_points", len(sync)).
		Uint64("seed", r.opts.Seed).
		Msg("rendering background")
	start := time.Now()

	results := make([]*frame.Buffer, len(kinds))
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := util.FrameTime(i, r.opts.FPS)
		e := energies[i]
		if smoother != nil {
			e = smoother.Next(e)
		}
		if ls.particles != nil {
			ls.particles.Update(e)
		}

		var g errgroup.Group
		g.SetLimit(r.opts.Workers)
		for j, kind := range kinds {
			g.Go(func() error {
				buf, err := ls.render(kind, t, e, r.opts.SyncWindow)
				results[j] = buf
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		out := frame.New(r.opts.Width, r.opts.Height)
		for _, layer := range results {
			if layer == nil {
				continue
			}
			if err := out.AddTo(layer); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
		if !grade.IsZero() {
			out = effects.ApplyColorGrading(out, grade)
		}
		out = r.opts.Post.Apply(out)

		if err := sink.WriteFrame(ctx, out); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}

		if (i+1)%(r.opts.FPS*10) == 0 {
			r.logger.Debug().Int("frame", i+1).Int("total", total).Msg("render progress")
		}
	}

	r.logger.Info().
		Int("frames", total).
		Dur("elapsed", time.Since(start)).
		Msg("background render complete")
	return nil
}
