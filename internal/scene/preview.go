package scene

import (
	"fmt"
	"sort"

	"github.com/keagan/beatreel/internal/effects"
	"github.com/keagan/beatreel/internal/frame"
)

// previewFunc renders one effect at energy e; t is used by transitions
type previewFunc func(r *Renderer, e, t float64) (*frame.Buffer, error)

var previews = map[string]previewFunc{
	"particles": func(r *Renderer, e, _ float64) (*frame.Buffer, error) {
		ps, err := effects.NewParticleSystem(r.opts.Width, r.opts.Height, r.opts.ParticleCount, effects.NewRand(r.opts.Seed))
		if err != nil {
			return nil, err
		}
		ps.Update(e)
		return ps.Render(), nil
	},
	"circles": patternPreview(effects.PatternCircles),
	"lines":   patternPreview(effects.PatternLines),
	"waves":   patternPreview(effects.PatternWaves),
	"flare": func(r *Renderer, e, _ float64) (*frame.Buffer, error) {
		l, err := effects.NewLightEffects(r.opts.Width, r.opts.Height, effects.NewRand(r.opts.Seed))
		if err != nil {
			return nil, err
		}
		return l.GenerateLightFlare(frame.Point{X: r.opts.Width / 2, Y: r.opts.Height / 2}, e)
	},
	"bokeh": func(r *Renderer, e, _ float64) (*frame.Buffer, error) {
		l, err := effects.NewLightEffects(r.opts.Width, r.opts.Height, effects.NewRand(r.opts.Seed))
		if err != nil {
			return nil, err
		}
		return l.GenerateBokeh(bokehPoints(e), e)
	},
	"fade": transitionPreview(effects.TransitionFade),
	"wipe": transitionPreview(effects.TransitionWipe),
}

func patternPreview(kind effects.PatternKind) previewFunc {
	return func(r *Renderer, e, _ float64) (*frame.Buffer, error) {
		g, err := effects.NewPatternGenerator(r.opts.Width, r.opts.Height, effects.NewRand(r.opts.Seed))
		if err != nil {
			return nil, err
		}
		return g.GeneratePattern(kind, e)
	}
}

// transitionPreview renders the transition layer of a one second
// transition at progress t
func transitionPreview(kind effects.TransitionKind) previewFunc {
	return func(r *Renderer, _, t float64) (*frame.Buffer, error) {
		tr, err := effects.CreateTransition(r.opts.Width, r.opts.Height, 1, kind)
		if err != nil {
			return nil, err
		}
		return tr.Frame(t), nil
	}
}

// PreviewEffects lists the effect names accepted by Preview
func PreviewEffects() []string {
	names := make([]string, 0, len(previews))
	for name := range previews {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preview renders a single frame of the named effect at energy e (or
// transition progress t) with the post chain applied
func (r *Renderer) Preview(effect string, e, t float64) (*frame.Buffer, error) {
	fn, ok := previews[effect]
	if !ok {
		return nil, fmt.Errorf("unknown effect %q (supported: %v)", effect, PreviewEffects())
	}
	f, err := fn(r, e, t)
	if err != nil {
		return nil, err
	}
	return r.opts.Post.Apply(f), nil
}
