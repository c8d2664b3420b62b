package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/keagan/beatreel/internal/effects"
	"github.com/keagan/beatreel/internal/frame"
	"github.com/keagan/beatreel/pkg/util"
)

// Still is one slideshow image and how long it is held, in seconds
type Still struct {
	Frame    *frame.Buffer
	Duration float64
}

// RenderSlideshow holds each still for its duration and joins consecutive
// stills with a transition of the given kind. Transition frames are
// inserted between holds, so the end points (pure outgoing and pure
// incoming) are not repeated.
func (r *Renderer) RenderSlideshow(ctx context.Context, stills []Still, kind effects.TransitionKind, transitionDuration float64, sink FrameSink) error {
	if len(stills) == 0 {
		return fmt.Errorf("slideshow needs at least one still")
	}
	for i, s := range stills {
		if s.Frame == nil || s.Frame.Width != r.opts.Width || s.Frame.Height != r.opts.Height {
			return fmt.Errorf("%w: still %d must be %dx%d", effects.ErrConfiguration, i, r.opts.Width, r.opts.Height)
		}
		if !(s.Duration > 0) {
			return fmt.Errorf("%w: still %d duration must be positive, got %v", effects.ErrConfiguration, i, s.Duration)
		}
	}

	var tr *effects.Transition
	if len(stills) > 1 {
		var err error
		tr, err = effects.CreateTransition(r.opts.Width, r.opts.Height, transitionDuration, kind)
		if err != nil {
			return err
		}
	}

	r.logger.Info().
		Int("stills", len(stills)).
		Str("transition", kind.String()).
		Float64("transition_duration", transitionDuration).
		Msg("rendering slideshow")
	start := time.Now()

	written := 0
	emit := func(f *frame.Buffer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.WriteFrame(ctx, r.opts.Post.Apply(f)); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", written, err)
		}
		written++
		return nil
	}

	for i, s := range stills {
		hold := util.FrameCount(util.SecondsToDuration(s.Duration), r.opts.FPS)
		for j := 0; j < hold; j++ {
			if err := emit(s.Frame); err != nil {
				return err
			}
		}

		if i == len(stills)-1 {
			break
		}
		times := tr.Times(float64(r.opts.FPS))
		for _, t := range times[1 : len(times)-1] {
			f, err := tr.Stitch(s.Frame, stills[i+1].Frame, t)
			if err != nil {
				return err
			}
			if err := emit(f); err != nil {
				return err
			}
		}
	}

	r.logger.Info().
		Int("frames", written).
		Dur("elapsed", time.Since(start)).
		Msg("slideshow render complete")
	return nil
}
