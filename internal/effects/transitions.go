package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/keagan/beatreel/internal/frame"
)

// TransitionKind selects how two scenes are joined
type TransitionKind int

const (
	TransitionFade TransitionKind = iota
	TransitionWipe
)

var transitionNames = map[TransitionKind]string{
	TransitionFade: "fade",
	TransitionWipe: "wipe",
}

func (k TransitionKind) String() string {
	if name, ok := transitionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TransitionKind(%d)", int(k))
}

// ParseTransition resolves a transition name such as "wipe"
func ParseTransition(name string) (TransitionKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range transitionNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedTransition, name)
}

// UnmarshalText lets transition kinds be read from config files and flags
func (k *TransitionKind) UnmarshalText(text []byte) error {
	kind, err := ParseTransition(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalText writes the transition name
func (k TransitionKind) MarshalText() ([]byte, error) {
	if _, ok := transitionNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTransition, int(k))
	}
	return []byte(k.String()), nil
}

// Transition is a finite, time-indexed frame sequence. Frame is a pure
// function of time, so a sequence can be replayed from any point.
type Transition struct {
	kind     TransitionKind
	width    int
	height   int
	duration float64
}

// CreateTransition builds a transition of the given kind and duration in
// seconds
func CreateTransition(width, height int, duration float64, kind TransitionKind) (*Transition, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	if !(duration > 0) || math.IsInf(duration, 1) {
		return nil, fmt.Errorf("%w: transition duration must be positive, got %v", ErrConfiguration, duration)
	}
	if _, ok := transitionNames[kind]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTransition, kind)
	}
	return &Transition{kind: kind, width: width, height: height, duration: duration}, nil
}

// Kind returns the transition kind
func (tr *Transition) Kind() TransitionKind { return tr.kind }

// Duration returns the length in seconds
func (tr *Transition) Duration() float64 { return tr.duration }

// Progress maps t to [0,1], clamping outside the sequence
func (tr *Transition) Progress(t float64) float64 {
	return clamp(t/tr.duration, 0, 1)
}

// Opacity is the fade curve: 0 to 1 over the first half, back to 0 over the
// second. Wipes are always fully opaque.
func (tr *Transition) Opacity(t float64) float64 {
	if tr.kind != TransitionFade {
		return 1
	}
	p := tr.Progress(t)
	if p <= 0.5 {
		return p * 2
	}
	return (1 - p) * 2
}

// WipeEdge is the number of revealed columns at time t
func (tr *Transition) WipeEdge(t float64) int {
	return int(math.Round(tr.Progress(t) * float64(tr.width)))
}

// Frame renders the transition layer at time t. A fade is a black frame
// whose coverage is given by Opacity; a wipe reveals white from the left.
func (tr *Transition) Frame(t float64) *frame.Buffer {
	buf := frame.New(tr.width, tr.height)
	if tr.kind == TransitionWipe {
		buf.FillColumns(0, tr.WipeEdge(t), frame.White)
	}
	return buf
}

// Stitch composites the outgoing and incoming scenes at time t. Fades dip
// through black; wipes reveal the incoming scene from the left.
func (tr *Transition) Stitch(from, to *frame.Buffer, t float64) (*frame.Buffer, error) {
	if from.Width != tr.width || from.Height != tr.height || !from.SameSize(to) {
		return nil, fmt.Errorf("%w: stitch frames must be %dx%d", ErrConfiguration, tr.width, tr.height)
	}

	switch tr.kind {
	case TransitionFade:
		src := from
		if tr.Progress(t) > 0.5 {
			src = to
		}
		out := src.Clone()
		out.Scale(1 - tr.Opacity(t))
		return out, nil
	case TransitionWipe:
		out := from.Clone()
		edge := tr.WipeEdge(t)
		for y := 0; y < tr.height; y++ {
			row := y * tr.width * frame.Channels
			copy(out.Pix[row:row+edge*frame.Channels], to.Pix[row:row+edge*frame.Channels])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTransition, tr.kind)
	}
}

// Times returns the sample times for rendering the transition at fps,
// starting at 0 and ending at the duration
func (tr *Transition) Times(fps float64) []float64 {
	if !(fps > 0) {
		return nil
	}
	n := int(math.Ceil(tr.duration * fps))
	times := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		times = append(times, float64(i)/fps)
	}
	return append(times, tr.duration)
}
