package effects

import (
	"errors"
	"math"
	"testing"

	"github.com/keagan/beatreel/internal/frame"
)

func TestLightFlareGlow(t *testing.T) {
	l, err := NewLightEffects(200, 100, nil)
	if err != nil {
		t.Fatal(err)
	}

	buf, err := l.GenerateLightFlare(frame.Point{X: 100, Y: 50}, 0.5)
	if err != nil {
		t.Fatalf("GenerateLightFlare failed: %v", err)
	}

	h, w, _ := buf.Shape()
	if h != 100 || w != 200 {
		t.Fatalf("unexpected shape %dx%d", w, h)
	}

	center := buf.At(100, 50)
	if center.R == 0 {
		t.Fatal("flare center is dark")
	}
	if buf.At(0, 0) != frame.Black {
		t.Errorf("flare leaked into the far corner: %v", buf.At(0, 0))
	}
	if edge := buf.At(100+20, 50); edge.R >= center.R {
		t.Errorf("glow should fall off from the center: center %v, edge %v", center, edge)
	}
}

func TestLightFlareRadius(t *testing.T) {
	l, _ := NewLightEffects(400, 200, nil)
	if got := l.FlareRadius(1); got != 50 {
		t.Errorf("FlareRadius(1) = %v, want 50", got)
	}
}

func TestLightFlareInvalidIntensity(t *testing.T) {
	l, _ := NewLightEffects(50, 50, nil)

	for _, intensity := range []float64{0, -0.5, math.NaN()} {
		buf, err := l.GenerateLightFlare(frame.Point{X: 25, Y: 25}, intensity)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("intensity %v: expected ErrConfiguration, got %v", intensity, err)
		}
		if buf != nil {
			t.Errorf("intensity %v: expected no buffer", intensity)
		}
	}
}

func TestBokehPoints(t *testing.T) {
	l, _ := NewLightEffects(120, 80, NewRand(4))

	empty, err := l.GenerateBokeh(0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !empty.IsBlack() {
		t.Error("zero points should leave the frame black")
	}

	sharp, err := l.GenerateBokeh(6, 0)
	if err != nil {
		t.Fatal(err)
	}
	bright := 0
	for i := 0; i < len(sharp.Pix); i += 3 {
		if sharp.Pix[i] == 0 {
			continue
		}
		if sharp.Pix[i] < 200 || sharp.Pix[i+1] < 200 || sharp.Pix[i+2] < 200 {
			t.Fatalf("unblurred bokeh pixel is not near-white: %v", sharp.Pix[i:i+3])
		}
		bright++
	}
	if bright == 0 {
		t.Error("no bokeh points drawn")
	}
}

func TestBokehSeeded(t *testing.T) {
	a, _ := NewLightEffects(90, 60, NewRand(8))
	b, _ := NewLightEffects(90, 60, NewRand(8))
	fa, _ := a.GenerateBokeh(10, 0.3)
	fb, _ := b.GenerateBokeh(10, 0.3)
	for i := range fa.Pix {
		if fa.Pix[i] != fb.Pix[i] {
			t.Fatal("same seed produced different bokeh")
		}
	}
}

func TestBokehInvalidCount(t *testing.T) {
	l, _ := NewLightEffects(10, 10, nil)
	if _, err := l.GenerateBokeh(-1, 0.5); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestBokehBlur(t *testing.T) {
	if BokehBlur(0.5) != 5 {
		t.Errorf("BokehBlur(0.5) = %v", BokehBlur(0.5))
	}
	if BokehBlur(-1) != 0 {
		t.Errorf("negative intensity should not blur")
	}
}
