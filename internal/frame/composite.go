package frame

import "fmt"

// AddTo adds src onto b sample by sample, saturating at 255. Layers drawn
// on black compose without ordering effects.
func (b *Buffer) AddTo(src *Buffer) error {
	if !b.SameSize(src) {
		return fmt.Errorf("frame size mismatch: %dx%d vs %dx%d", b.Width, b.Height, src.Width, src.Height)
	}
	for i, v := range src.Pix {
		s := int(b.Pix[i]) + int(v)
		if s > 255 {
			s = 255
		}
		b.Pix[i] = uint8(s)
	}
	return nil
}

// Scale multiplies every sample by k in [0,1], fading toward black
func (b *Buffer) Scale(k float64) {
	k = clamp01(k)
	for i, v := range b.Pix {
		b.Pix[i] = uint8(float64(v)*k + 0.5)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
