// Package frame holds the raster buffer shared by every renderer and the
// drawing primitives they use.
package frame

import "fmt"

// Channels is the number of samples stored per pixel.
const Channels = 3

// RGB is one pixel. Channel order is a convention of the consumer.
type RGB struct {
	R, G, B uint8
}

// Common colors
var (
	Black = RGB{}
	White = RGB{255, 255, 255}
)

// Buffer is a height x width x 3 grid of 8-bit samples, row-major with the
// channel varying fastest. The zero value of Pix is black.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a black buffer
func New(width, height int) *Buffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("frame: negative dimensions %dx%d", width, height))
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// Shape returns the dimensions in (height, width, channels) order
func (b *Buffer) Shape() (int, int, int) {
	return b.Height, b.Width, Channels
}

// In reports whether (x, y) lies inside the buffer
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * Channels
}

// At returns the pixel at (x, y). Out-of-range coordinates read as black.
func (b *Buffer) At(x, y int) RGB {
	if !b.In(x, y) {
		return Black
	}
	i := b.offset(x, y)
	return RGB{b.Pix[i], b.Pix[i+1], b.Pix[i+2]}
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (b *Buffer) Set(x, y int, c RGB) {
	if !b.In(x, y) {
		return
	}
	i := b.offset(x, y)
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
}

// Fill paints every pixel with c
func (b *Buffer) Fill(c RGB) {
	for i := 0; i < len(b.Pix); i += Channels {
		b.Pix[i] = c.R
		b.Pix[i+1] = c.G
		b.Pix[i+2] = c.B
	}
}

// Clear resets the buffer to black
func (b *Buffer) Clear() {
	clear(b.Pix)
}

// Clone returns a deep copy
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// IsBlack reports whether every sample is zero
func (b *Buffer) IsBlack() bool {
	for _, v := range b.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// SameSize reports whether o has the same dimensions as b
func (b *Buffer) SameSize(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}
