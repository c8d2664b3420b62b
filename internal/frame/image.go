package frame

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// ToNRGBA converts the buffer to an opaque image
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := b.offset(x, y)
			j := img.PixOffset(x, y)
			img.Pix[j] = b.Pix[i]
			img.Pix[j+1] = b.Pix[i+1]
			img.Pix[j+2] = b.Pix[i+2]
			img.Pix[j+3] = 0xff
		}
	}
	return img
}

// FromImage copies img into a new buffer of the given size. Images of a
// different size are resized with Lanczos resampling. Alpha is dropped.
func FromImage(img image.Image, width, height int) *Buffer {
	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
		bounds = img.Bounds()
	}
	out := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			out.Set(x, y, RGB{c.R, c.G, c.B})
		}
	}
	return out
}

// Blur returns a Gaussian-blurred copy. sigma <= 0 returns an unmodified copy.
func (b *Buffer) Blur(sigma float64) *Buffer {
	if sigma <= 0 {
		return b.Clone()
	}
	blurred := imaging.Blur(b.ToNRGBA(), sigma)
	return fromNRGBA(blurred)
}

func fromNRGBA(img *image.NRGBA) *Buffer {
	bounds := img.Bounds()
	out := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			j := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out.Set(x, y, RGB{img.Pix[j], img.Pix[j+1], img.Pix[j+2]})
		}
	}
	return out
}
