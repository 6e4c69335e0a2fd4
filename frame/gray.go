package frame

import (
	"image"
)

// Gray converts img to 8-bit intensity using BT.601 luma weights
// (0.299R + 0.587G + 0.114B).
func Gray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Fast path for the canvas produced by Letterbox
	if m, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			src := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < b.Dx(); x++ {
				p := src[x*4:]
				dst[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
			}
		}
		return out
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA returns 16-bit channels
			out.Pix[y*out.Stride+x] = luma(r>>8, g>>8, bl>>8)
		}
	}
	return out
}

// luma weights 8-bit channels, rounding to nearest.
func luma(r, g, b uint32) uint8 {
	return uint8((299*r + 587*g + 114*b + 500) / 1000)
}
