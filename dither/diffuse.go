package dither

import "image"

// tap is one error diffusion target relative to the current pixel.
type tap struct {
	dx, dy int
	weight float32
}

// kernel describes an error diffusion scheme.
type kernel struct {
	taps []tap
	// clamp keeps every neighbour in [0,1] after it receives error.
	clamp bool
}

var floydSteinberg = kernel{
	taps: []tap{
		{1, 0, 7.0 / 16},
		{-1, 1, 3.0 / 16},
		{0, 1, 5.0 / 16},
		{1, 1, 1.0 / 16},
	},
	clamp: true,
}

// Each tap takes 1/8 of the error; the remaining 2/8 is dropped.
var atkinson = kernel{
	taps: []tap{
		{1, 0, 1.0 / 8},
		{2, 0, 1.0 / 8},
		{-1, 1, 1.0 / 8},
		{0, 1, 1.0 / 8},
		{1, 1, 1.0 / 8},
		{0, 2, 1.0 / 8},
	},
}

// FloydSteinberg dithers g with Floyd-Steinberg error diffusion.
func FloydSteinberg(g *image.Gray) *Plane {
	return floydSteinberg.apply(g)
}

// Atkinson dithers g with Atkinson error diffusion.
func Atkinson(g *image.Gray) *Plane {
	return atkinson.apply(g)
}

// apply runs a single raster pass, top to bottom and left to right. A pixel
// is set when its accumulated value reaches 0.5.
func (k kernel) apply(g *image.Gray) *Plane {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	buf := normalize(g)
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			old := buf[i]
			var v float32
			if old >= 0.5 {
				v = 1
				p.Bits[i] = 1
			}
			buf[i] = v
			k.spread(buf, w, h, x, y, old-v)
		}
	}
	return p
}

// spread distributes err from (x, y) over the kernel taps. Taps falling
// outside the image are skipped.
func (k kernel) spread(buf []float32, w, h, x, y int, err float32) {
	for _, t := range k.taps {
		nx, ny := x+t.dx, y+t.dy
		if nx < 0 || nx >= w || ny >= h {
			continue
		}
		j := ny*w + nx
		v := buf[j] + err*t.weight
		if k.clamp {
			v = min(max(v, 0), 1)
		}
		buf[j] = v
	}
}

// normalize copies g into a float buffer scaled to [0,1].
func normalize(g *image.Gray) []float32 {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	buf := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			buf[y*w+x] = float32(row[x]) / 255
		}
	}
	return buf
}
