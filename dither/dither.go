// Package dither reduces 8-bit intensity images to 1-bit planes.
//
// Five variants are provided, each a stateless Func selected by a Variant tag:
//
//   - Threshold: fixed cut at 127
//   - Bayer: 4x4 ordered dithering
//   - Line: alternating row thresholds, a scanline look
//   - FloydSteinberg: error diffusion to four neighbours, clamped
//   - Atkinson: error diffusion to six neighbours, 2/8 of the error discarded
//
// All variants are deterministic: the same input always yields the same plane.
package dither

import (
	"image"

	"go.uber.org/zap"
)

// Variant identifies a dithering algorithm.
type Variant string

// Recognised variants.
const (
	VariantThreshold      Variant = "threshold"
	VariantBayer          Variant = "bayer"
	VariantFloydSteinberg Variant = "floyd"
	VariantAtkinson       Variant = "atkinson"
	VariantLine           Variant = "line"
)

// Func maps an intensity image to a plane of the same dimensions.
type Func func(g *image.Gray) *Plane

var funcs = map[Variant]Func{
	VariantThreshold:      Threshold,
	VariantBayer:          Bayer,
	VariantFloydSteinberg: FloydSteinberg,
	VariantAtkinson:       Atkinson,
	VariantLine:           Line,
}

// Variants returns the recognised variant identifiers in a stable order.
func Variants() []Variant {
	return []Variant{VariantThreshold, VariantBayer, VariantFloydSteinberg, VariantAtkinson, VariantLine}
}

// Lookup returns the Func for v.
func Lookup(v Variant) (Func, bool) {
	f, ok := funcs[v]
	return f, ok
}

// Select returns the Func for v, falling back to Threshold when v is not
// recognised. The fallback is logged as a warning, it is not an error.
func Select(v Variant, logger *zap.Logger) Func {
	if f, ok := Lookup(v); ok {
		return f
	}
	if logger != nil {
		logger.Warn("unknown dither variant, using threshold",
			zap.String("variant", string(v)),
			zap.Any("known", Variants()))
	}
	return Threshold
}

// Apply dithers g with variant v, see Select.
func Apply(v Variant, g *image.Gray, logger *zap.Logger) *Plane {
	return Select(v, logger)(g)
}

// Threshold sets a pixel iff its intensity is above 127.
func Threshold(g *image.Gray) *Plane {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			if row[x] > 127 {
				p.Bits[y*w+x] = 1
			}
		}
	}
	return p
}

// bayer4 is the 4x4 ordered threshold matrix, scaled to 0..255.
var bayer4 = [4][4]uint8{
	{15, 135, 45, 165},
	{195, 75, 225, 105},
	{60, 180, 30, 150},
	{240, 120, 210, 90},
}

// Bayer sets a pixel iff its intensity exceeds the tiled matrix entry at
// (x mod 4, y mod 4).
func Bayer(g *image.Gray) *Plane {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):]
		m := &bayer4[y&3]
		for x := 0; x < w; x++ {
			if row[x] > m[x&3] {
				p.Bits[y*w+x] = 1
			}
		}
	}
	return p
}

// Line thresholds even rows at 100 and odd rows at 160, so mid tones come
// out as horizontal stripes.
func Line(g *image.Gray) *Plane {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	p := NewPlane(w, h)
	for y := 0; y < h; y++ {
		row := g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):]
		cut := uint8(100)
		if y&1 == 1 {
			cut = 160
		}
		for x := 0; x < w; x++ {
			if row[x] > cut {
				p.Bits[y*w+x] = 1
			}
		}
	}
	return p
}
