// Package frame scales decoded video frames onto the panel canvas and reduces
// them to 8-bit intensity.
//
// Frames are letterboxed: the source is scaled uniformly to fit inside the
// panel with an area-averaging filter and centred on a black canvas. Nothing
// is cropped.
package frame

import (
	"errors"
	"image"
	"image/draw"
)

// ErrInvalidFrame is returned for frames (or targets) with zero or negative
// dimensions.
var ErrInvalidFrame = errors.New("frame: invalid frame dimensions")

// Render letterboxes src onto a w×h canvas and converts it to grayscale.
func Render(src image.Image, w, h int) (*image.Gray, error) {
	canvas, err := Letterbox(src, w, h)
	if err != nil {
		return nil, err
	}
	return Gray(canvas), nil
}

// Letterbox scales src to fit a w×h canvas preserving its aspect ratio and
// centres it. Uncovered canvas pixels are black.
func Letterbox(src image.Image, w, h int) (*image.RGBA, error) {
	if src == nil || w <= 0 || h <= 0 {
		return nil, ErrInvalidFrame
	}
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, ErrInvalidFrame
	}

	// Zero-filled RGBA is transparent black; alpha is forced opaque below.
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xFF
	}

	// scale = min(w/srcW, h/srcH), kept in integers so exact fits stay exact
	newW, newH := w, srcH*w/srcW
	if w*srcH > h*srcW {
		newW, newH = srcW*h/srcH, h
	}
	if newW <= 0 || newH <= 0 {
		return canvas, nil
	}

	xOff := (w - newW) / 2
	yOff := (h - newH) / 2
	resizeArea(canvas, image.Rect(xOff, yOff, xOff+newW, yOff+newH), toRGBA(src))
	return canvas, nil
}

// toRGBA returns src as a zero-origin *image.RGBA, copying only when needed.
func toRGBA(src image.Image) *image.RGBA {
	if m, ok := src.(*image.RGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := src.Bounds()
	m := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Rect, src, b.Min, draw.Src)
	return m
}

// span is the coverage of one source row or column by a destination pixel.
type span struct {
	idx    int
	weight float64
}

// areaSpans computes, for each of dstN destination cells, which source cells
// it covers and by how much. Weights per cell sum to srcN/dstN.
func areaSpans(srcN, dstN int) [][]span {
	ratio := float64(srcN) / float64(dstN)
	out := make([][]span, dstN)
	for d := 0; d < dstN; d++ {
		lo, hi := float64(d)*ratio, float64(d+1)*ratio
		first := int(lo)
		for s := first; s < srcN && float64(s) < hi; s++ {
			w := min(hi, float64(s+1)) - max(lo, float64(s))
			if w > 0 {
				out[d] = append(out[d], span{idx: s, weight: w})
			}
		}
	}
	return out
}

// resizeArea box-filters src into the dr region of dst.
func resizeArea(dst *image.RGBA, dr image.Rectangle, src *image.RGBA) {
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := dr.Dx(), dr.Dy()
	xs := areaSpans(sw, dw)
	ys := areaSpans(sh, dh)
	area := (float64(sw) / float64(dw)) * (float64(sh) / float64(dh))

	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			var r, g, b float64
			for _, sy := range ys[dy] {
				row := sy.idx * src.Stride
				for _, sx := range xs[dx] {
					w := sy.weight * sx.weight
					p := src.Pix[row+sx.idx*4:]
					r += float64(p[0]) * w
					g += float64(p[1]) * w
					b += float64(p[2]) * w
				}
			}
			o := dst.PixOffset(dr.Min.X+dx, dr.Min.Y+dy)
			dst.Pix[o+0] = toByte(r / area)
			dst.Pix[o+1] = toByte(g / area)
			dst.Pix[o+2] = toByte(b / area)
			dst.Pix[o+3] = 0xFF
		}
	}
}

func toByte(v float64) uint8 {
	v += 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
