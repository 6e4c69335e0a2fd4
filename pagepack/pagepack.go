// Package pagepack packs 1-bit planes into the page-addressed layout used by
// SSD1306/SSD1309-class monochrome controllers.
//
// The panel is split into pages of 8 rows. Each byte covers one column of a
// page; bit b (LSB first) is the pixel at row page*8+b. Bytes are ordered
// page-major, then column-minor:
//
//	page 0: col 0, col 1, ... col W-1
//	page 1: col 0, col 1, ... col W-1
//	...
//
// The result is an image1bit.VerticalLSB whose Pix slice is the payload
// sent to the panel.
package pagepack

import (
	"errors"
	"image"

	"github.com/flavioheleno/monostream/dither"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrPageAlign is returned when the plane height is not a positive multiple
// of 8 or the width is not positive.
var ErrPageAlign = errors.New("pagepack: height must be a positive multiple of 8")

// ErrBufferSize is returned by Unpack when the buffer does not match w×h/8.
var ErrBufferSize = errors.New("pagepack: invalid buffer size")

// Size returns the packed length of a w×h plane.
func Size(w, h int) int {
	return w * (h / 8)
}

// Pack packs p into a VerticalLSB image of the same dimensions.
func Pack(p *dither.Plane) (*image1bit.VerticalLSB, error) {
	if p.W <= 0 || p.H <= 0 || p.H%8 != 0 {
		return nil, ErrPageAlign
	}
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		row := p.Bits[y*p.W : (y+1)*p.W]
		for x, b := range row {
			if b != 0 {
				img.SetBit(x, y, image1bit.On)
			}
		}
	}
	return img, nil
}

// Unpack is the inverse of Pack: bit b of the byte at (page p, column x)
// becomes the pixel at (x, p*8+b).
func Unpack(pix []byte, w, h int) (*dither.Plane, error) {
	if w <= 0 || h <= 0 || h%8 != 0 {
		return nil, ErrPageAlign
	}
	if len(pix) != Size(w, h) {
		return nil, ErrBufferSize
	}
	p := dither.NewPlane(w, h)
	for page := 0; page < h/8; page++ {
		for x := 0; x < w; x++ {
			v := pix[page*w+x]
			for bit := 0; bit < 8; bit++ {
				p.Bits[(page*8+bit)*w+x] = (v >> bit) & 1
			}
		}
	}
	return p, nil
}
