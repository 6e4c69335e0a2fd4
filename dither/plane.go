package dither

import "fmt"

// Plane is a 1-bit image stored one value per pixel, row-major.
// Every entry of Bits is 0 or 1.
type Plane struct {
	W, H int
	Bits []uint8
}

// NewPlane returns an all-zero w×h plane.
func NewPlane(w, h int) *Plane {
	if w < 0 || h < 0 {
		return &Plane{}
	}
	return &Plane{W: w, H: h, Bits: make([]uint8, w*h)}
}

// At returns the bit at (x, y), or 0 when out of range.
func (p *Plane) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= p.W || y >= p.H {
		return 0
	}
	return p.Bits[y*p.W+x]
}

// Set sets the bit at (x, y) to 1 when on is true, 0 otherwise.
func (p *Plane) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= p.W || y >= p.H {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	p.Bits[y*p.W+x] = v
}

// Ones returns the number of set pixels.
func (p *Plane) Ones() int {
	n := 0
	for _, b := range p.Bits {
		n += int(b)
	}
	return n
}

func (p *Plane) String() string {
	return fmt.Sprintf("dither.Plane{%dx%d}", p.W, p.H)
}
