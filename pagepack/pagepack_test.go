package pagepack

import (
	"bytes"
	"testing"

	"github.com/flavioheleno/monostream/dither"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// pattern returns a deterministic, irregular plane.
func pattern(w, h int) *dither.Plane {
	p := dither.NewPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.Set(x, y, (x*7+y*13+x*y)%5 < 2)
		}
	}
	return p
}

func TestPackInvalid(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"height not multiple of 8", 128, 60},
		{"zero height", 128, 0},
		{"zero width", 0, 64},
		{"height 1", 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pack(dither.NewPlane(tt.w, tt.h))
			assert.ErrorIs(t, err, ErrPageAlign)
		})
	}
}

func TestPackSize(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{128, 64, 1024},
		{128, 32, 512},
		{96, 16, 192},
		{1, 8, 1},
	}

	for _, tt := range tests {
		img, err := Pack(dither.NewPlane(tt.w, tt.h))
		require.NoError(t, err, "Pack(%dx%d)", tt.w, tt.h)
		assert.Len(t, img.Pix, tt.want)
		assert.Equal(t, tt.want, Size(tt.w, tt.h))
	}
}

func TestPackBitLayout(t *testing.T) {
	p := dither.NewPlane(3, 16)
	p.Set(0, 0, true)  // page 0, col 0, bit 0
	p.Set(0, 7, true)  // page 0, col 0, bit 7
	p.Set(2, 3, true)  // page 0, col 2, bit 3
	p.Set(1, 8, true)  // page 1, col 1, bit 0
	p.Set(2, 15, true) // page 1, col 2, bit 7

	img, err := Pack(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x00, 0x08, 0x00, 0x01, 0x80}, img.Pix)
}

func TestPackMatchesImage(t *testing.T) {
	p := pattern(20, 24)
	img, err := Pack(p)
	require.NoError(t, err)
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			require.Equal(t, image1bit.Bit(p.At(x, y) == 1), img.BitAt(x, y), "BitAt(%d, %d)", x, y)
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, w := range []int{1, 3, 64, 128} {
		for _, h := range []int{8, 16, 40, 64} {
			p := pattern(w, h)
			img, err := Pack(p)
			require.NoError(t, err, "Pack(%dx%d)", w, h)
			got, err := Unpack(img.Pix, w, h)
			require.NoError(t, err, "Unpack(%dx%d)", w, h)
			assert.Equal(t, p.Bits, got.Bits, "%dx%d", w, h)
		}
	}
}

func TestUnpackInvalid(t *testing.T) {
	_, err := Unpack(make([]byte, 1023), 128, 64)
	assert.ErrorIs(t, err, ErrBufferSize)
	_, err = Unpack(make([]byte, 1024), 128, 63)
	assert.ErrorIs(t, err, ErrPageAlign)
}

func TestPackSolid(t *testing.T) {
	tests := []struct {
		name string
		on   bool
		want byte
	}{
		{"all off", false, 0x00},
		{"all on", true, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := dither.NewPlane(128, 64)
			for i := range p.Bits {
				if tt.on {
					p.Bits[i] = 1
				}
			}
			img, err := Pack(p)
			require.NoError(t, err)
			assert.Equal(t, bytes.Repeat([]byte{tt.want}, 1024), img.Pix)
		})
	}
}
