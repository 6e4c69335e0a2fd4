package source

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"
)

// GIF is a Source over the frames of an animated GIF. Frames are composited
// onto a full-size canvas honouring each frame's disposal method.
type GIF struct {
	g      *gif.GIF
	canvas *image.RGBA
	saved  *image.RGBA
	next   int
	fps    float64
	closed bool
}

// OpenGIF decodes the GIF file at path.
func OpenGIF(path string) (*GIF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer f.Close()
	return DecodeGIF(f)
}

// DecodeGIF decodes every frame of an animated GIF from r.
func DecodeGIF(r io.Reader) (*GIF, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("source: gif has no frames")
	}

	w, h := g.Config.Width, g.Config.Height
	if w <= 0 || h <= 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	return &GIF{
		g:      g,
		canvas: opaqueBlack(w, h),
		fps:    gifFPS(g.Delay),
	}, nil
}

// gifFPS derives a frame rate from frame delays given in 1/100 s.
// Zero means unknown.
func gifFPS(delays []int) float64 {
	total := 0
	for _, d := range delays {
		total += d
	}
	if total <= 0 || len(delays) == 0 {
		return 0
	}
	return 100 * float64(len(delays)) / float64(total)
}

func opaqueBlack(w, h int) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(m, m.Rect, image.Black, image.Point{}, draw.Src)
	return m
}

// Next implements Source. The returned image is not reused.
func (s *GIF) Next() (image.Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.next >= len(s.g.Image) {
		return nil, io.EOF
	}

	if s.next > 0 {
		prev := s.g.Image[s.next-1]
		switch s.disposal(s.next - 1) {
		case gif.DisposalBackground:
			draw.Draw(s.canvas, prev.Bounds(), image.Black, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if s.saved != nil {
				copy(s.canvas.Pix, s.saved.Pix)
			}
		}
	}

	frame := s.g.Image[s.next]
	if s.disposal(s.next) == gif.DisposalPrevious {
		if s.saved == nil {
			s.saved = image.NewRGBA(s.canvas.Rect)
		}
		copy(s.saved.Pix, s.canvas.Pix)
	}
	draw.Draw(s.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	s.next++

	out := image.NewRGBA(s.canvas.Rect)
	copy(out.Pix, s.canvas.Pix)
	return out, nil
}

func (s *GIF) disposal(i int) byte {
	if i < len(s.g.Disposal) {
		return s.g.Disposal[i]
	}
	return gif.DisposalNone
}

// FPS implements Source.
func (s *GIF) FPS() float64 {
	return s.fps
}

// Close implements Source.
func (s *GIF) Close() error {
	s.closed = true
	return nil
}
