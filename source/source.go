// Package source defines where frames come from.
//
// A Source is a finite, non-restartable sequence: Next hands out frames in
// order and returns io.EOF once exhausted. Decoders live behind this
// interface; the gocv-backed video reader is in the videocap subpackage so
// that the rest of the module builds without OpenCV.
package source

import (
	"errors"
	"image"
	"io"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("source: closed")

// Source yields decoded frames.
type Source interface {
	// Next returns the next frame, or io.EOF when there are no more.
	Next() (image.Image, error)
	// FPS returns the nominal frame rate, 0 when unknown.
	FPS() float64
	io.Closer
}

// Images is a Source over frames held in memory.
type Images struct {
	frames []image.Image
	fps    float64
	next   int
	closed bool
}

// FromImages returns a Source yielding frames in order at the nominal fps.
func FromImages(fps float64, frames ...image.Image) *Images {
	return &Images{frames: frames, fps: fps}
}

// Next implements Source.
func (s *Images) Next() (image.Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// FPS implements Source.
func (s *Images) FPS() float64 {
	return s.fps
}

// Read returns the number of frames handed out so far.
func (s *Images) Read() int {
	return s.next
}

// Close implements Source.
func (s *Images) Close() error {
	s.closed = true
	return nil
}
