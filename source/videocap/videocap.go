// Package videocap reads frames from video files and capture devices through
// OpenCV (gocv).
package videocap

import (
	"fmt"
	"image"
	"io"
	"strconv"

	"gocv.io/x/gocv"
)

// Capture is a source.Source backed by a gocv.VideoCapture.
type Capture struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
	fps float64
}

// Open opens a media file, stream URL, or, when src is a plain integer, the
// capture device with that index.
func Open(src string) (*Capture, error) {
	var arg interface{} = src
	if id, err := strconv.Atoi(src); err == nil {
		arg = id
	}
	vc, err := gocv.OpenVideoCapture(arg)
	if err != nil {
		return nil, fmt.Errorf("videocap: open %s: %w", src, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("videocap: %s could not be opened", src)
	}
	return &Capture{
		vc:  vc,
		mat: gocv.NewMat(),
		fps: vc.Get(gocv.VideoCaptureFPS),
	}, nil
}

// Next returns the next decoded frame, or io.EOF at the end of the stream.
func (c *Capture) Next() (image.Image, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, io.EOF
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("videocap: convert frame: %w", err)
	}
	return img, nil
}

// FPS returns the container's nominal frame rate, 0 when not reported.
func (c *Capture) FPS() float64 {
	return c.fps
}

// Close releases the capture and its frame buffer.
func (c *Capture) Close() error {
	if err := c.vc.Close(); err != nil {
		return err
	}
	return c.mat.Close()
}
