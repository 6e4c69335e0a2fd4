package link

import (
	"bytes"
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
)

// Loopback is an in-process receiver. It checks the frame header, passes the
// payload to OnFrame and acknowledges it, which lets a session run with no
// panel attached.
//
// A frame with a bad header is answered with 0x00, as a desynchronized
// receiver would.
type Loopback struct {
	// OnFrame, if set, receives each payload. The slice is only valid for the
	// duration of the call. An error aborts the exchange.
	OnFrame func(payload []byte) error

	frames int
	closed bool
}

// Tx implements conn.Conn.
func (l *Loopback) Tx(w, r []byte) error {
	if l.closed {
		return errors.New("link: loopback closed")
	}
	if len(r) != 1 {
		return fmt.Errorf("link: loopback expects a 1-byte read, got %d", len(r))
	}
	if !bytes.HasPrefix(w, Header[:]) {
		r[0] = 0x00
		return nil
	}
	if l.OnFrame != nil {
		if err := l.OnFrame(w[len(Header):]); err != nil {
			return err
		}
	}
	l.frames++
	r[0] = Ack
	return nil
}

// Frames returns the number of frames received.
func (l *Loopback) Frames() int {
	return l.frames
}

// Duplex implements conn.Conn.
func (l *Loopback) Duplex() conn.Duplex {
	return conn.Full
}

// Close implements io.Closer.
func (l *Loopback) Close() error {
	l.closed = true
	return nil
}

func (l *Loopback) String() string {
	return "link.Loopback"
}
