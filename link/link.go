// Package link implements the framed, acknowledged serial protocol spoken by
// the panel receiver.
//
// Each frame on the wire is a fixed 4-byte header followed by exactly one
// page-packed panel buffer:
//
//	AA 55 AA 55 | W*H/8 payload bytes
//
// The payload length is not transmitted; it is fixed for the lifetime of a
// Transport. After every frame the receiver answers with a single byte, 0xAC
// on success. Anything else, or no answer within the read timeout, means the
// two ends no longer agree on frame boundaries. There is no resynchronization
// step: the caller is expected to stop and reset the link.
package link

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3"
)

// Header marks the start of every frame.
var Header = [4]byte{0xAA, 0x55, 0xAA, 0x55}

// Ack is the receiver's success reply.
const Ack byte = 0xAC

var (
	// ErrDesync matches any *DesyncError.
	ErrDesync = errors.New("link: protocol desync")
	// ErrTimeout is returned by a Conn when no reply arrived in time.
	ErrTimeout = errors.New("link: read timeout")
	// ErrPayloadSize is returned when a payload does not match the size the
	// Transport was created with.
	ErrPayloadSize = errors.New("link: invalid payload size")
)

// Conn is a connection that owns its underlying handle.
type Conn interface {
	conn.Conn
	io.Closer
}

// DesyncError reports a missing or unexpected acknowledgment.
type DesyncError struct {
	Frame   int  // number of frames acknowledged before this one
	Reply   byte // byte received, meaningless when Timeout is set
	Timeout bool
}

func (e *DesyncError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("link: protocol desync at frame %d: no acknowledgment", e.Frame)
	}
	return fmt.Sprintf("link: protocol desync at frame %d: got 0x%02X, want 0x%02X", e.Frame, e.Reply, Ack)
}

// Is makes errors.Is(err, ErrDesync) succeed.
func (e *DesyncError) Is(target error) bool {
	return target == ErrDesync
}

// Transport sends fixed-size frames over c, one at a time.
type Transport struct {
	c    conn.Conn
	size int
	buf  []byte
	ack  [1]byte
	sent int
}

// NewTransport returns a Transport for payloads of exactly size bytes.
func NewTransport(c conn.Conn, size int) (*Transport, error) {
	if c == nil {
		return nil, errors.New("link: nil connection")
	}
	if size <= 0 {
		return nil, ErrPayloadSize
	}
	t := &Transport{
		c:    c,
		size: size,
		buf:  make([]byte, len(Header)+size),
	}
	copy(t.buf, Header[:])
	return t, nil
}

// Send writes one frame and blocks until the acknowledgment byte is read.
//
// A reply other than Ack, or a read timeout, returns a *DesyncError. The
// frame is never retried.
func (t *Transport) Send(payload []byte) error {
	if len(payload) != t.size {
		return ErrPayloadSize
	}
	copy(t.buf[len(Header):], payload)

	t.ack[0] = 0
	if err := t.c.Tx(t.buf, t.ack[:]); err != nil {
		if errors.Is(err, ErrTimeout) {
			return &DesyncError{Frame: t.sent, Timeout: true}
		}
		return fmt.Errorf("link: frame %d: %w", t.sent, err)
	}
	if t.ack[0] != Ack {
		return &DesyncError{Frame: t.sent, Reply: t.ack[0]}
	}
	t.sent++
	return nil
}

// Sent returns the number of acknowledged frames.
func (t *Transport) Sent() int {
	return t.sent
}

// Size returns the payload size.
func (t *Transport) Size() int {
	return t.size
}

func (t *Transport) String() string {
	return fmt.Sprintf("link.Transport{%s, %dB}", t.c, t.size)
}
