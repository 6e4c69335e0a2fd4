package link

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// DefaultTimeout bounds the wait for an acknowledgment.
const DefaultTimeout = time.Second

// Port is a serial port configured 8N1, usable as a Conn.
type Port struct {
	port  serial.Port
	name  string
	speed physic.Frequency
}

// Open opens the named serial port at speed (baud expressed as a frequency,
// e.g. 115200*physic.Hertz). Reads time out after timeout; a zero timeout
// uses DefaultTimeout.
func Open(name string, speed physic.Frequency, timeout time.Duration) (*Port, error) {
	baud := int(speed / physic.Hertz)
	if baud <= 0 {
		return nil, fmt.Errorf("link: invalid link speed %s", speed)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", name, err)
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("link: set read timeout on %s: %w", name, err)
	}
	return &Port{port: p, name: name, speed: speed}, nil
}

// Tx writes w in full, then reads exactly len(r) bytes. It returns
// ErrTimeout when the port stops delivering bytes before r is filled.
func (p *Port) Tx(w, r []byte) error {
	for len(w) > 0 {
		n, err := p.port.Write(w)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("link: short write")
		}
		w = w[n:]
	}
	for got := 0; got < len(r); {
		n, err := p.port.Read(r[got:])
		if err != nil {
			return err
		}
		// go.bug.st/serial returns 0, nil when the read timeout expires
		if n == 0 {
			return ErrTimeout
		}
		got += n
	}
	return nil
}

// ResetInputBuffer discards bytes received but not yet read, such as
// bootloader chatter from the receiver.
func (p *Port) ResetInputBuffer() error {
	return p.port.ResetInputBuffer()
}

// Duplex implements conn.Conn.
func (p *Port) Duplex() conn.Duplex {
	return conn.Full
}

// Close releases the port.
func (p *Port) Close() error {
	return p.port.Close()
}

func (p *Port) String() string {
	return fmt.Sprintf("link.Port{%s, %s}", p.name, p.speed)
}
