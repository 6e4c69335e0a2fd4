package monostream

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/flavioheleno/monostream/audio"
	"github.com/flavioheleno/monostream/dither"
	"github.com/flavioheleno/monostream/frame"
	"github.com/flavioheleno/monostream/link"
	"github.com/flavioheleno/monostream/pacing"
	"github.com/flavioheleno/monostream/pagepack"
	"github.com/flavioheleno/monostream/source"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// DefaultBootDelay is how long the receiver is given to come out of reset
// after the link is opened. Opening a USB serial port usually resets an
// Arduino-class board.
const DefaultBootDelay = 2 * time.Second

// resetPulse is the time the RST line is held low, then high.
const resetPulse = 200 * time.Millisecond

// ErrOpen wraps failures to open the link.
var ErrOpen = errors.New("monostream: failed to open link")

// Opts is the configuration of a streaming session.
type Opts struct {
	// Panel dimensions in pixels
	W int // Width (default: 128)
	H int // Height (default: 64, must be a multiple of 8)

	Variant    dither.Variant // Dithering algorithm (default: floyd)
	SkipFrames bool           // Drop frames to catch up when behind schedule
	FPS        float64        // Overrides the source frame rate when > 0

	// Link start-up
	BootDelay time.Duration // Wait after opening the link (default: 2s, negative: none)
	RST       gpio.PinOut   // Optional receiver reset pin, pulsed before the boot delay

	// Optional collaborators
	Audio   audio.Player                            // Soundtrack, started with the stream
	OnFrame func(index int, fb *image1bit.VerticalLSB) // Called after each acknowledged frame
	Logger  *zap.Logger                             // nil disables logging
	Clock   pacing.Clock                            // nil uses the system clock
}

// Opener opens the session's link. The returned Conn is closed when the
// session ends.
type Opener func() (link.Conn, error)

// Stats summarizes a finished session.
type Stats struct {
	Session  string        // unique session ID
	Read     int           // frames read from the source
	Sent     int           // frames sent and acknowledged
	Skipped  int           // frames read but dropped to catch up
	Late     int           // frames acknowledged after their due time
	WorstLag time.Duration // largest amount a frame was late by
	Elapsed  time.Duration // time from the first frame to the end
}

// Session is one run of the stream loop. It is created by Run.
type Session struct {
	id     string
	opts   Opts
	logger *zap.Logger
	clock  pacing.Clock
	dither dither.Func

	tr    *link.Transport
	ctl   *pacing.Controller
	stats Stats
}

// Run streams src to the receiver behind open until src is exhausted or the
// receiver loses sync. The link is always closed before Run returns; src is
// left open for the caller.
//
// The loop is strictly sequential: a frame is only sent once the previous
// one was acknowledged. A desynchronized link ends the session with an error
// matching link.ErrDesync, there is no retry.
func Run(src source.Source, open Opener, opts *Opts) (*Stats, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:     uuid.NewString(),
		opts:   o,
		logger: o.Logger,
		clock:  o.Clock,
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	s.stats.Session = s.id
	s.dither = dither.Select(o.Variant, s.logger)

	err = s.run(src, open)
	return &s.stats, err
}

// withDefaults validates opts and fills in defaults.
func (opts *Opts) withDefaults() (Opts, error) {
	var o Opts
	if opts != nil {
		o = *opts
	}
	if o.W == 0 && o.H == 0 {
		o.W, o.H = 128, 64
	}
	if o.W <= 0 {
		return o, errors.New("monostream: width must be positive")
	}
	if o.H <= 0 || o.H%8 != 0 {
		return o, errors.New("monostream: height must be a positive multiple of 8")
	}
	if o.Variant == "" {
		o.Variant = dither.VariantFloydSteinberg
	}
	switch {
	case o.BootDelay == 0:
		o.BootDelay = DefaultBootDelay
	case o.BootDelay < 0:
		o.BootDelay = 0
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = pacing.System{}
	}
	return o, nil
}

func (s *Session) run(src source.Source, open Opener) error {
	c, err := open()
	if err != nil {
		s.logger.Error("failed to open link", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			s.logger.Warn("failed to close link", zap.Error(err))
		}
	}()

	s.tr, err = link.NewTransport(c, pagepack.Size(s.opts.W, s.opts.H))
	if err != nil {
		return err
	}
	if err := s.boot(c); err != nil {
		return err
	}

	if s.opts.Audio != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		audio.Start(ctx, s.opts.Audio, s.logger)
	}

	fps := s.opts.FPS
	if fps <= 0 {
		fps = src.FPS()
	}
	s.ctl = pacing.New(s.clock, fps, s.opts.SkipFrames)

	s.logger.Info("stream started",
		zap.Stringer("link", s.tr),
		zap.Float64("fps", fps),
		zap.Duration("interval", s.ctl.Interval()),
		zap.Bool("skip_frames", s.opts.SkipFrames),
		zap.String("dither", string(s.opts.Variant)),
		zap.Int("width", s.opts.W),
		zap.Int("height", s.opts.H))

	s.ctl.Start()
	start := s.clock.Now()
	err = s.loop(src)

	st := s.ctl.Stats()
	s.stats.Sent = st.Sent
	s.stats.Skipped = st.Skipped
	s.stats.Late = st.Late
	s.stats.WorstLag = st.WorstLag
	s.stats.Elapsed = s.clock.Now().Sub(start)

	fields := []zap.Field{
		zap.Int("read", s.stats.Read),
		zap.Int("sent", s.stats.Sent),
		zap.Int("skipped", s.stats.Skipped),
		zap.Duration("worst_lag", s.stats.WorstLag),
	}
	if err != nil {
		s.logger.Error("stream aborted", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Info("stream ended", fields...)
	return nil
}

// boot resets the receiver if a reset pin is wired, then waits for it to
// come up and drops anything it printed meanwhile.
func (s *Session) boot(c link.Conn) error {
	if s.opts.RST != nil {
		if err := s.opts.RST.Out(gpio.Low); err != nil {
			return fmt.Errorf("monostream: failed to pull RST low: %w", err)
		}
		s.clock.Sleep(resetPulse)
		if err := s.opts.RST.Out(gpio.High); err != nil {
			return fmt.Errorf("monostream: failed to pull RST high: %w", err)
		}
	}

	if s.opts.BootDelay > 0 {
		s.clock.Sleep(s.opts.BootDelay)
	}

	if r, ok := c.(interface{ ResetInputBuffer() error }); ok {
		if err := r.ResetInputBuffer(); err != nil {
			s.logger.Warn("failed to flush link input", zap.Error(err))
		}
	}
	return nil
}

// loop runs decode, skip check, render, send and settle until the source is
// exhausted or an error occurs.
func (s *Session) loop(src source.Source) error {
	for {
		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("monostream: read frame %d: %w", s.ctl.Index(), err)
		}
		s.stats.Read++

		if s.ctl.Skip() {
			continue
		}

		index := s.ctl.Index()
		fb, err := s.render(img)
		if err != nil {
			return fmt.Errorf("monostream: frame %d: %w", index, err)
		}

		if err := s.tr.Send(fb.Pix); err != nil {
			if errors.Is(err, link.ErrDesync) {
				s.logger.Error("lost sync", zap.Int("frame", index), zap.Error(err))
			}
			return err
		}
		if s.opts.OnFrame != nil {
			s.opts.OnFrame(index, fb)
		}

		d := s.ctl.Settle()
		switch {
		case d.Skip > 0:
			s.logger.Info("skipping frames to catch up",
				zap.Int("frame", index),
				zap.Int("skip", d.Skip),
				zap.Duration("lag", -d.Remaining))
		case d.Late():
			s.logger.Debug("running behind",
				zap.Int("frame", index),
				zap.Duration("lag", -d.Remaining))
		default:
			s.logger.Debug("frame sent",
				zap.Int("frame", index),
				zap.Duration("remaining", d.Remaining))
		}
	}
}

// render turns a source frame into the panel buffer.
func (s *Session) render(img image.Image) (*image1bit.VerticalLSB, error) {
	g, err := frame.Render(img, s.opts.W, s.opts.H)
	if err != nil {
		return nil, err
	}
	return pagepack.Pack(s.dither(g))
}
