// Package audio plays a stream's soundtrack next to the video loop.
//
// Playback is fire-and-forget: it runs in its own goroutine, shares no state
// with the frame pacing and has no way to report back into it. A soundtrack
// that fails to decode is logged and otherwise ignored.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// ErrDecode reports a soundtrack that could not be decoded or played.
var ErrDecode = errors.New("audio: decode failure")

// Player plays audio until the track ends or ctx is cancelled.
type Player interface {
	Play(ctx context.Context) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context) error

// Play calls f(ctx).
func (f PlayerFunc) Play(ctx context.Context) error { return f(ctx) }

// Start runs p in a new goroutine. Errors, including panics inside p, are
// logged and dropped. The returned channel is closed once playback is over.
func Start(ctx context.Context, p Player, logger *zap.Logger) <-chan struct{} {
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("audio playback panicked", zap.Any("panic", r))
			}
		}()

		err := p.Play(ctx)
		switch {
		case err == nil:
			logger.Debug("audio playback finished")
		case errors.Is(err, context.Canceled):
			logger.Debug("audio playback stopped")
		case errors.Is(err, ErrDecode):
			logger.Warn("could not decode audio, skipping playback", zap.Error(err))
		default:
			logger.Warn("audio playback failed", zap.Error(err))
		}
	}()
	return done
}

// FFPlay plays the audio track of a media file through ffplay.
type FFPlay struct {
	Path string
	// Bin is the ffplay executable, "ffplay" when empty.
	Bin string
}

// Play runs ffplay without a video window and waits for it to exit.
func (f *FFPlay) Play(ctx context.Context) error {
	bin := f.Bin
	if bin == "" {
		bin = "ffplay"
	}
	cmd := exec.CommandContext(ctx, bin, "-nodisp", "-autoexit", "-loglevel", "error", f.Path)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %s: %s", ErrDecode, f.Path, out)
	}
	if err != nil {
		return fmt.Errorf("audio: %s: %w", bin, err)
	}
	return nil
}
