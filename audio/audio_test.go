package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback goroutine did not finish")
	}
}

func TestStartLogsFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   zapcore.Level
		message string
	}{
		{"decode failure", fmt.Errorf("%w: bad.mp4", ErrDecode), zapcore.WarnLevel, "could not decode audio, skipping playback"},
		{"other failure", errors.New("no output device"), zapcore.WarnLevel, "audio playback failed"},
		{"cancelled", context.Canceled, zapcore.DebugLevel, "audio playback stopped"},
		{"success", nil, zapcore.DebugLevel, "audio playback finished"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			done := Start(context.Background(), PlayerFunc(func(context.Context) error {
				return tt.err
			}), zap.New(core))
			wait(t, done)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
		})
	}
}

func TestStartRecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	done := Start(context.Background(), PlayerFunc(func(context.Context) error {
		panic("codec exploded")
	}), zap.New(core))
	wait(t, done)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestStartDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	started := time.Now()
	done := Start(context.Background(), PlayerFunc(func(context.Context) error {
		<-release
		return nil
	}), nil)

	assert.Less(t, time.Since(started), time.Second)
	select {
	case <-done:
		t.Fatal("done closed before playback ended")
	default:
	}
	close(release)
	wait(t, done)
}

func TestStartCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := Start(ctx, PlayerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}), zap.NewNop())
	cancel()
	wait(t, done)
}

func TestFFPlayMissingBinary(t *testing.T) {
	p := &FFPlay{Path: "clip.mp4", Bin: "monostream-no-such-player"}
	err := p.Play(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestFFPlayExitIsDecodeFailure(t *testing.T) {
	bin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	p := &FFPlay{Path: "clip.mp4", Bin: bin}
	assert.ErrorIs(t, p.Play(context.Background()), ErrDecode)
}
