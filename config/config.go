// Package config loads stream session settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds the settings of one streaming session.
type Config struct {
	Source     string  `yaml:"source"`      // media file, GIF, or capture device index
	Port       string  `yaml:"port"`        // serial device, e.g. /dev/ttyUSB0 or COM3
	Baud       int     `yaml:"baud"`        // link speed (default: 115200)
	SkipFrames bool    `yaml:"skip_frames"` // drop frames to catch up when late
	Audio      bool    `yaml:"audio"`       // play the source's soundtrack
	Dither     string  `yaml:"dither"`      // threshold, bayer, floyd, atkinson, line
	Width      int     `yaml:"width"`       // panel width (default: 128)
	Height     int     `yaml:"height"`      // panel height, multiple of 8 (default: 64)
	FPS        float64 `yaml:"fps"`         // overrides the source frame rate when > 0

	BootDelayMS  int `yaml:"boot_delay_ms"`  // wait after opening the port (default: 2000)
	AckTimeoutMS int `yaml:"ack_timeout_ms"` // acknowledgment timeout (default: 1000)

	ResetPin string `yaml:"reset_pin,omitempty"` // optional GPIO pulsed low to reset the receiver
	DryRun   bool   `yaml:"dry_run"`             // render without a serial port
	Preview  string `yaml:"preview,omitempty"`   // write the last frame sent as PNG
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Baud:         115200,
		SkipFrames:   true,
		Dither:       "floyd",
		Width:        128,
		Height:       64,
		BootDelayMS:  2000,
		AckTimeoutMS: 1000,
	}
}

// Load reads the YAML file at path on top of Default and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cfg. An unrecognised dither name is accepted; it falls
// back to threshold when the session starts.
func Validate(cfg *Config) error {
	if cfg.Width <= 0 {
		return fmt.Errorf("%w: width must be > 0", ErrInvalid)
	}
	if cfg.Height <= 0 || cfg.Height%8 != 0 {
		return fmt.Errorf("%w: height must be a positive multiple of 8", ErrInvalid)
	}
	if cfg.Baud <= 0 {
		return fmt.Errorf("%w: baud must be > 0", ErrInvalid)
	}
	if cfg.FPS < 0 {
		return fmt.Errorf("%w: fps must be >= 0", ErrInvalid)
	}
	if cfg.BootDelayMS < 0 {
		return fmt.Errorf("%w: boot_delay_ms must be >= 0", ErrInvalid)
	}
	if cfg.AckTimeoutMS < 0 {
		return fmt.Errorf("%w: ack_timeout_ms must be >= 0", ErrInvalid)
	}
	if cfg.Port == "" && !cfg.DryRun {
		return fmt.Errorf("%w: port is required unless dry_run is set", ErrInvalid)
	}
	return nil
}

// BootDelay returns the post-open delay.
func (c *Config) BootDelay() time.Duration {
	return time.Duration(c.BootDelayMS) * time.Millisecond
}

// AckTimeout returns the acknowledgment timeout.
func (c *Config) AckTimeout() time.Duration {
	return time.Duration(c.AckTimeoutMS) * time.Millisecond
}
