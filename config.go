// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/canvas2d/internal/damage"
	"github.com/gogpu/canvas2d/layer"
	"github.com/gogpu/canvas2d/surface"
)

// Environment variables read by LoadConfig and ParseConfig. They override
// file values.
const (
	EnvRecording         = "CANVAS2D_RECORDING"
	EnvForceRecording    = "CANVAS2D_FORCE_RECORDING"
	EnvDisableSwitchBack = "CANVAS2D_DISABLE_SWITCH_BACK"
	EnvSwitchOnImageData = "CANVAS2D_SWITCH_ON_IMAGE_DATA"
	EnvAnimationRate     = "CANVAS2D_ANIMATION_THRESHOLD"
)

// Config holds engine-wide settings. It is read once when the engine is
// created.
type Config struct {
	// RecordingEnabled allows canvases to record at all.
	RecordingEnabled bool `toml:"recording_enabled"`
	// ForceRecording starts every 2D canvas in recording mode.
	ForceRecording bool `toml:"force_recording"`
	// DisableSwitchBack refuses recording to raster transitions.
	DisableSwitchBack bool `toml:"disable_switch_back"`
	// SwitchOnImageData switches a recording canvas back to raster when
	// its pixels are read.
	SwitchOnImageData bool `toml:"switch_on_image_data"`

	// AnimationThreshold is the full-clear rate, per second, that marks a
	// canvas as animating.
	AnimationThreshold float64 `toml:"animation_threshold"`

	// BacklogLimitBytes is the pending replay volume that switches a
	// recording canvas back to raster. Zero disables the check.
	BacklogLimitBytes int `toml:"backlog_limit_bytes"`
	// DeferredBatching coalesces worker wakeups.
	DeferredBatching bool `toml:"deferred_batching"`
	// ReadbackTimeout bounds synchronous pixel reads. Zero waits forever.
	ReadbackTimeout Duration `toml:"readback_timeout"`

	MaxCanvasArea int `toml:"max_canvas_area"`
	MaxDimension  int `toml:"max_dimension"`

	// Tile size of the software compositing path.
	TileWidth  int `toml:"tile_width"`
	TileHeight int `toml:"tile_height"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		RecordingEnabled:   true,
		SwitchOnImageData:  true,
		AnimationThreshold: DefaultAnimationThreshold,
		BacklogLimitBytes:  layer.DefaultBacklogLimit,
		DeferredBatching:   true,
		MaxCanvasArea:      surface.MaxArea,
		MaxDimension:       surface.MaxDimension,
		TileWidth:          damage.DefaultTileWidth,
		TileHeight:         damage.DefaultTileHeight,
	}
}

// LoadConfig reads a TOML file over the defaults and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("canvas2d: read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over the defaults and applies environment
// overrides.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("canvas2d: parse config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	bools := []struct {
		key string
		dst *bool
	}{
		{EnvRecording, &c.RecordingEnabled},
		{EnvForceRecording, &c.ForceRecording},
		{EnvDisableSwitchBack, &c.DisableSwitchBack},
		{EnvSwitchOnImageData, &c.SwitchOnImageData},
	}
	for _, b := range bools {
		v, ok := os.LookupEnv(b.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("canvas2d: %s=%q: %w", b.key, v, err)
		}
		*b.dst = parsed
	}
	if v, ok := os.LookupEnv(EnvAnimationRate); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("canvas2d: %s=%q: %w", EnvAnimationRate, v, err)
		}
		c.AnimationThreshold = parsed
	}
	return nil
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.AnimationThreshold <= 0:
		return fmt.Errorf("%w: animation_threshold=%v", ErrInvalidConfig, c.AnimationThreshold)
	case c.BacklogLimitBytes < 0:
		return fmt.Errorf("%w: backlog_limit_bytes=%d", ErrInvalidConfig, c.BacklogLimitBytes)
	case c.ReadbackTimeout.Duration < 0:
		return fmt.Errorf("%w: readback_timeout=%v", ErrInvalidConfig, c.ReadbackTimeout)
	case c.MaxDimension < 1 || c.MaxDimension > surface.MaxDimension:
		return fmt.Errorf("%w: max_dimension=%d", ErrInvalidConfig, c.MaxDimension)
	case c.MaxCanvasArea < 1 || c.MaxCanvasArea > surface.MaxArea:
		return fmt.Errorf("%w: max_canvas_area=%d", ErrInvalidConfig, c.MaxCanvasArea)
	case c.TileWidth < 1 || c.TileHeight < 1:
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidConfig, c.TileWidth, c.TileHeight)
	}
	return nil
}

// String returns the config as TOML.
func (c Config) String() string {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("canvas2d.Config(%v)", err)
	}
	return string(data)
}

// allows reports whether a canvas of w x h may allocate storage.
func (c Config) allows(w, h int) bool {
	if w > c.MaxDimension || h > c.MaxDimension {
		return false
	}
	return int64(w)*int64(h) <= int64(c.MaxCanvasArea)
}
