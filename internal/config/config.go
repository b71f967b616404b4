// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads cairn command settings from defaults, a YAML file,
// an optional .env file and CAIRN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gogpu/gputypes"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	cairn "github.com/CaymanFreeman/Cairn"
	"github.com/CaymanFreeman/Cairn/device"
	"github.com/CaymanFreeman/Cairn/render"
	"github.com/CaymanFreeman/Cairn/surface"
)

// EnvPrefix prefixes every environment variable Config reads.
const EnvPrefix = "CAIRN_"

// ErrInvalid matches every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds the settings of one cairn run.
type Config struct {
	Backend       string        `yaml:"backend" env:"BACKEND"`
	Power         string        `yaml:"power" env:"POWER"`
	PresentMode   string        `yaml:"present_mode" env:"PRESENT_MODE"`
	Width         uint32        `yaml:"width" env:"WIDTH"`
	Height        uint32        `yaml:"height" env:"HEIGHT"`
	FrameInterval time.Duration `yaml:"frame_interval" env:"FRAME_INTERVAL"`
	DrainTimeout  time.Duration `yaml:"drain_timeout" env:"DRAIN_TIMEOUT"`
	ClearColor    []float64     `yaml:"clear_color" env:"CLEAR_COLOR" envSeparator:","`
	Depth         bool          `yaml:"depth" env:"DEPTH"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL"`
	MaxFrames     uint64        `yaml:"max_frames" env:"MAX_FRAMES"`
}

// Default returns the built-in settings.
func Default() Config {
	c := render.DefaultClearColor
	return Config{
		Power:         "high",
		PresentMode:   "fifo",
		Width:         800,
		Height:        600,
		FrameInterval: time.Second / 60,
		DrainTimeout:  2 * time.Second,
		ClearColor:    []float64{c.R, c.G, c.B, c.A},
		LogLevel:      "info",
	}
}

// Sources names the optional inputs of Load. Empty paths are skipped.
type Sources struct {
	File    string
	EnvFile string
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Load layers the sources over Default and validates the result.
// Variables from the process environment win over the .env file.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if src.File != "" {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", src.File, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", src.File, err)
		}
	}

	environ := make(map[string]string)
	if src.EnvFile != "" {
		vars, err := godotenv.Read(src.EnvFile)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", src.EnvFile, err)
		}
		maps.Copy(environ, vars)
	}
	if src.Environ != nil {
		maps.Copy(environ, src.Environ)
	} else {
		maps.Copy(environ, env.ToMap(os.Environ()))
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var powerPreferences = map[string]gputypes.PowerPreference{
	"":     gputypes.PowerPreferenceNone,
	"none": gputypes.PowerPreferenceNone,
	"low":  gputypes.PowerPreferenceLowPower,
	"high": gputypes.PowerPreferenceHighPerformance,
}

var presentModes = map[string]gputypes.PresentMode{
	"fifo":         gputypes.PresentModeFifo,
	"fifo-relaxed": gputypes.PresentModeFifoRelaxed,
	"mailbox":      gputypes.PresentModeMailbox,
	"immediate":    gputypes.PresentModeImmediate,
}

// Validate rejects unknown names, non-positive durations and malformed
// colors.
func (c Config) Validate() error {
	var errs []error
	if _, ok := powerPreferences[strings.ToLower(c.Power)]; !ok {
		errs = append(errs, fmt.Errorf("%w: power %q (want none, low or high)", ErrInvalid, c.Power))
	}
	if _, ok := presentModes[strings.ToLower(c.PresentMode)]; !ok {
		errs = append(errs, fmt.Errorf("%w: present_mode %q", ErrInvalid, c.PresentMode))
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: frame_interval must be positive", ErrInvalid))
	}
	if c.DrainTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: drain_timeout must be positive", ErrInvalid))
	}
	if n := len(c.ClearColor); n != 0 && n != 3 && n != 4 {
		errs = append(errs, fmt.Errorf("%w: clear_color needs 3 or 4 components, got %d", ErrInvalid, n))
	}
	for _, v := range c.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%w: clear_color component %g outside [0,1]", ErrInvalid, v))
			break
		}
	}
	return errors.Join(errs...)
}

// Requirements returns the device requirements for c.
func (c Config) Requirements() device.Requirements {
	return device.Requirements{
		PowerPreference: powerPreferences[strings.ToLower(c.Power)],
		Label:           "cairn",
	}
}

// Preferences returns the surface preferences for c. The configured present
// mode goes first, with FIFO kept as the fallback every surface supports.
func (c Config) Preferences() surface.Preferences {
	p := surface.DefaultPreferences()
	mode := presentModes[strings.ToLower(c.PresentMode)]
	if mode != gputypes.PresentModeFifo {
		p.PresentModes = []gputypes.PresentMode{mode, gputypes.PresentModeFifo}
	}
	return p
}

// Color returns the clear color. A missing alpha is 1.
func (c Config) Color() gputypes.Color {
	if len(c.ClearColor) < 3 {
		return render.DefaultClearColor
	}
	col := gputypes.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: 1}
	if len(c.ClearColor) == 4 {
		col.A = c.ClearColor[3]
	}
	return col
}

// Options converts c into orchestrator options.
func (c Config) Options() []cairn.Option {
	ropts := []render.Option{render.WithClearColor(c.Color())}
	if c.Depth {
		ropts = append(ropts, render.WithDepth(gputypes.TextureFormatDepth24Plus))
	}
	return []cairn.Option{
		cairn.WithRequirements(c.Requirements()),
		cairn.WithPreferences(c.Preferences()),
		cairn.WithRenderOptions(ropts...),
		cairn.WithFrameInterval(c.FrameInterval),
		cairn.WithDrainTimeout(c.DrainTimeout),
		cairn.WithMaxFrames(c.MaxFrames),
	}
}
