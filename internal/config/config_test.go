package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/render"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Sources{Environ: map[string]string{}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", cfg.Width, cfg.Height)
	}
	if cfg.FrameInterval != time.Second/60 {
		t.Errorf("FrameInterval = %v", cfg.FrameInterval)
	}
	if cfg.Color() != render.DefaultClearColor {
		t.Errorf("Color() = %+v", cfg.Color())
	}
}

func TestLoadLayers(t *testing.T) {
	file := writeFile(t, "cairn.yaml", `
backend: headless
width: 1024
height: 768
frame_interval: 8ms
present_mode: fifo
clear_color: [1, 0, 0]
`)
	envFile := writeFile(t, ".env", "CAIRN_HEIGHT=700\nCAIRN_PRESENT_MODE=mailbox\n")

	cfg, err := Load(Sources{
		File:    file,
		EnvFile: envFile,
		Environ: map[string]string{"CAIRN_PRESENT_MODE": "immediate", "CAIRN_MAX_FRAMES": "5"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != "headless" || cfg.Width != 1024 {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Height != 700 {
		t.Errorf("Height = %d, want the .env value 700", cfg.Height)
	}
	if cfg.PresentMode != "immediate" {
		t.Errorf("PresentMode = %q, want the environment to win over .env", cfg.PresentMode)
	}
	if cfg.MaxFrames != 5 {
		t.Errorf("MaxFrames = %d", cfg.MaxFrames)
	}
	if cfg.FrameInterval != 8*time.Millisecond {
		t.Errorf("FrameInterval = %v", cfg.FrameInterval)
	}
	if got := cfg.Color(); got != (gputypes.Color{R: 1, A: 1}) {
		t.Errorf("Color() = %+v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  Sources
	}{
		{"missing file", Sources{File: filepath.Join(t.TempDir(), "none.yaml"), Environ: map[string]string{}}},
		{"bad yaml", Sources{File: writeFile(t, "bad.yaml", "width: [1"), Environ: map[string]string{}}},
		{"missing env file", Sources{EnvFile: filepath.Join(t.TempDir(), ".env"), Environ: map[string]string{}}},
		{"bad env value", Sources{Environ: map[string]string{"CAIRN_WIDTH": "wide"}}},
		{"invalid value", Sources{Environ: map[string]string{"CAIRN_POWER": "turbo"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.src); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"power", func(c *Config) { c.Power = "turbo" }},
		{"present mode", func(c *Config) { c.PresentMode = "vsync" }},
		{"interval", func(c *Config) { c.FrameInterval = 0 }},
		{"drain", func(c *Config) { c.DrainTimeout = -time.Second }},
		{"color length", func(c *Config) { c.ClearColor = []float64{1, 1} }},
		{"color range", func(c *Config) { c.ClearColor = []float64{2, 0, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestConverters(t *testing.T) {
	cfg := Default()
	cfg.Power = "LOW"
	cfg.PresentMode = "mailbox"

	if got := cfg.Requirements().PowerPreference; got != gputypes.PowerPreferenceLowPower {
		t.Errorf("PowerPreference = %v", got)
	}
	modes := cfg.Preferences().PresentModes
	if len(modes) != 2 || modes[0] != gputypes.PresentModeMailbox || modes[1] != gputypes.PresentModeFifo {
		t.Errorf("PresentModes = %v", modes)
	}
	if n := len(cfg.Options()); n != 6 {
		t.Errorf("len(Options()) = %d", n)
	}

	cfg.PresentMode = "fifo"
	if modes := cfg.Preferences().PresentModes; len(modes) != 1 {
		t.Errorf("fifo PresentModes = %v", modes)
	}
}
