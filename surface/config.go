package surface

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// State is the surface lifecycle state.
type State int

const (
	// Unconfigured has no applied configuration; nothing can be acquired.
	Unconfigured State = iota
	// Configured has a valid non-zero configuration.
	Configured
	// Lost must be fully reconfigured before the next acquisition.
	Lost
	// PermanentlyFailed was rejected by the driver and needs a Rebind.
	PermanentlyFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unconfigured:
		return "Unconfigured"
	case Configured:
		return "Configured"
	case Lost:
		return "Lost"
	case PermanentlyFailed:
		return "PermanentlyFailed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config is an applied surface configuration.
type Config struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
}

func (c Config) descriptor() *gpucore.SurfaceConfiguration {
	return &gpucore.SurfaceConfiguration{
		Width:       c.Width,
		Height:      c.Height,
		Format:      c.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: c.PresentMode,
		AlphaMode:   c.AlphaMode,
	}
}

// Preferences orders the formats and modes to try. The first entry the
// surface supports wins.
type Preferences struct {
	Formats      []gputypes.TextureFormat
	PresentModes []gputypes.PresentMode
	AlphaModes   []gputypes.CompositeAlphaMode

	// Strict disables falling back to the first reported format or present
	// mode when no preference matches.
	Strict bool
}

// DefaultPreferences prefers sRGB 8-bit formats, vsynced presentation and
// opaque composition.
func DefaultPreferences() Preferences {
	return Preferences{
		Formats: []gputypes.TextureFormat{
			gputypes.TextureFormatBGRA8UnormSrgb,
			gputypes.TextureFormatRGBA8UnormSrgb,
			gputypes.TextureFormatBGRA8Unorm,
			gputypes.TextureFormatRGBA8Unorm,
		},
		PresentModes: []gputypes.PresentMode{gputypes.PresentModeFifo},
		AlphaModes: []gputypes.CompositeAlphaMode{
			gputypes.CompositeAlphaModeAuto,
			gputypes.CompositeAlphaModeOpaque,
		},
	}
}

// choice is the format and modes picked at bind time.
type choice struct {
	format gputypes.TextureFormat
	mode   gputypes.PresentMode
	alpha  gputypes.CompositeAlphaMode
}

func pick[T comparable](prefs, supported []T, fallback bool) (T, bool) {
	for _, p := range prefs {
		if slices.Contains(supported, p) {
			return p, true
		}
	}
	if fallback && len(supported) > 0 {
		return supported[0], true
	}
	var zero T
	return zero, false
}

func choose(caps *gpucore.SurfaceCapabilities, prefs Preferences) (choice, error) {
	if caps == nil || len(caps.Formats) == 0 || len(caps.PresentModes) == 0 {
		return choice{}, fmt.Errorf("%w: adapter reports no formats or present modes", ErrIncompatibleSurface)
	}

	format, ok := pick(prefs.Formats, caps.Formats, !prefs.Strict)
	if !ok {
		return choice{}, fmt.Errorf("%w: no preferred format in %v", ErrIncompatibleSurface, caps.Formats)
	}
	mode, ok := pick(prefs.PresentModes, caps.PresentModes, !prefs.Strict)
	if !ok {
		return choice{}, fmt.Errorf("%w: no preferred present mode in %v", ErrIncompatibleSurface, caps.PresentModes)
	}
	alpha, ok := pick(prefs.AlphaModes, caps.AlphaModes, true)
	if !ok {
		alpha = gputypes.CompositeAlphaModeAuto
	}
	return choice{format: format, mode: mode, alpha: alpha}, nil
}
