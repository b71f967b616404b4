package cairn

import (
	"log/slog"
	"time"

	"github.com/CaymanFreeman/Cairn/device"
	"github.com/CaymanFreeman/Cairn/render"
	"github.com/CaymanFreeman/Cairn/surface"
)

// Option configures an Orchestrator or App.
//
// Example:
//
//	app := cairn.NewApp(win, factory,
//	    cairn.WithFrameInterval(time.Second/144),
//	    cairn.WithBatchSource(game),
//	)
type Option func(*options)

// options holds the settings shared by Orchestrator and App.
type options struct {
	requirements  device.Requirements
	preferences   surface.Preferences
	source        BatchSource
	renderOpts    []render.Option
	frameInterval time.Duration
	drainTimeout  time.Duration
	maxFrames     uint64
	tickHook      func(tick uint64)
	log           *slog.Logger
}

// defaultOptions returns the defaults: 60 Hz ticks, a two second drain,
// the default surface preferences and no batch source.
func defaultOptions() options {
	return options{
		preferences:   surface.DefaultPreferences(),
		frameInterval: time.Second / 60,
		drainTimeout:  2 * time.Second,
		log:           Logger(),
	}
}

// WithRequirements sets the adapter and device requirements.
func WithRequirements(req device.Requirements) Option {
	return func(o *options) {
		o.requirements = req
	}
}

// WithPreferences sets the surface format and present mode preferences.
func WithPreferences(p surface.Preferences) Option {
	return func(o *options) {
		o.preferences = p
	}
}

// WithBatchSource sets where frames get their draw commands. Without one
// every frame is cleared.
func WithBatchSource(s BatchSource) Option {
	return func(o *options) {
		o.source = s
	}
}

// WithRenderOptions passes options to the render pass builder.
func WithRenderOptions(opts ...render.Option) Option {
	return func(o *options) {
		o.renderOpts = append(o.renderOpts, opts...)
	}
}

// WithFrameInterval sets the tick period of App.Run.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.frameInterval = d
		}
	}
}

// WithDrainTimeout bounds how long shutdown waits for the GPU to go idle.
func WithDrainTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.drainTimeout = d
		}
	}
}

// WithMaxFrames requests shutdown after n presented frames. Zero means no
// limit.
func WithMaxFrames(n uint64) Option {
	return func(o *options) {
		o.maxFrames = n
	}
}

// WithTickHook registers fn to run at every App.Run tick, in any state,
// before the orchestrator ticks. Scenario players use it to drive the
// window.
func WithTickHook(fn func(tick uint64)) Option {
	return func(o *options) {
		o.tickHook = fn
	}
}

// WithLogger overrides the package logger for one orchestrator.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
