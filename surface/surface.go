// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/CaymanFreeman/Cairn/device"
	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Errors returned by Manager and Frame.
var (
	// ErrIncompatibleSurface means the surface supports no usable format or
	// present mode on the device's adapter.
	ErrIncompatibleSurface = errors.New("surface: incompatible surface")

	// ErrConfigurationFailed means the driver rejected the configuration
	// after a retry. The surface is PermanentlyFailed until Rebind.
	ErrConfigurationFailed = errors.New("surface: configuration failed")

	// ErrNotConfigured means AcquireFrame was called outside Configured.
	ErrNotConfigured = errors.New("surface: not configured")

	// ErrFrameOutstanding means the previous frame was neither presented
	// nor dropped.
	ErrFrameOutstanding = errors.New("surface: previous frame still outstanding")

	// ErrTimeout means no image became available in time. Skip the frame.
	ErrTimeout = errors.New("surface: acquire timed out")

	// ErrOutdated means the surface must be reconfigured before the next
	// acquisition.
	ErrOutdated = errors.New("surface: outdated")

	// ErrLost means the surface was lost and must be reconfigured.
	ErrLost = errors.New("surface: lost")

	// ErrFrameDone means Present was called on a frame already returned.
	ErrFrameDone = errors.New("surface: frame already presented or dropped")

	// ErrReleased means the Manager was used after Release.
	ErrReleased = errors.New("surface: manager released")
)

// Counters reports how often structural events happened.
type Counters struct {
	Configures int // successful configurations
	Retries    int // configurations retried after a rejection
	ZeroArea   int // reconfigures to a zero-area size
	Rebinds    int
}

// Manager owns one presentable surface and its configuration.
type Manager struct {
	dc      *device.Context
	surface gpucore.Surface
	prefs   Preferences
	choice  choice
	log     *slog.Logger

	state  State
	config Config
	lastW  uint32
	lastH  uint32

	outstanding *Frame
	counters    Counters
	released    bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the Manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Bind creates a surface for handle on dc's instance and attaches it.
func Bind(handle gpucore.NativeHandle, dc *device.Context, prefs Preferences, opts ...Option) (*Manager, error) {
	s, err := dc.CreateSurface(handle)
	if err != nil {
		return nil, fmt.Errorf("surface: create: %w", err)
	}
	return Attach(s, dc, prefs, opts...)
}

// Attach takes ownership of an existing surface, for example one created
// before the device so adapter selection could require compatibility
// with it. On error the surface is released.
func Attach(s gpucore.Surface, dc *device.Context, prefs Preferences, opts ...Option) (*Manager, error) {
	m := &Manager{
		dc:      dc,
		surface: s,
		prefs:   prefs,
		log:     slog.New(slog.DiscardHandler),
		state:   Unconfigured,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.negotiate(); err != nil {
		s.Release()
		return nil, err
	}
	return m, nil
}

func (m *Manager) negotiate() error {
	caps := m.dc.GPUAdapter().SurfaceCapabilities(m.surface)
	c, err := choose(caps, m.prefs)
	if err != nil {
		return err
	}
	m.choice = c
	m.dc.SetSurfaceFormat(c.format)
	m.log.Debug("surface: negotiated",
		"format", c.format,
		"present_mode", c.mode,
		"alpha_mode", c.alpha)
	return nil
}

// State returns the current state.
func (m *Manager) State() State { return m.state }

// Config returns the applied configuration and whether it is in effect.
func (m *Manager) Config() (Config, bool) {
	return m.config, m.state == Configured
}

// LastSize returns the last non-zero size requested.
func (m *Manager) LastSize() (width, height uint32) { return m.lastW, m.lastH }

// Counters returns the structural event counts.
func (m *Manager) Counters() Counters { return m.counters }

// Outstanding reports whether a frame is held by the caller.
func (m *Manager) Outstanding() bool { return m.outstanding != nil }

// Reconfigure applies a configuration for the given size. A zero width or
// height unconfigures the surface instead. Calling it again with the size
// already in effect does nothing.
func (m *Manager) Reconfigure(width, height uint32) error {
	return m.reconfigure(width, height, false)
}

// ForceReconfigure is Reconfigure without the unchanged-size shortcut.
func (m *Manager) ForceReconfigure(width, height uint32) error {
	return m.reconfigure(width, height, true)
}

func (m *Manager) reconfigure(width, height uint32, force bool) error {
	if m.released {
		return ErrReleased
	}
	if m.state == PermanentlyFailed {
		return fmt.Errorf("%w: rebind required", ErrConfigurationFailed)
	}
	if m.outstanding != nil {
		return ErrFrameOutstanding
	}

	if width == 0 || height == 0 {
		m.counters.ZeroArea++
		m.unconfigure()
		m.log.Debug("surface: zero area, unconfigured", "width", width, "height", height)
		return nil
	}
	m.lastW, m.lastH = width, height

	if !force && m.state == Configured && m.config.Width == width && m.config.Height == height {
		return nil
	}
	return m.apply(width, height)
}

func (m *Manager) apply(width, height uint32) error {
	cfg := Config{
		Width:       width,
		Height:      height,
		Format:      m.choice.format,
		PresentMode: m.choice.mode,
		AlphaMode:   m.choice.alpha,
	}
	dev := m.dc.GPUDevice()

	err := m.surface.Configure(dev, cfg.descriptor())
	if err != nil && !errors.Is(err, gpucore.ErrZeroArea) {
		m.counters.Retries++
		m.log.Warn("surface: configure rejected, retrying", "width", width, "height", height, "err", err)
		err = m.surface.Configure(dev, cfg.descriptor())
	}

	switch {
	case errors.Is(err, gpucore.ErrZeroArea):
		m.counters.ZeroArea++
		m.state = Unconfigured
		return nil
	case err != nil:
		m.state = PermanentlyFailed
		m.log.Error("surface: configuration failed", "width", width, "height", height, "err", err)
		return fmt.Errorf("%w: %dx%d: %w", ErrConfigurationFailed, width, height, err)
	}

	m.config = cfg
	m.state = Configured
	m.counters.Configures++
	m.log.Info("surface: configured",
		"width", width,
		"height", height,
		"format", cfg.Format,
		"present_mode", cfg.PresentMode)
	return nil
}

func (m *Manager) unconfigure() {
	if m.state == Configured || m.state == Lost {
		m.surface.Unconfigure()
	}
	m.state = Unconfigured
}

// AcquireFrame acquires the next presentable image.
func (m *Manager) AcquireFrame() (*Frame, error) {
	if m.released {
		return nil, ErrReleased
	}
	if m.outstanding != nil {
		return nil, ErrFrameOutstanding
	}
	if m.state != Configured {
		return nil, fmt.Errorf("%w: state %s", ErrNotConfigured, m.state)
	}

	tex, suboptimal, err := m.surface.AcquireTexture()
	if err != nil {
		return nil, m.acquireError(err)
	}

	view, err := tex.CreateView()
	if err != nil {
		m.surface.Discard(tex)
		return nil, fmt.Errorf("surface: create view: %w", err)
	}

	f := &Frame{
		m:          m,
		tex:        tex,
		view:       view,
		Suboptimal: suboptimal,
		Width:      m.config.Width,
		Height:     m.config.Height,
	}
	m.outstanding = f
	return f, nil
}

func (m *Manager) acquireError(err error) error {
	switch {
	case errors.Is(err, gpucore.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, gpucore.ErrOutdated):
		return fmt.Errorf("%w: %w", ErrOutdated, err)
	case errors.Is(err, gpucore.ErrLost):
		m.state = Lost
		m.log.Warn("surface: lost")
		return fmt.Errorf("%w: %w", ErrLost, err)
	default:
		return fmt.Errorf("surface: acquire: %w", err)
	}
}

// Rebind replaces the surface with one created for handle. It is the only
// way out of PermanentlyFailed. The new surface starts Unconfigured.
func (m *Manager) Rebind(handle gpucore.NativeHandle) error {
	if m.released {
		return ErrReleased
	}
	s, err := m.dc.CreateSurface(handle)
	if err != nil {
		return fmt.Errorf("surface: create: %w", err)
	}

	m.dropOutstanding()
	m.unconfigure()
	m.surface.Release()

	m.surface = s
	m.state = Unconfigured
	m.config = Config{}
	m.counters.Rebinds++
	if err := m.negotiate(); err != nil {
		m.state = PermanentlyFailed
		return err
	}
	m.log.Info("surface: rebound")
	return nil
}

func (m *Manager) dropOutstanding() {
	if m.outstanding != nil {
		m.outstanding.Drop()
	}
}

// Release drops any outstanding frame and destroys the surface.
func (m *Manager) Release() {
	if m.released {
		return
	}
	m.dropOutstanding()
	m.unconfigure()
	m.surface.Release()
	m.released = true
}

// Frame is one acquired image. It must be presented or dropped before the
// next AcquireFrame.
type Frame struct {
	m    *Manager
	tex  gpucore.SurfaceTexture
	view gpucore.TextureView
	done bool

	// Suboptimal reports that the image is usable but the surface should
	// be reconfigured before the next frame.
	Suboptimal bool

	Width  uint32
	Height uint32
}

// View returns the render attachment view of the image.
func (f *Frame) View() gpucore.TextureView { return f.view }

// Size returns the image size.
func (f *Frame) Size() (width, height uint32) { return f.Width, f.Height }

// Present queues the image for display.
func (f *Frame) Present() error {
	if f.done {
		return ErrFrameDone
	}
	f.done = true
	f.m.outstanding = nil

	err := f.m.surface.Present(f.tex)
	f.view.Release()
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gpucore.ErrOutdated):
		return fmt.Errorf("%w: %w", ErrOutdated, err)
	case errors.Is(err, gpucore.ErrLost):
		f.m.state = Lost
		return fmt.Errorf("%w: %w", ErrLost, err)
	default:
		return fmt.Errorf("surface: present: %w", err)
	}
}

// Drop returns the image without presenting it. Drop after Present does
// nothing.
func (f *Frame) Drop() {
	if f.done {
		return
	}
	f.done = true
	f.m.outstanding = nil
	f.view.Release()
	f.m.surface.Discard(f.tex)
}
