// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: MIT

// Package device owns the GPU adapter, logical device and command queue.
//
// A [Context] is created once per process run by [Initialize] and shared by
// reference with the surface manager and render pass builder. Only one
// Context may be live at a time.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Errors returned by Initialize and Context methods.
var (
	// ErrNoSuitableAdapter means no adapter satisfied the requirements.
	ErrNoSuitableAdapter = errors.New("device: no suitable adapter")

	// ErrDeviceCreationFailed means the driver rejected device creation.
	ErrDeviceCreationFailed = errors.New("device: device creation failed")

	// ErrAlreadyInitialized means another Context is still live.
	ErrAlreadyInitialized = errors.New("device: context already initialized")

	// ErrReleased means the Context was used after Release.
	ErrReleased = errors.New("device: context released")

	// ErrDrainTimeout means WaitIdle did not finish before the context deadline.
	ErrDrainTimeout = errors.New("device: drain timed out")
)

// live guards the one-context-per-process rule.
var live atomic.Bool

// Context is the live GPU device context.
type Context struct {
	inst    gpucore.Instance
	adapter gpucore.Adapter
	device  gpucore.Device
	queue   gpucore.Queue

	info     gputypes.AdapterInfo
	features gputypes.Features
	limits   gputypes.Limits
	format   atomic.Uint32

	log *slog.Logger

	lost       atomic.Bool
	lostMu     sync.Mutex
	lostReason error

	// drain is closed when the last WaitIdle call on the driver returns.
	drainMu sync.Mutex
	drain   chan struct{}

	releaseOnce sync.Once
	released    atomic.Bool
}

// Initialize selects an adapter meeting req, creates a logical device and
// its queue, and returns the Context owning them.
//
// On success the Context owns inst and releases it with everything else.
// On failure inst stays with the caller.
func Initialize(inst gpucore.Instance, req Requirements, opts ...Option) (*Context, error) {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	if !live.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}
	initialized := false
	defer func() {
		if !initialized {
			live.Store(false)
		}
	}()

	adapter, err := inst.RequestAdapter(&gpucore.AdapterOptions{
		PowerPreference:      req.PowerPreference,
		ForceFallbackAdapter: req.ForceFallbackAdapter,
		CompatibleSurface:    o.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSuitableAdapter, err)
	}
	if adapter == nil {
		return nil, ErrNoSuitableAdapter
	}

	info := adapter.Info()
	if err := req.check(adapter.Features(), adapter.Limits()); err != nil {
		adapter.Release()
		return nil, fmt.Errorf("%w: %q: %w", ErrNoSuitableAdapter, info.Name, err)
	}

	dev, err := adapter.RequestDevice(&gpucore.DeviceDescriptor{
		Label:            req.Label,
		RequiredFeatures: req.RequiredFeatures,
		RequiredLimits:   adapter.Limits(),
	})
	if err != nil {
		adapter.Release()
		return nil, fmt.Errorf("%w: %w", ErrDeviceCreationFailed, err)
	}
	queue := dev.Queue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		return nil, fmt.Errorf("%w: device has no queue", ErrDeviceCreationFailed)
	}

	c := &Context{
		inst:     inst,
		adapter:  adapter,
		device:   dev,
		queue:    queue,
		info:     info,
		features: adapter.Features(),
		limits:   adapter.Limits(),
		log:      o.log,
	}
	if ln, ok := dev.(gpucore.LossNotifier); ok {
		ln.SetLostCallback(c.NotifyLost)
	}

	o.log.Info("device: adapter selected",
		"name", info.Name,
		"type", info.DeviceType,
		"backend", info.Backend,
		"driver", info.Driver)

	initialized = true
	return c, nil
}

// Info returns the adapter snapshot taken at initialization.
func (c *Context) Info() gputypes.AdapterInfo { return c.info }

// Features returns the adapter's features.
func (c *Context) Features() gputypes.Features { return c.features }

// Limits returns the adapter's limits.
func (c *Context) Limits() gputypes.Limits { return c.limits }

// Instance returns the backend instance.
func (c *Context) Instance() gpucore.Instance { return c.inst }

// GPUAdapter returns the adapter handle.
func (c *Context) GPUAdapter() gpucore.Adapter { return c.adapter }

// GPUDevice returns the logical device.
func (c *Context) GPUDevice() gpucore.Device { return c.device }

// GPUQueue returns the command queue.
func (c *Context) GPUQueue() gpucore.Queue { return c.queue }

// SetSurfaceFormat records the format the surface manager chose, reported
// through SurfaceFormat.
func (c *Context) SetSurfaceFormat(f gputypes.TextureFormat) {
	c.format.Store(uint32(f))
}

// CreateSurface creates a surface for handle on the Context's instance.
func (c *Context) CreateSurface(handle gpucore.NativeHandle) (gpucore.Surface, error) {
	if c.released.Load() {
		return nil, ErrReleased
	}
	return c.inst.CreateSurface(handle)
}

// NotifyLost records device loss. Safe to call from any goroutine; only
// the first reason is kept.
func (c *Context) NotifyLost(reason error) {
	if reason == nil {
		reason = gpucore.ErrDeviceLost
	}
	c.lostMu.Lock()
	first := c.lostReason == nil
	if first {
		c.lostReason = reason
	}
	c.lostMu.Unlock()
	c.lost.Store(true)

	if first {
		c.log.Error("device: lost", "reason", reason)
	}
}

// Lost reports whether the device was lost and why.
func (c *Context) Lost() (bool, error) {
	if !c.lost.Load() {
		return false, nil
	}
	c.lostMu.Lock()
	defer c.lostMu.Unlock()
	return true, c.lostReason
}

// WaitIdle blocks until all submitted work has finished or ctx is done.
// In-flight work is never discarded; on timeout the wait continues in the
// background and ErrDrainTimeout is returned.
func (c *Context) WaitIdle(ctx context.Context) error {
	if c.released.Load() {
		return ErrReleased
	}
	done := make(chan error, 1)
	finished := make(chan struct{})
	c.drainMu.Lock()
	c.drain = finished
	c.drainMu.Unlock()
	go func() {
		done <- c.device.WaitIdle()
		close(finished)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrDrainTimeout, ctx.Err())
	}
}

// Release destroys the queue, device, adapter and instance in reverse
// acquisition order. If a WaitIdle is still running on the driver, the
// objects are destroyed when it returns. Release is idempotent.
func (c *Context) Release() {
	c.releaseOnce.Do(func() {
		c.released.Store(true)

		c.drainMu.Lock()
		drain := c.drain
		c.drainMu.Unlock()
		if drain != nil {
			select {
			case <-drain:
			default:
				c.log.Warn("device: release deferred until the drain finishes")
				go func() {
					<-drain
					c.release()
				}()
				return
			}
		}
		c.release()
	})
}

func (c *Context) release() {
	c.device.Release()
	c.adapter.Release()
	live.Store(false)
	c.inst.Release()
	c.log.Debug("device: released")
}

// Released reports whether Release was called.
func (c *Context) Released() bool { return c.released.Load() }

// gpucontext.DeviceProvider implementation.

var _ gpucontext.DeviceProvider = (*Context)(nil)

// Device implements gpucontext.DeviceProvider.
func (c *Context) Device() gpucontext.Device { return c.device }

// Queue implements gpucontext.DeviceProvider.
func (c *Context) Queue() gpucontext.Queue { return c.queue }

// Adapter implements gpucontext.DeviceProvider.
func (c *Context) Adapter() gpucontext.Adapter { return c.adapter }

// SurfaceFormat implements gpucontext.DeviceProvider.
func (c *Context) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormat(c.format.Load())
}

// AdapterInfo implements gpucontext.DeviceProvider.
func (c *Context) AdapterInfo() gpucontext.AdapterInfo {
	t := gpucontext.AdapterTypeUnknown
	switch c.info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterInfo{Name: c.info.Name, Type: t}
}
