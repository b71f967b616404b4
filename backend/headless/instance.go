// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: MIT

package headless

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Errors specific to the headless backend.
var (
	ErrInvalidHandle     = errors.New("headless: invalid window handle")
	ErrNotConfigured     = errors.New("headless: surface not configured")
	ErrForeignObject     = errors.New("headless: object belongs to another instance")
	ErrUnsupportedFormat = errors.New("headless: unsupported format")
)

// AdapterSpec describes one simulated adapter.
type AdapterSpec struct {
	Info     gputypes.AdapterInfo
	Features gputypes.Features
	Limits   gputypes.Limits
	Caps     gpucore.SurfaceCapabilities

	// DeviceErr, when set, is returned by RequestDevice.
	DeviceErr error
}

// DefaultAdapter returns a CPU adapter with default limits that presents
// BGRA8 in Fifo, Mailbox and Immediate modes.
func DefaultAdapter() AdapterSpec {
	return AdapterSpec{
		Info: gputypes.AdapterInfo{
			Name:       "Headless Adapter",
			Vendor:     "cairn",
			DeviceType: gputypes.DeviceTypeCPU,
			Driver:     "headless",
			Backend:    gputypes.BackendEmpty,
		},
		Limits: gputypes.DefaultLimits(),
		Caps: gpucore.SurfaceCapabilities{
			Formats: []gputypes.TextureFormat{
				gputypes.TextureFormatBGRA8UnormSrgb,
				gputypes.TextureFormatBGRA8Unorm,
			},
			PresentModes: []gputypes.PresentMode{
				gputypes.PresentModeFifo,
				gputypes.PresentModeMailbox,
				gputypes.PresentModeImmediate,
			},
			AlphaModes: []gputypes.CompositeAlphaMode{
				gputypes.CompositeAlphaModeOpaque,
			},
		},
	}
}

// Option configures an Instance.
type Option func(*Instance)

// WithAdapters replaces the default adapter list.
func WithAdapters(specs ...AdapterSpec) Option {
	return func(i *Instance) {
		i.adapters = slices.Clone(specs)
	}
}

// WithLatency sets how many submissions may be in flight before the oldest
// completes on its own. Zero completes every submission immediately.
func WithLatency(n int) Option {
	return func(i *Instance) {
		if n >= 0 {
			i.latency = n
		}
	}
}

// Instance is an in-memory gpucore.Instance.
//
// All objects created from one Instance share its mutex, so the instance
// and its children are safe for concurrent use.
type Instance struct {
	mu       sync.Mutex
	adapters []AdapterSpec
	latency  int
	released bool
	events   []string
	surfaces []*Surface
	devices  []*Device
	views    int
}

// New creates an instance with one DefaultAdapter and a latency of two frames.
func New(opts ...Option) *Instance {
	i := &Instance{
		adapters: []AdapterSpec{DefaultAdapter()},
		latency:  2,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// record appends an event. The caller holds i.mu.
func (i *Instance) record(format string, args ...any) {
	i.events = append(i.events, fmt.Sprintf(format, args...))
}

// Events returns the recorded call log.
func (i *Instance) Events() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.events)
}

// Surfaces returns every surface created so far, oldest first.
func (i *Instance) Surfaces() []*Surface {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.surfaces)
}

// Devices returns every device created so far, oldest first.
func (i *Instance) Devices() []*Device {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.devices)
}

// LiveViews returns the number of texture views not yet released.
func (i *Instance) LiveViews() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.views
}

// Released reports whether Release was called.
func (i *Instance) Released() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.released
}

// CreateSurface implements gpucore.Instance.
func (i *Instance) CreateSurface(handle gpucore.NativeHandle) (gpucore.Surface, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.released {
		return nil, gpucore.ErrReleased
	}
	if handle.Window == 0 {
		return nil, ErrInvalidHandle
	}
	s := &Surface{inst: i, handle: handle, id: len(i.surfaces) + 1}
	i.surfaces = append(i.surfaces, s)
	i.record("surface.create id=%d", s.id)
	return s, nil
}

// RequestAdapter implements gpucore.Instance.
func (i *Instance) RequestAdapter(opts *gpucore.AdapterOptions) (gpucore.Adapter, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.released {
		return nil, gpucore.ErrReleased
	}
	if opts == nil {
		opts = &gpucore.AdapterOptions{}
	}

	var candidates []AdapterSpec
	for _, spec := range i.adapters {
		if opts.ForceFallbackAdapter && spec.Info.DeviceType != gputypes.DeviceTypeCPU {
			continue
		}
		if opts.CompatibleSurface != nil && len(spec.Caps.Formats) == 0 {
			continue
		}
		candidates = append(candidates, spec)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %d adapters, none compatible", gpucore.ErrNoAdapter, len(i.adapters))
	}

	chosen := candidates[0]
	want := preferredType(opts.PowerPreference)
	for _, spec := range candidates {
		if spec.Info.DeviceType == want {
			chosen = spec
			break
		}
	}

	i.record("adapter.request name=%q", chosen.Info.Name)
	return &Adapter{inst: i, spec: chosen}, nil
}

func preferredType(p gputypes.PowerPreference) gputypes.DeviceType {
	switch p {
	case gputypes.PowerPreferenceHighPerformance:
		return gputypes.DeviceTypeDiscreteGPU
	case gputypes.PowerPreferenceLowPower:
		return gputypes.DeviceTypeIntegratedGPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// Enumerate implements gpucore.Instance.
func (i *Instance) Enumerate() []gputypes.AdapterInfo {
	i.mu.Lock()
	defer i.mu.Unlock()
	infos := make([]gputypes.AdapterInfo, 0, len(i.adapters))
	for _, spec := range i.adapters {
		infos = append(infos, spec.Info)
	}
	return infos
}

// Release implements gpucore.Instance.
func (i *Instance) Release() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.released {
		return
	}
	i.released = true
	i.record("instance.release")
}

// Adapter is an in-memory gpucore.Adapter.
type Adapter struct {
	inst     *Instance
	spec     AdapterSpec
	released bool
}

// Info implements gpucore.Adapter.
func (a *Adapter) Info() gputypes.AdapterInfo { return a.spec.Info }

// Features implements gpucore.Adapter.
func (a *Adapter) Features() gputypes.Features { return a.spec.Features }

// Limits implements gpucore.Adapter.
func (a *Adapter) Limits() gputypes.Limits { return a.spec.Limits }

// RequestDevice implements gpucore.Adapter.
func (a *Adapter) RequestDevice(desc *gpucore.DeviceDescriptor) (gpucore.Device, error) {
	a.inst.mu.Lock()
	defer a.inst.mu.Unlock()
	if a.released {
		return nil, gpucore.ErrReleased
	}
	if a.spec.DeviceErr != nil {
		a.inst.record("device.create failed")
		return nil, a.spec.DeviceErr
	}
	if desc == nil {
		desc = &gpucore.DeviceDescriptor{}
	}
	if !a.spec.Features.ContainsAll(desc.RequiredFeatures) {
		return nil, fmt.Errorf("headless: adapter %q lacks required features", a.spec.Info.Name)
	}

	d := &Device{inst: a.inst, label: desc.Label}
	d.queue = &Queue{dev: d}
	a.inst.devices = append(a.inst.devices, d)
	a.inst.record("device.create label=%q", desc.Label)
	return d, nil
}

// SurfaceCapabilities implements gpucore.Adapter.
func (a *Adapter) SurfaceCapabilities(s gpucore.Surface) *gpucore.SurfaceCapabilities {
	hs, ok := s.(*Surface)
	if !ok || hs.inst != a.inst {
		return &gpucore.SurfaceCapabilities{}
	}
	return &gpucore.SurfaceCapabilities{
		Formats:      slices.Clone(a.spec.Caps.Formats),
		PresentModes: slices.Clone(a.spec.Caps.PresentModes),
		AlphaModes:   slices.Clone(a.spec.Caps.AlphaModes),
	}
}

// Release implements gpucore.Adapter.
func (a *Adapter) Release() {
	a.inst.mu.Lock()
	defer a.inst.mu.Unlock()
	if a.released {
		return
	}
	a.released = true
	a.inst.record("adapter.release")
}

// Backend registers the headless instance factory with the backend registry.
type Backend struct {
	opts []Option
}

func init() {
	Register()
}

// Register registers the headless backend, replacing an earlier
// registration, so that instances opened through the backend registry use
// opts.
func Register(opts ...Option) {
	backend.Register(backend.BackendHeadless, func() backend.Backend {
		return NewBackend(opts...)
	})
}

// NewBackend creates a backend whose instances use opts.
func NewBackend(opts ...Option) *Backend {
	return &Backend{opts: opts}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.BackendHeadless }

// Init implements backend.Backend.
func (b *Backend) Init() error { return nil }

// NewInstance implements backend.Backend.
func (b *Backend) NewInstance() (gpucore.Instance, error) {
	return New(b.opts...), nil
}
