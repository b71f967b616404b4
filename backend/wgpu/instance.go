package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Instance wraps *wgpu.Instance.
type Instance struct {
	inst *wgpu.Instance
}

var _ gpucore.Instance = (*Instance)(nil)

// Raw returns the wrapped instance.
func (i *Instance) Raw() *wgpu.Instance { return i.inst }

// CreateSurface implements gpucore.Instance.
func (i *Instance) CreateSurface(handle gpucore.NativeHandle) (gpucore.Surface, error) {
	s, err := i.inst.CreateSurface(handle.Display, handle.Window)
	if err != nil {
		return nil, mapError(err)
	}
	return &Surface{s: s}, nil
}

// RequestAdapter implements gpucore.Instance.
func (i *Instance) RequestAdapter(opts *gpucore.AdapterOptions) (gpucore.Adapter, error) {
	var wopts *wgpu.RequestAdapterOptions
	if opts != nil {
		wopts = &wgpu.RequestAdapterOptions{
			PowerPreference:      opts.PowerPreference,
			ForceFallbackAdapter: opts.ForceFallbackAdapter,
		}
		if opts.CompatibleSurface != nil {
			s, ok := opts.CompatibleSurface.(*Surface)
			if !ok {
				return nil, ErrForeignObject
			}
			wopts.CompatibleSurface = s.s
		}
	}
	a, err := i.inst.RequestAdapter(wopts)
	if err != nil {
		return nil, mapError(err)
	}
	if a == nil {
		return nil, gpucore.ErrNoAdapter
	}
	return &Adapter{a: a}, nil
}

// Enumerate implements gpucore.Instance. wgpu has no enumeration call, so
// it requests one adapter per power preference and the fallback adapter,
// and reports each distinct one.
func (i *Instance) Enumerate() []gputypes.AdapterInfo {
	candidates := []wgpu.RequestAdapterOptions{
		{PowerPreference: gputypes.PowerPreferenceHighPerformance},
		{PowerPreference: gputypes.PowerPreferenceLowPower},
		{ForceFallbackAdapter: true},
	}
	var infos []gputypes.AdapterInfo
	seen := make(map[string]bool)
	for _, p := range candidates {
		a, err := i.inst.RequestAdapter(&p)
		if err != nil || a == nil {
			continue
		}
		info := a.Info()
		a.Release()
		key := fmt.Sprintf("%s/%d/%d", info.Name, info.DeviceID, info.Backend)
		if seen[key] {
			continue
		}
		seen[key] = true
		infos = append(infos, info)
	}
	return infos
}

// Release implements gpucore.Instance.
func (i *Instance) Release() { i.inst.Release() }

// Adapter wraps *wgpu.Adapter.
type Adapter struct {
	a *wgpu.Adapter
}

var _ gpucore.Adapter = (*Adapter)(nil)

// Info implements gpucore.Adapter.
func (a *Adapter) Info() gputypes.AdapterInfo { return a.a.Info() }

// Features implements gpucore.Adapter.
func (a *Adapter) Features() gputypes.Features { return a.a.Features() }

// Limits implements gpucore.Adapter.
func (a *Adapter) Limits() gputypes.Limits { return a.a.Limits() }

// RequestDevice implements gpucore.Adapter.
func (a *Adapter) RequestDevice(desc *gpucore.DeviceDescriptor) (gpucore.Device, error) {
	var wdesc *wgpu.DeviceDescriptor
	if desc != nil {
		wdesc = &wgpu.DeviceDescriptor{
			Label:            desc.Label,
			RequiredFeatures: desc.RequiredFeatures,
			RequiredLimits:   desc.RequiredLimits,
		}
	}
	d, err := a.a.RequestDevice(wdesc)
	if err != nil {
		return nil, mapError(err)
	}
	return &Device{d: d}, nil
}

// SurfaceCapabilities implements gpucore.Adapter. It returns nil for a
// surface from another backend.
func (a *Adapter) SurfaceCapabilities(s gpucore.Surface) *gpucore.SurfaceCapabilities {
	ws, ok := s.(*Surface)
	if !ok {
		return nil
	}
	caps := a.a.GetSurfaceCapabilities(ws.s)
	if caps == nil {
		return nil
	}
	return &gpucore.SurfaceCapabilities{
		Formats:      caps.Formats,
		PresentModes: caps.PresentModes,
		AlphaModes:   caps.AlphaModes,
	}
}

// Release implements gpucore.Adapter.
func (a *Adapter) Release() { a.a.Release() }
