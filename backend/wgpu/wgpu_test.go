package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not ready", hal.ErrNotReady, gpucore.ErrTimeout},
		{"timeout", wgpu.ErrTimeout, gpucore.ErrTimeout},
		{"outdated", wgpu.ErrSurfaceOutdated, gpucore.ErrOutdated},
		{"lost", fmt.Errorf("vulkan: %w", wgpu.ErrSurfaceLost), gpucore.ErrLost},
		{"zero area", hal.ErrZeroArea, gpucore.ErrZeroArea},
		{"device lost", wgpu.ErrDeviceLost, gpucore.ErrDeviceLost},
		{"oom", wgpu.ErrOutOfMemory, gpucore.ErrOutOfMemory},
		{"no adapters", wgpu.ErrNoAdapters, gpucore.ErrNoAdapter},
		{"released", wgpu.ErrReleased, gpucore.ErrReleased},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("mapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("mapError(%v) dropped the driver error", tt.err)
			}
		})
	}

	if mapError(nil) != nil {
		t.Error("mapError(nil) != nil")
	}
	other := errors.New("validation failed")
	if got := mapError(other); got != other {
		t.Errorf("mapError(other) = %v, want it unchanged", got)
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendWGPU) {
		t.Fatal("wgpu backend not registered")
	}
	if got := backend.Available()[0]; got != backend.BackendWGPU {
		t.Errorf("Available()[0] = %q, want wgpu first", got)
	}
	b := backend.Get(backend.BackendWGPU)
	if b.Name() != backend.BackendWGPU {
		t.Errorf("Name() = %q", b.Name())
	}
	b.(*Backend).SetLogger(slog.New(slog.DiscardHandler))
}

func TestNewInstanceBeforeInit(t *testing.T) {
	if _, err := NewBackend().NewInstance(); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("NewInstance() error = %v, want ErrNotInitialized", err)
	}
}

func TestBackendOptions(t *testing.T) {
	b := NewBackend(WithBackends(wgpu.BackendsPrimary), WithDebug())
	if b.backends != wgpu.BackendsPrimary || b.flags == 0 {
		t.Errorf("options not applied: backends=%v flags=%v", b.backends, b.flags)
	}
}

type foreign struct{}

func (foreign) Release() {}

type foreignSurface struct{ gpucore.Surface }
type foreignDevice struct{ gpucore.Device }

func TestForeignObjects(t *testing.T) {
	if err := (&Surface{}).Configure(foreignDevice{}, &gpucore.SurfaceConfiguration{}); !errors.Is(err, ErrForeignObject) {
		t.Errorf("Configure() error = %v", err)
	}
	if err := (&Surface{}).Present(nil); !errors.Is(err, ErrForeignObject) {
		t.Errorf("Present() error = %v", err)
	}
	if err := (&Queue{}).Submit(foreign{}); !errors.Is(err, ErrForeignObject) {
		t.Errorf("Submit() error = %v", err)
	}
	if _, err := (&CommandEncoder{}).BeginRenderPass(&gpucore.RenderPassDescriptor{Color: foreign{}}); !errors.Is(err, ErrForeignObject) {
		t.Errorf("BeginRenderPass() error = %v", err)
	}
	if caps := (&Adapter{}).SurfaceCapabilities(foreignSurface{}); caps != nil {
		t.Errorf("SurfaceCapabilities() = %+v, want nil", caps)
	}
	if _, err := (&Instance{}).RequestAdapter(&gpucore.AdapterOptions{CompatibleSurface: foreignSurface{}}); !errors.Is(err, ErrForeignObject) {
		t.Errorf("RequestAdapter() error = %v", err)
	}
}

func TestSubmittedBufferNotReleased(t *testing.T) {
	cb := &CommandBuffer{submitted: true}
	cb.Release()
}
