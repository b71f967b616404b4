package backend_test

import (
	"errors"
	"testing"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
)

type fakeBackend struct{ name string }

func (b fakeBackend) Name() string { return b.name }
func (b fakeBackend) Init() error { return nil }
func (b fakeBackend) NewInstance() (gpucore.Instance, error) { return nil, errors.New("fake") }

func register(t *testing.T, name string) {
	t.Helper()
	backend.Register(name, func() backend.Backend { return fakeBackend{name} })
	t.Cleanup(func() { backend.Unregister(name) })
}

func TestPriorityOrder(t *testing.T) {
	if backend.Default() != nil || backend.DefaultName() != "" {
		t.Fatal("Default() with nothing registered is not nil")
	}

	register(t, backend.BackendHeadless)
	if got := backend.DefaultName(); got != backend.BackendHeadless {
		t.Errorf("DefaultName() = %q, want headless when it is the only backend", got)
	}

	register(t, backend.BackendWGPU)
	if got := backend.DefaultName(); got != backend.BackendWGPU {
		t.Errorf("DefaultName() = %q, want wgpu", got)
	}
	if got := backend.Default().Name(); got != backend.BackendWGPU {
		t.Errorf("Default().Name() = %q", got)
	}
	names := backend.Available()
	if len(names) != 2 || names[0] != backend.BackendWGPU || names[1] != backend.BackendHeadless {
		t.Errorf("Available() = %v", names)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := backend.Open("nosuch"); !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("Open() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenInstanceError(t *testing.T) {
	register(t, "fake")
	if _, err := backend.Open("fake"); err == nil {
		t.Error("Open() error = nil")
	}
}
