package backend

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// priority is the selection order for Default: the first listed name that
// is registered wins.
var priority = []string{BackendWGPU, BackendHeadless}

var registry = gpucontext.NewRegistry[Backend](gpucontext.WithPriority(priority...))

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory func() Backend) {
	registry.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Available returns the registered backend names, highest priority first.
func Available() []string {
	return registry.Available()
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Get returns a backend by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	return registry.Get(name)
}

// Default returns the best available backend based on priority.
// Returns nil if no backends are registered.
func Default() Backend {
	return registry.Best()
}

// DefaultName returns the name Default would select, or "" if no backends
// are registered.
func DefaultName() string {
	return registry.BestName()
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// Open initializes the named backend and creates an instance from it.
// An empty name selects Default().
func Open(name string) (gpucore.Instance, error) {
	var b Backend
	if name == "" {
		b = Default()
	} else {
		b = Get(name)
	}
	if b == nil {
		if name == "" {
			return nil, ErrBackendNotAvailable
		}
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}

	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("backend: init %s: %w", b.Name(), err)
	}

	inst, err := b.NewInstance()
	if err != nil {
		return nil, fmt.Errorf("backend: %s instance: %w", b.Name(), err)
	}
	return inst, nil
}
