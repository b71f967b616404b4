package backend

import (
	"errors"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered
	// or its factory declined to produce one.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when NewInstance is called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// BackendWGPU is the gogpu/wgpu backend (Vulkan, Metal, DX12, GLES, software).
	BackendWGPU = "wgpu"
	// BackendHeadless is the in-memory backend used for tests and dry runs.
	BackendHeadless = "headless"
)

// Backend produces GPU instances for the frame orchestration core.
//
// Backends must be registered via Register() and are selected via
// Get(), Default() or Open().
type Backend interface {
	// Name returns the backend identifier (e.g., "wgpu", "headless").
	Name() string

	// Init prepares process-wide backend state. It is called once before
	// the first NewInstance.
	Init() error

	// NewInstance creates a new GPU instance.
	NewInstance() (gpucore.Instance, error)
}
