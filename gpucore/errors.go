package gpucore

import "errors"

// Presentation and device failures reported by backends.
var (
	// ErrTimeout means no texture became available within the
	// presentation engine's bound.
	ErrTimeout = errors.New("gpucore: surface acquire timed out")

	// ErrOutdated means the surface no longer matches the window and must
	// be reconfigured.
	ErrOutdated = errors.New("gpucore: surface outdated")

	// ErrLost means the surface must be fully reconfigured before use.
	ErrLost = errors.New("gpucore: surface lost")

	// ErrZeroArea is returned by Configure for a zero width or height.
	ErrZeroArea = errors.New("gpucore: surface width and height must be non-zero")

	// ErrDeviceLost means the logical device is gone.
	ErrDeviceLost = errors.New("gpucore: device lost")

	// ErrOutOfMemory means the device ran out of memory.
	ErrOutOfMemory = errors.New("gpucore: out of memory")

	// ErrNoAdapter means no adapter matched the request.
	ErrNoAdapter = errors.New("gpucore: no adapter available")

	// ErrReleased means the object was used after Release.
	ErrReleased = errors.New("gpucore: object released")
)
