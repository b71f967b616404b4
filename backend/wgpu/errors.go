package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// ErrForeignObject means an object from another backend was passed in.
var ErrForeignObject = errors.New("wgpu: object does not belong to this backend")

// mapError wraps driver errors with the matching gpucore sentinel. The
// driver error stays in the chain.
func mapError(err error) error {
	var sentinel error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hal.ErrNotReady), errors.Is(err, wgpu.ErrTimeout):
		sentinel = gpucore.ErrTimeout
	case errors.Is(err, wgpu.ErrSurfaceOutdated):
		sentinel = gpucore.ErrOutdated
	case errors.Is(err, wgpu.ErrSurfaceLost):
		sentinel = gpucore.ErrLost
	case errors.Is(err, hal.ErrZeroArea):
		sentinel = gpucore.ErrZeroArea
	case errors.Is(err, wgpu.ErrDeviceLost):
		sentinel = gpucore.ErrDeviceLost
	case errors.Is(err, wgpu.ErrOutOfMemory):
		sentinel = gpucore.ErrOutOfMemory
	case errors.Is(err, wgpu.ErrNoAdapters):
		sentinel = gpucore.ErrNoAdapter
	case errors.Is(err, wgpu.ErrReleased):
		sentinel = gpucore.ErrReleased
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
