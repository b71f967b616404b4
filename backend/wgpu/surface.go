package wgpu

import (
	"github.com/gogpu/wgpu"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Surface wraps *wgpu.Surface.
type Surface struct {
	s *wgpu.Surface
}

var _ gpucore.Surface = (*Surface)(nil)

// Configure implements gpucore.Surface.
func (s *Surface) Configure(d gpucore.Device, cfg *gpucore.SurfaceConfiguration) error {
	dev, ok := d.(*Device)
	if !ok {
		return ErrForeignObject
	}
	return mapError(s.s.Configure(dev.d, &wgpu.SurfaceConfiguration{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       cfg.Usage,
		PresentMode: cfg.PresentMode,
		AlphaMode:   cfg.AlphaMode,
	}))
}

// Unconfigure implements gpucore.Surface.
func (s *Surface) Unconfigure() { s.s.Unconfigure() }

// AcquireTexture implements gpucore.Surface.
func (s *Surface) AcquireTexture() (gpucore.SurfaceTexture, bool, error) {
	st, suboptimal, err := s.s.GetCurrentTexture()
	if err != nil {
		return nil, false, mapError(err)
	}
	return &SurfaceTexture{st: st}, suboptimal, nil
}

// Present implements gpucore.Surface.
func (s *Surface) Present(tex gpucore.SurfaceTexture) error {
	st, ok := tex.(*SurfaceTexture)
	if !ok {
		return ErrForeignObject
	}
	return mapError(s.s.Present(st.st))
}

// Discard implements gpucore.Surface. wgpu tracks the acquired texture
// itself.
func (s *Surface) Discard(gpucore.SurfaceTexture) { s.s.DiscardTexture() }

// Release implements gpucore.Surface.
func (s *Surface) Release() { s.s.Release() }

// SurfaceTexture wraps *wgpu.SurfaceTexture.
type SurfaceTexture struct {
	st *wgpu.SurfaceTexture
}

// CreateView implements gpucore.SurfaceTexture.
func (t *SurfaceTexture) CreateView() (gpucore.TextureView, error) {
	v, err := t.st.CreateView(nil)
	if err != nil {
		return nil, mapError(err)
	}
	return &TextureView{v: v}, nil
}
