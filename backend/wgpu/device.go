package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Device wraps *wgpu.Device.
type Device struct {
	d *wgpu.Device
}

var _ gpucore.Device = (*Device)(nil)

// Raw returns the wrapped device, for callers that create pipelines and
// buffers themselves.
func (d *Device) Raw() *wgpu.Device { return d.d }

// Queue implements gpucore.Device. It returns nil when the device has no
// queue.
func (d *Device) Queue() gpucore.Queue {
	q := d.d.Queue()
	if q == nil {
		return nil
	}
	return &Queue{q: q}
}

// CreateCommandEncoder implements gpucore.Device.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	enc, err := d.d.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, mapError(err)
	}
	return &CommandEncoder{enc: enc}, nil
}

// CreateDepthTexture implements gpucore.Device.
func (d *Device) CreateDepthTexture(width, height uint32, format gputypes.TextureFormat) (gpucore.TextureView, error) {
	if !format.HasDepth() {
		return nil, fmt.Errorf("wgpu: %s is not a depth format", format)
	}
	tex, err := d.d.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "depth",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, mapError(err)
	}
	view, err := d.d.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return nil, mapError(err)
	}
	return &TextureView{v: view, tex: tex}, nil
}

// WaitIdle implements gpucore.Device.
func (d *Device) WaitIdle() error { return mapError(d.d.WaitIdle()) }

// Release implements gpucore.Device.
func (d *Device) Release() { d.d.Release() }

// Queue wraps *wgpu.Queue.
type Queue struct {
	q *wgpu.Queue
}

// Submit implements gpucore.Queue. Submitted buffers belong to the queue.
func (q *Queue) Submit(buffers ...gpucore.CommandBuffer) error {
	raw := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok {
			return ErrForeignObject
		}
		raw = append(raw, cb.cb)
	}
	if _, err := q.q.Submit(raw...); err != nil {
		return mapError(err)
	}
	for _, b := range buffers {
		b.(*CommandBuffer).submitted = true
	}
	return nil
}

// TextureView wraps *wgpu.TextureView. Views of depth textures own the
// texture too.
type TextureView struct {
	v   *wgpu.TextureView
	tex *wgpu.Texture
}

// Raw returns the wrapped view.
func (v *TextureView) Raw() *wgpu.TextureView { return v.v }

// Release implements gpucore.TextureView.
func (v *TextureView) Release() {
	v.v.Release()
	if v.tex != nil {
		v.tex.Release()
	}
}
