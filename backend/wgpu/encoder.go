package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// CommandEncoder wraps *wgpu.CommandEncoder.
type CommandEncoder struct {
	enc *wgpu.CommandEncoder
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *CommandEncoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) (gpucore.RenderPass, error) {
	color, ok := desc.Color.(*TextureView)
	if !ok {
		return nil, ErrForeignObject
	}
	wdesc := &wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       color.v,
			LoadOp:     desc.LoadOp,
			StoreOp:    desc.StoreOp,
			ClearValue: desc.ClearColor,
		}},
	}
	if desc.Depth != nil {
		depth, ok := desc.Depth.(*TextureView)
		if !ok {
			return nil, ErrForeignObject
		}
		wdesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth.v,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: desc.DepthClear,
		}
	}

	pass, err := e.enc.BeginRenderPass(wdesc)
	if err != nil {
		return nil, mapError(err)
	}
	return &RenderPass{p: pass}, nil
}

// Finish implements gpucore.CommandEncoder.
func (e *CommandEncoder) Finish() (gpucore.CommandBuffer, error) {
	cb, err := e.enc.Finish()
	if err != nil {
		return nil, mapError(err)
	}
	return &CommandBuffer{cb: cb}, nil
}

// Discard implements gpucore.CommandEncoder.
func (e *CommandEncoder) Discard() { e.enc.DiscardEncoding() }

// RenderPass wraps *wgpu.RenderPassEncoder.
type RenderPass struct {
	p *wgpu.RenderPassEncoder
}

// SetViewport implements gpucore.RenderPass.
func (r *RenderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	r.p.SetViewport(x, y, width, height, minDepth, maxDepth)
}

// SetScissorRect implements gpucore.RenderPass.
func (r *RenderPass) SetScissorRect(x, y, width, height uint32) {
	r.p.SetScissorRect(x, y, width, height)
}

// Draw implements gpucore.RenderPass.
func (r *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.p.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// Raw implements gpucore.RenderPass. It returns the *wgpu.RenderPassEncoder
// so commands can set pipelines and bind groups.
func (r *RenderPass) Raw() any { return r.p }

// End implements gpucore.RenderPass.
func (r *RenderPass) End() error { return mapError(r.p.End()) }

// CommandBuffer wraps *wgpu.CommandBuffer.
type CommandBuffer struct {
	cb        *wgpu.CommandBuffer
	submitted bool
}

// Release implements gpucore.CommandBuffer. Buffers that were submitted
// belong to the queue and are left alone.
func (b *CommandBuffer) Release() {
	if b.submitted {
		return
	}
	b.cb.Release()
}
