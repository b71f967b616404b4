package headless

import (
	"errors"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Encoder errors.
var (
	ErrPassOpen        = errors.New("headless: render pass still open")
	ErrNoColor         = errors.New("headless: render pass has no color attachment")
	ErrEncoderClosed   = errors.New("headless: encoder finished or discarded")
	ErrPassEnded       = errors.New("headless: render pass already ended")
)

// DrawCall is one recorded Draw.
type DrawCall struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// PassRecord describes one ended render pass.
type PassRecord struct {
	Label      string
	Target     string
	ClearColor gputypes.Color
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	HasDepth   bool
	Viewport   [6]float32
	Scissor    [4]uint32
	Draws      []DrawCall
}

// Encoder is an in-memory gpucore.CommandEncoder.
type Encoder struct {
	dev    *Device
	label  string
	open   *RenderPass
	passes []PassRecord
	closed bool
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *Encoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) (gpucore.RenderPass, error) {
	e.dev.inst.mu.Lock()
	defer e.dev.inst.mu.Unlock()
	if e.closed {
		return nil, ErrEncoderClosed
	}
	if e.open != nil {
		return nil, ErrPassOpen
	}
	view, ok := desc.Color.(*TextureView)
	if !ok || view == nil {
		return nil, ErrNoColor
	}
	if view.released {
		return nil, gpucore.ErrReleased
	}
	if desc.Depth != nil {
		dv, ok := desc.Depth.(*TextureView)
		if !ok || dv.released {
			return nil, gpucore.ErrReleased
		}
	}

	e.open = &RenderPass{
		enc: e,
		rec: PassRecord{
			Label:      desc.Label,
			Target:     view.label,
			ClearColor: desc.ClearColor,
			LoadOp:     desc.LoadOp,
			StoreOp:    desc.StoreOp,
			HasDepth:   desc.Depth != nil,
		},
	}
	return e.open, nil
}

// Finish implements gpucore.CommandEncoder.
func (e *Encoder) Finish() (gpucore.CommandBuffer, error) {
	e.dev.inst.mu.Lock()
	defer e.dev.inst.mu.Unlock()
	if e.closed {
		return nil, ErrEncoderClosed
	}
	if e.open != nil {
		return nil, ErrPassOpen
	}
	e.closed = true
	e.dev.passes = append(e.dev.passes, e.passes...)
	return &CommandBuffer{dev: e.dev, label: e.label, passes: len(e.passes)}, nil
}

// Discard implements gpucore.CommandEncoder.
func (e *Encoder) Discard() {
	e.dev.inst.mu.Lock()
	defer e.dev.inst.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.open = nil
	e.dev.discarded++
}

// RenderPass is an in-memory gpucore.RenderPass.
type RenderPass struct {
	enc   *Encoder
	rec   PassRecord
	ended bool
}

// SetViewport implements gpucore.RenderPass.
func (p *RenderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.rec.Viewport = [6]float32{x, y, width, height, minDepth, maxDepth}
}

// SetScissorRect implements gpucore.RenderPass.
func (p *RenderPass) SetScissorRect(x, y, width, height uint32) {
	p.rec.Scissor = [4]uint32{x, y, width, height}
}

// Draw implements gpucore.RenderPass.
func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.ended {
		return
	}
	p.rec.Draws = append(p.rec.Draws, DrawCall{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

// Raw implements gpucore.RenderPass. It returns the pass itself.
func (p *RenderPass) Raw() any { return p }

// Record returns what has been recorded so far.
func (p *RenderPass) Record() PassRecord {
	r := p.rec
	r.Draws = slices.Clone(p.rec.Draws)
	return r
}

// End implements gpucore.RenderPass.
func (p *RenderPass) End() error {
	e := p.enc
	e.dev.inst.mu.Lock()
	defer e.dev.inst.mu.Unlock()
	if p.ended || e.open != p {
		return ErrPassEnded
	}
	p.ended = true
	e.open = nil
	e.passes = append(e.passes, p.rec)
	return nil
}

// CommandBuffer is an in-memory gpucore.CommandBuffer.
type CommandBuffer struct {
	dev       *Device
	label     string
	passes    int
	submitted bool
	released  bool
}

// Passes returns the number of render passes recorded in the buffer.
func (b *CommandBuffer) Passes() int { return b.passes }

// Release implements gpucore.CommandBuffer.
func (b *CommandBuffer) Release() {
	b.dev.inst.mu.Lock()
	defer b.dev.inst.mu.Unlock()
	b.released = true
}
