package render

import (
	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Command records itself into a render pass.
type Command interface {
	Encode(pass gpucore.RenderPass) error
}

// Resource is a GPU object a command depends on.
type Resource interface {
	// Valid reports whether the resource can still be used.
	Valid() bool
	Label() string
}

// Referencer is implemented by commands that depend on resources.
type Referencer interface {
	References() []Resource
}

// DrawFunc adapts a function to Command.
type DrawFunc func(pass gpucore.RenderPass) error

// Encode implements Command.
func (f DrawFunc) Encode(pass gpucore.RenderPass) error { return f(pass) }

// Draw is a non-indexed draw call.
type Draw struct {
	Vertices      uint32
	Instances     uint32
	FirstVertex   uint32
	FirstInstance uint32

	// Uses lists resources bound for this draw.
	Uses []Resource
}

// Encode implements Command.
func (d Draw) Encode(pass gpucore.RenderPass) error {
	instances := d.Instances
	if instances == 0 {
		instances = 1
	}
	pass.Draw(d.Vertices, instances, d.FirstVertex, d.FirstInstance)
	return nil
}

// References implements Referencer.
func (d Draw) References() []Resource { return d.Uses }

// Batch is one frame's ordered draw commands.
type Batch struct {
	Commands []Command

	// ClearColor overrides the builder's clear color when set.
	ClearColor *gputypes.Color

	consumed bool
}

// NewBatch returns a batch holding cmds.
func NewBatch(cmds ...Command) *Batch {
	return &Batch{Commands: cmds}
}

// Add appends commands.
func (b *Batch) Add(cmds ...Command) *Batch {
	b.Commands = append(b.Commands, cmds...)
	return b
}

// WithClear sets the clear color.
func (b *Batch) WithClear(c gputypes.Color) *Batch {
	b.ClearColor = &c
	return b
}

// Len returns the number of commands. A nil batch has none.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Commands)
}

// Consumed reports whether the batch was handed to Encode.
func (b *Batch) Consumed() bool { return b != nil && b.consumed }
