package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Errors returned by Builder.
var (
	// ErrEncoding matches every *EncodingError.
	ErrEncoding = errors.New("render: encoding failed")

	// ErrInvalidResource means a referenced resource was invalid or destroyed.
	ErrInvalidResource = errors.New("render: invalid resource")

	// ErrBatchConsumed means the batch was already encoded once.
	ErrBatchConsumed = errors.New("render: batch already consumed")

	// ErrNoTarget means the target has no view or a zero size.
	ErrNoTarget = errors.New("render: target has no view")
)

// EncodingError reports which command failed to encode.
type EncodingError struct {
	Index    int    // command index in the batch
	Resource string // label of the offending resource, if any
	Err      error
}

func (e *EncodingError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("render: command %d: resource %q: %v", e.Index, e.Resource, e.Err)
	}
	return fmt.Sprintf("render: command %d: %v", e.Index, e.Err)
}

// Unwrap returns the cause.
func (e *EncodingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEncoding.
func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// DefaultClearColor is the dark blue every frame starts from.
var DefaultClearColor = gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// Target is what a frame is rendered into.
type Target interface {
	View() gpucore.TextureView
	Size() (width, height uint32)
}

// DeviceSource provides the logical device. *device.Context implements it.
type DeviceSource interface {
	GPUDevice() gpucore.Device
}

// Builder encodes batches into command buffers.
type Builder struct {
	dev   DeviceSource
	label string
	clear gputypes.Color
	log   *slog.Logger

	depthFormat gputypes.TextureFormat
	depth       gpucore.TextureView
	depthW      uint32
	depthH      uint32
}

// Option configures a Builder.
type Option func(*Builder)

// WithClearColor sets the default clear color.
func WithClearColor(c gputypes.Color) Option {
	return func(b *Builder) { b.clear = c }
}

// WithDepth attaches a depth texture of the given format to every pass.
// The texture follows the target size.
func WithDepth(format gputypes.TextureFormat) Option {
	return func(b *Builder) { b.depthFormat = format }
}

// WithLabel sets the debug label of encoders and passes.
func WithLabel(label string) Option {
	return func(b *Builder) { b.label = label }
}

// WithLogger sets the builder's logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBuilder creates a builder recording on dev's device.
func NewBuilder(dev DeviceSource, opts ...Option) *Builder {
	b := &Builder{
		dev:   dev,
		label: "frame",
		clear: DefaultClearColor,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Encode records batch into a single render pass on target and returns the
// finished command buffer. A nil batch encodes a cleared frame.
func (b *Builder) Encode(target Target, batch *Batch) (gpucore.CommandBuffer, error) {
	if batch == nil {
		batch = &Batch{}
	}
	if batch.consumed {
		return nil, ErrBatchConsumed
	}
	batch.consumed = true

	view := target.View()
	width, height := target.Size()
	if view == nil || width == 0 || height == 0 {
		return nil, ErrNoTarget
	}

	if err := validate(batch); err != nil {
		return nil, err
	}

	depth, err := b.depthView(width, height)
	if err != nil {
		return nil, err
	}

	enc, err := b.dev.GPUDevice().CreateCommandEncoder(b.label)
	if err != nil {
		return nil, fmt.Errorf("render: create encoder: %w", err)
	}

	color := b.clear
	if batch.ClearColor != nil {
		color = *batch.ClearColor
	}
	pass, err := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label:      b.label,
		Color:      view,
		ClearColor: color,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		Depth:      depth,
		DepthClear: 1.0,
	})
	if err != nil {
		enc.Discard()
		return nil, fmt.Errorf("render: begin pass: %w", err)
	}

	pass.SetViewport(0, 0, float32(width), float32(height), 0, 1)
	pass.SetScissorRect(0, 0, width, height)

	for i, cmd := range batch.Commands {
		if err := cmd.Encode(pass); err != nil {
			_ = pass.End()
			enc.Discard()
			return nil, &EncodingError{Index: i, Err: err}
		}
	}

	if err := pass.End(); err != nil {
		enc.Discard()
		return nil, fmt.Errorf("render: end pass: %w", err)
	}
	cb, err := enc.Finish()
	if err != nil {
		enc.Discard()
		return nil, fmt.Errorf("render: finish: %w", err)
	}

	b.log.Debug("render: encoded", "commands", len(batch.Commands), "width", width, "height", height)
	return cb, nil
}

func validate(batch *Batch) error {
	for i, cmd := range batch.Commands {
		if cmd == nil {
			return &EncodingError{Index: i, Err: errors.New("nil command")}
		}
		r, ok := cmd.(Referencer)
		if !ok {
			continue
		}
		for _, res := range r.References() {
			if res == nil {
				return &EncodingError{Index: i, Err: ErrInvalidResource}
			}
			if !res.Valid() {
				return &EncodingError{Index: i, Resource: res.Label(), Err: ErrInvalidResource}
			}
		}
	}
	return nil
}

// depthView returns a depth view matching the target size, recreating it
// when the size changed. It returns nil when depth is disabled.
func (b *Builder) depthView(width, height uint32) (gpucore.TextureView, error) {
	if b.depthFormat == gputypes.TextureFormatUndefined {
		return nil, nil
	}
	if b.depth != nil && b.depthW == width && b.depthH == height {
		return b.depth, nil
	}
	if b.depth != nil {
		b.depth.Release()
		b.depth = nil
	}

	v, err := b.dev.GPUDevice().CreateDepthTexture(width, height, b.depthFormat)
	if err != nil {
		return nil, fmt.Errorf("render: depth texture: %w", err)
	}
	b.depth, b.depthW, b.depthH = v, width, height
	b.log.Debug("render: depth texture created", "width", width, "height", height, "format", b.depthFormat)
	return v, nil
}

// Release frees the depth texture. The builder can be used again afterwards.
func (b *Builder) Release() {
	if b.depth != nil {
		b.depth.Release()
		b.depth = nil
	}
}
