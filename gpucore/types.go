// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: MIT

package gpucore

import (
	"github.com/gogpu/gputypes"
)

// NativeHandle identifies the OS window a surface is created for.
// Display is the platform display connection (X11 Display*, Wayland
// wl_display*, zero on Windows and macOS); Window is the window or layer
// handle (HWND, X11 Window, wl_surface*, CAMetalLayer*).
type NativeHandle struct {
	Display uintptr
	Window  uintptr
}

// AdapterOptions selects an adapter.
type AdapterOptions struct {
	PowerPreference      gputypes.PowerPreference
	ForceFallbackAdapter bool

	// CompatibleSurface, if non-nil, restricts selection to adapters that
	// can present to this surface.
	CompatibleSurface Surface
}

// DeviceDescriptor describes a logical device request.
type DeviceDescriptor struct {
	Label            string
	RequiredFeatures gputypes.Features
	RequiredLimits   gputypes.Limits
}

// SurfaceCapabilities lists what a surface supports on a given adapter.
type SurfaceCapabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []gputypes.PresentMode
	AlphaModes   []gputypes.CompositeAlphaMode
}

// SurfaceConfiguration is applied by Surface.Configure.
type SurfaceConfiguration struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
}

// Instance is the entry point of a backend.
type Instance interface {
	// CreateSurface creates a surface for a native window.
	CreateSurface(handle NativeHandle) (Surface, error)

	// RequestAdapter returns the adapter best matching opts, or an error
	// wrapping ErrNoAdapter.
	RequestAdapter(opts *AdapterOptions) (Adapter, error)

	// Enumerate lists every adapter the instance can see.
	Enumerate() []gputypes.AdapterInfo

	Release()
}

// Adapter is a physical or virtual GPU.
type Adapter interface {
	Info() gputypes.AdapterInfo
	Features() gputypes.Features
	Limits() gputypes.Limits
	RequestDevice(desc *DeviceDescriptor) (Device, error)
	SurfaceCapabilities(s Surface) *SurfaceCapabilities
	Release()
}

// Device is a logical GPU device.
type Device interface {
	Queue() Queue
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// CreateDepthTexture creates a depth attachment of the given size and
	// returns a view of it.
	CreateDepthTexture(width, height uint32, format gputypes.TextureFormat) (TextureView, error)

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error

	Release()
}

// LossNotifier is implemented by devices whose driver reports device loss
// asynchronously. The callback may run on any goroutine.
type LossNotifier interface {
	SetLostCallback(fn func(reason error))
}

// Queue accepts command buffers for execution.
type Queue interface {
	// Submit enqueues buffers in order. On success ownership of the
	// buffers passes to the queue; on failure the caller releases them.
	Submit(buffers ...CommandBuffer) error
}

// Surface is a presentable target bound to a window.
type Surface interface {
	Configure(d Device, cfg *SurfaceConfiguration) error
	Unconfigure()

	// AcquireTexture returns the next presentable texture. suboptimal
	// reports a texture that is usable but no longer matches the window.
	AcquireTexture() (tex SurfaceTexture, suboptimal bool, err error)

	Present(tex SurfaceTexture) error

	// Discard returns an acquired texture without presenting it.
	Discard(tex SurfaceTexture)

	Release()
}

// SurfaceTexture is one presentable image.
type SurfaceTexture interface {
	CreateView() (TextureView, error)
}

// TextureView is a view into a texture usable as a render attachment.
type TextureView interface {
	Release()
}

// CommandEncoder records GPU commands.
type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)
	Finish() (CommandBuffer, error)

	// Discard abandons recording. Safe to call after Finish.
	Discard()
}

// RenderPassDescriptor describes a render pass with a single color
// attachment and an optional depth attachment.
type RenderPassDescriptor struct {
	Label      string
	Color      TextureView
	ClearColor gputypes.Color
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp

	// Depth is nil when the pass has no depth attachment.
	Depth      TextureView
	DepthClear float32
}

// RenderPass records draw commands into a single pass.
type RenderPass interface {
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissorRect(x, y, width, height uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// Raw returns the backend pass encoder (for example a
	// *wgpu.RenderPassEncoder) for commands beyond this interface.
	Raw() any

	End() error
}

// CommandBuffer is a finished, submittable recording.
type CommandBuffer interface {
	Release()
}
