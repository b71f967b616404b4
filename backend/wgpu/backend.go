// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu is the gogpu/wgpu backend: Vulkan, Metal, DX12 and GLES
// through a pure Go WebGPU implementation.
//
// Importing the package registers it:
//
//	import (
//	    _ "github.com/CaymanFreeman/Cairn/backend/wgpu"
//	    _ "github.com/gogpu/wgpu/hal/allbackends"
//	)
//
// The hal/allbackends import links the platform drivers.
package wgpu

import (
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return NewBackend()
	})
}

// Backend creates wgpu instances.
type Backend struct {
	mu          sync.Mutex
	backends    gputypes.Backends
	flags       gputypes.InstanceFlags
	initialized bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithBackends restricts the graphics APIs the instance may use.
func WithBackends(b gputypes.Backends) Option {
	return func(be *Backend) { be.backends = b }
}

// WithDebug enables driver debug layers when available.
func WithDebug() Option {
	return func(be *Backend) { be.flags |= gputypes.InstanceFlagsDebug }
}

// NewBackend creates a backend using every available graphics API.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{backends: gputypes.BackendsAll}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return backend.BackendWGPU }

// Init implements backend.Backend.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	return nil
}

// NewInstance implements backend.Backend.
func (b *Backend) NewInstance() (gpucore.Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	inst, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: b.backends,
		Flags:    b.flags,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &Instance{inst: inst}, nil
}

// SetLogger routes wgpu's own logging to l.
func (b *Backend) SetLogger(l *slog.Logger) {
	wgpu.SetLogger(l)
}
