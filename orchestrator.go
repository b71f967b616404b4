// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: MIT

package cairn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/CaymanFreeman/Cairn/device"
	"github.com/CaymanFreeman/Cairn/gpucore"
	"github.com/CaymanFreeman/Cairn/render"
	"github.com/CaymanFreeman/Cairn/surface"
	"github.com/CaymanFreeman/Cairn/window"
)

// Orchestrator is the frame state machine for one window.
//
// Handle and Tick must be called from a single goroutine. State, Err,
// Stats and RequestShutdown are safe from any goroutine.
type Orchestrator struct {
	win  window.Provider
	opts options
	log  *slog.Logger

	// inst is owned until device initialization hands it to dc.
	inst gpucore.Instance
	dc   *device.Context
	sm   *surface.Manager
	rb   *render.Builder

	state      atomic.Int32
	shutdown   atomic.Bool
	frameIndex uint64

	// reconfigure forces a surface reconfigure before the next acquisition,
	// after a suboptimal frame or an outdated present.
	reconfigure bool

	// pendingW and pendingH hold the last size a Resize reported while
	// suspended. Zero when none arrived.
	pendingW, pendingH uint32

	errMu sync.Mutex
	err   error

	stats counters
}

// NewOrchestrator creates an orchestrator in state Uninitialized. It takes
// ownership of inst.
func NewOrchestrator(inst gpucore.Instance, win window.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		win:  win,
		opts: defaultOptions(),
		inst: inst,
	}
	for _, opt := range opts {
		opt(&o.opts)
	}
	o.log = o.opts.log
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State { return State(o.state.Load()) }

func (o *Orchestrator) setState(s State) {
	prev := State(o.state.Swap(int32(s)))
	if prev != s {
		o.log.Info("cairn: state", "from", prev, "to", s)
	}
}

// Err returns the terminal error, or nil if the run has not failed.
func (o *Orchestrator) Err() error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	return o.err
}

// Stats returns a snapshot of the counters.
func (o *Orchestrator) Stats() Stats { return o.stats.snapshot() }

// FrameIndex returns the index of the next frame.
func (o *Orchestrator) FrameIndex() uint64 { return o.frameIndex }

// Device returns the device context, or nil before Ready and after shutdown.
func (o *Orchestrator) Device() *device.Context { return o.dc }

// Surface returns the surface manager, or nil before Ready and after shutdown.
func (o *Orchestrator) Surface() *surface.Manager { return o.sm }

// RequestShutdown asks the orchestrator to shut down at its next Handle or
// Tick.
func (o *Orchestrator) RequestShutdown() {
	o.shutdown.Store(true)
}

// poll acts on a pending shutdown request.
func (o *Orchestrator) poll() {
	if o.shutdown.Load() && o.State().live() {
		o.log.Info("cairn: shutdown requested")
		o.stop()
	}
}

// Handle applies one window event.
func (o *Orchestrator) Handle(ev window.Event) error {
	o.poll()
	st := o.State()

	switch {
	case ev.Kind == window.Close && st.live():
		o.log.Info("cairn: close requested")
		o.stop()
		return nil

	case st == Uninitialized && ev.Kind == window.Ready:
		return o.start(ev)

	case st == Running && ev.Kind == window.Resize:
		o.stats.resizes.Add(1)
		if err := o.sm.Reconfigure(ev.Width, ev.Height); err != nil {
			return o.fail("reconfigure", err)
		}
		return nil

	case st == Running && ev.Kind == window.Suspend:
		o.pendingW, o.pendingH = 0, 0
		o.setState(Suspended)
		return nil

	case st == Suspended && ev.Kind == window.Resize:
		o.pendingW, o.pendingH = ev.Width, ev.Height
		return nil

	case st == Suspended && ev.Kind == window.Resume:
		return o.resume()
	}

	o.log.Debug("cairn: event ignored", "event", ev, "state", st)
	return nil
}

func (o *Orchestrator) start(ev window.Event) error {
	handle := ev.Handle
	if handle == (gpucore.NativeHandle{}) {
		handle = o.win.Handle()
	}

	s, err := o.inst.CreateSurface(handle)
	if err != nil {
		return o.fail("surface", fmt.Errorf("cairn: create surface: %w", err))
	}
	dc, err := device.Initialize(o.inst, o.opts.requirements,
		device.WithLogger(o.log),
		device.WithCompatibleSurface(s))
	if err != nil {
		s.Release()
		return o.fail("device", err)
	}
	o.dc, o.inst = dc, nil

	sm, err := surface.Attach(s, dc, o.opts.preferences, surface.WithLogger(o.log))
	if err != nil {
		return o.fail("surface", err)
	}
	o.sm = sm
	o.rb = render.NewBuilder(dc, append([]render.Option{render.WithLogger(o.log)}, o.opts.renderOpts...)...)

	o.setState(Running)
	if err := o.sm.Reconfigure(ev.Width, ev.Height); err != nil {
		return o.fail("configure", err)
	}
	return nil
}

// resume reconfigures once at the size the window reports now. A size
// reported while suspended is used when the window reports none. With
// neither, the surface stays unconfigured until a non-zero resize.
func (o *Orchestrator) resume() error {
	w, h := window.PhysicalSize(o.win)
	if w == 0 || h == 0 {
		w, h = o.pendingW, o.pendingH
	}
	o.stats.resumes.Add(1)
	o.setState(Running)
	if err := o.sm.ForceReconfigure(w, h); err != nil {
		return o.fail("reconfigure", err)
	}
	return nil
}

// recoverySize is the size used to recover the surface: the window's
// current size, or the last requested size when the window reports none.
func (o *Orchestrator) recoverySize() (uint32, uint32) {
	if w, h := window.PhysicalSize(o.win); w > 0 && h > 0 {
		return w, h
	}
	return o.sm.LastSize()
}

func (o *Orchestrator) forceReconfigure() error {
	w, h := o.recoverySize()
	if err := o.sm.ForceReconfigure(w, h); err != nil {
		return o.fail("reconfigure", err)
	}
	return nil
}

// Tick renders at most one frame. Outside Running it only acts on device
// loss.
func (o *Orchestrator) Tick() error {
	o.poll()
	if o.dc != nil && o.State().live() {
		if lost, reason := o.dc.Lost(); lost {
			return o.fail("tick", fmt.Errorf("%w: %w", ErrDeviceLost, reason))
		}
	}
	if o.State() != Running {
		o.stats.suppressed.Add(1)
		return nil
	}
	o.stats.ticks.Add(1)

	var batch *render.Batch
	if o.opts.source != nil {
		batch = o.opts.source.RequestDrawBatch(o.frameIndex)
	}

	if o.sm.State() == surface.Lost {
		o.log.Warn("cairn: recovering lost surface")
		if err := o.forceReconfigure(); err != nil {
			return err
		}
	}
	switch o.sm.State() {
	case surface.PermanentlyFailed:
		return o.fail("tick", surface.ErrConfigurationFailed)
	case surface.Configured:
	default:
		o.stats.skipped.Add(1)
		return nil
	}

	if o.reconfigure {
		o.reconfigure = false
		if err := o.forceReconfigure(); err != nil {
			return err
		}
		if o.sm.State() != surface.Configured {
			o.stats.skipped.Add(1)
			return nil
		}
	}

	frame, err := o.acquire()
	if frame == nil {
		return err
	}
	return o.render(frame, batch)
}

// acquire returns the next frame, or nil when the tick is dropped.
func (o *Orchestrator) acquire() (*surface.Frame, error) {
	f, err := o.sm.AcquireFrame()
	switch {
	case err == nil:
		return f, nil

	case errors.Is(err, surface.ErrTimeout):
		o.stats.timeouts.Add(1)
		o.log.Debug("cairn: acquire timed out", "frame", o.frameIndex)
		return nil, nil

	case errors.Is(err, surface.ErrOutdated):
		o.stats.outdated.Add(1)
		o.log.Debug("cairn: surface outdated, reconfiguring", "frame", o.frameIndex)
		if err := o.forceReconfigure(); err != nil {
			return nil, err
		}
		f, err = o.sm.AcquireFrame()
		if err == nil {
			return f, nil
		}
		if Classify(err) == Fatal {
			return nil, o.fail("acquire", err)
		}
		o.log.Debug("cairn: retry after reconfigure failed", "err", err)
		return nil, nil

	case errors.Is(err, surface.ErrLost):
		o.stats.lost.Add(1)
		o.log.Warn("cairn: surface lost on acquire", "frame", o.frameIndex)
		return nil, o.forceReconfigure()

	default:
		return nil, o.fail("acquire", err)
	}
}

func (o *Orchestrator) render(frame *surface.Frame, batch *render.Batch) error {
	cb, err := o.rb.Encode(frame, batch)
	if err != nil {
		frame.Drop()
		return o.fail("encode", err)
	}

	if err := o.dc.GPUQueue().Submit(cb); err != nil {
		cb.Release()
		frame.Drop()
		if errors.Is(err, gpucore.ErrDeviceLost) {
			o.dc.NotifyLost(err)
			err = fmt.Errorf("%w: %w", ErrDeviceLost, err)
		}
		return o.fail("submit", err)
	}
	o.frameIndex++

	if err := frame.Present(); err != nil {
		if Classify(err) == Fatal {
			return o.fail("present", err)
		}
		if errors.Is(err, surface.ErrLost) {
			o.stats.lost.Add(1)
		} else {
			o.stats.outdated.Add(1)
			o.reconfigure = true
		}
		o.log.Warn("cairn: present failed, reconfiguring next tick", "err", err)
		return nil
	}

	o.stats.frames.Add(1)
	if frame.Suboptimal {
		o.stats.suboptimal.Add(1)
		o.reconfigure = true
	}
	if n := o.opts.maxFrames; n > 0 && o.stats.frames.Load() >= n {
		o.RequestShutdown()
	}
	return nil
}

// fail records err as the terminal result and shuts down.
func (o *Orchestrator) fail(op string, err error) error {
	var fe *FatalError
	if !errors.As(err, &fe) {
		fe = &FatalError{Op: op, Err: err}
	}
	o.errMu.Lock()
	if o.err == nil {
		o.err = fe
	}
	o.errMu.Unlock()

	o.log.Error("cairn: fatal", "op", fe.Op, "err", fe.Err)
	o.win.Terminate(fe)
	o.stop()
	return fe
}

// stop drains the GPU and releases everything in reverse creation order.
func (o *Orchestrator) stop() {
	if !o.State().live() {
		return
	}
	o.setState(ShuttingDown)

	if o.dc != nil && !o.dc.Released() {
		ctx, cancel := context.WithTimeout(context.Background(), o.opts.drainTimeout)
		err := o.dc.WaitIdle(ctx)
		cancel()
		switch {
		case errors.Is(err, device.ErrDrainTimeout):
			o.log.Warn("cairn: drain timed out", "timeout", o.opts.drainTimeout)
			o.errMu.Lock()
			if o.err == nil {
				o.err = &FatalError{Op: "drain", Err: err}
			}
			o.errMu.Unlock()
		case err != nil:
			o.log.Warn("cairn: drain", "err", err)
		}
	}

	if o.rb != nil {
		o.rb.Release()
		o.rb = nil
	}
	if o.sm != nil {
		o.sm.Release()
		o.sm = nil
	}
	if o.dc != nil {
		o.dc.Release()
		o.dc = nil
	}
	if o.inst != nil {
		o.inst.Release()
		o.inst = nil
	}

	o.setState(Terminated)
	o.log.Info("cairn: terminated", "frames", o.stats.frames.Load())
}
