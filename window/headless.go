package window

import (
	"sync"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// eventBuffer bounds how many events a Headless window queues.
const eventBuffer = 64

// Headless is a Provider without an OS window.
type Headless struct {
	mu         sync.Mutex
	handle     gpucore.NativeHandle
	width      int
	height     int
	scale      float64
	events     chan Event
	terminated bool
	termErr    error
	redraws    int
	dropped    int
}

var _ Provider = (*Headless)(nil)

// NewHeadless creates a window of the given logical size. Window handles
// are numbered from 1 per process.
func NewHeadless(width, height int) *Headless {
	return &Headless{
		handle: gpucore.NativeHandle{Window: nextHandle()},
		width:  width,
		height: height,
		scale:  1,
		events: make(chan Event, eventBuffer),
	}
}

var (
	handleMu   sync.Mutex
	handleNext uintptr
)

func nextHandle() uintptr {
	handleMu.Lock()
	defer handleMu.Unlock()
	handleNext++
	return handleNext
}

// SetScaleFactor sets the DPI scale factor.
func (w *Headless) SetScaleFactor(scale float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scale = scale
}

// send queues ev without blocking. Events are dropped once the window is
// terminated or while the buffer is full. The caller holds w.mu.
func (w *Headless) send(ev Event) bool {
	if w.terminated {
		return false
	}
	select {
	case w.events <- ev:
		return true
	default:
		w.dropped++
		return false
	}
}

// Dropped returns how many events were lost to a full buffer.
func (w *Headless) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *Headless) physical() (uint32, uint32) {
	if w.width <= 0 || w.height <= 0 {
		return 0, 0
	}
	return uint32(float64(w.width)*w.scale + 0.5), uint32(float64(w.height)*w.scale + 0.5)
}

// Open sends Ready with the handle and current size.
func (w *Headless) Open() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	pw, ph := w.physical()
	return w.send(Event{Kind: Ready, Handle: w.handle, Width: pw, Height: ph})
}

// Resize changes the size and sends Resize.
func (w *Headless) Resize(width, height int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
	pw, ph := w.physical()
	return w.send(Event{Kind: Resize, Width: pw, Height: ph})
}

// Minimize resizes to zero, as most platforms report minimization.
func (w *Headless) Minimize() bool { return w.Resize(0, 0) }

// Hide sends Suspend.
func (w *Headless) Hide() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.send(Event{Kind: Suspend})
}

// Show sends Resume.
func (w *Headless) Show() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.send(Event{Kind: Resume})
}

// SetSizeSilently changes the size without an event, as some platforms do
// while a window is hidden.
func (w *Headless) SetSizeSilently(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
}

// RequestClose sends Close.
func (w *Headless) RequestClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.send(Event{Kind: Close})
}

// Size implements gpucontext.WindowProvider.
func (w *Headless) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// ScaleFactor implements gpucontext.WindowProvider.
func (w *Headless) ScaleFactor() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

// RequestRedraw implements gpucontext.WindowProvider.
func (w *Headless) RequestRedraw() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.redraws++
}

// Redraws returns how many redraws were requested.
func (w *Headless) Redraws() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.redraws
}

// Handle implements Provider.
func (w *Headless) Handle() gpucore.NativeHandle { return w.handle }

// Events implements Provider.
func (w *Headless) Events() <-chan Event { return w.events }

// Terminate implements Provider. Later events are dropped.
func (w *Headless) Terminate(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.terminated {
		return
	}
	w.terminated = true
	w.termErr = err
}

// Terminated reports whether Terminate was called and with which error.
func (w *Headless) Terminated() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.terminated, w.termErr
}
