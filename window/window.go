// Package window describes the OS window the frame orchestrator renders into.
//
// The orchestrator never talks to a windowing toolkit directly. A toolkit
// integration implements [Provider]: it reports the native handle and
// current size and delivers lifecycle [Event]s on a channel. [Headless] is
// a Provider without an OS window, driven by method calls or a [Scenario].
package window

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Kind is the kind of a window event.
type Kind int

const (
	// Ready is sent once when the native window exists. It carries the
	// handle and the initial size.
	Ready Kind = iota + 1
	// Resize carries the new client size. Zero means minimized.
	Resize
	// Suspend means the window lost visibility (minimized, backgrounded).
	Suspend
	// Resume means the window is visible again.
	Resume
	// Close is a close request.
	Close
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Ready:
		return "Ready"
	case Resize:
		return "Resize"
	case Suspend:
		return "Suspend"
	case Resume:
		return "Resume"
	case Close:
		return "Close"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one window lifecycle event.
type Event struct {
	Kind   Kind
	Handle gpucore.NativeHandle
	Width  uint32
	Height uint32
}

// String formats the event for logs.
func (e Event) String() string {
	switch e.Kind {
	case Ready, Resize:
		return fmt.Sprintf("%s(%dx%d)", e.Kind, e.Width, e.Height)
	default:
		return e.Kind.String()
	}
}

// Provider is the window side of the orchestrator.
type Provider interface {
	gpucontext.WindowProvider

	// Handle returns the native handle. It is valid after Ready.
	Handle() gpucore.NativeHandle

	// Events delivers lifecycle events in order.
	Events() <-chan Event

	// Terminate asks the window to close itself. err is the fatal error
	// that ended rendering, or nil.
	Terminate(err error)
}

// PhysicalSize converts a provider's logical size to pixels.
func PhysicalSize(p gpucontext.WindowProvider) (width, height uint32) {
	w, h := p.Size()
	scale := p.ScaleFactor()
	if scale <= 0 {
		scale = 1
	}
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return uint32(float64(w)*scale + 0.5), uint32(float64(h)*scale + 0.5)
}
