package cairn

import (
	"errors"
	"fmt"

	"github.com/CaymanFreeman/Cairn/gpucore"
	"github.com/CaymanFreeman/Cairn/surface"
)

// ErrDeviceLost means the GPU device was lost. Errors wrapping it also
// wrap the reason.
var ErrDeviceLost = errors.New("cairn: device lost")

// Severity classifies how the orchestrator reacts to an error.
type Severity int

const (
	// Transient errors drop the current frame and nothing else.
	Transient Severity = iota
	// Structural errors require a surface reconfigure before rendering resumes.
	Structural
	// Fatal errors end the run.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Transient:
		return "Transient"
	case Structural:
		return "Structural"
	case Fatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Classify returns the severity of err. Classify(nil) is Transient.
func Classify(err error) Severity {
	var fe *FatalError
	switch {
	case err == nil:
		return Transient
	case errors.As(err, &fe):
		return Fatal
	case errors.Is(err, surface.ErrTimeout),
		errors.Is(err, surface.ErrOutdated),
		errors.Is(err, gpucore.ErrTimeout),
		errors.Is(err, gpucore.ErrOutdated):
		return Transient
	case errors.Is(err, surface.ErrLost),
		errors.Is(err, surface.ErrNotConfigured),
		errors.Is(err, gpucore.ErrLost),
		errors.Is(err, gpucore.ErrZeroArea):
		return Structural
	default:
		return Fatal
	}
}

// FatalError is the terminal result of a run.
type FatalError struct {
	Op  string // orchestrator step that failed
	Err error
}

func (e *FatalError) Error() string {
	return "cairn: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the cause.
func (e *FatalError) Unwrap() error { return e.Err }
