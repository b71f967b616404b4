package cairn

import "fmt"

// State is the lifecycle state of an Orchestrator.
type State int32

const (
	// Uninitialized waits for the window to become ready.
	Uninitialized State = iota
	// Running renders a frame on every tick.
	Running
	// Suspended keeps the surface but suppresses ticks.
	Suspended
	// ShuttingDown drains the GPU and releases resources.
	ShuttingDown
	// Terminated is final.
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Running:
		return "Running"
	case Suspended:
		return "Suspended"
	case ShuttingDown:
		return "ShuttingDown"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// live reports whether s can still render or be shut down.
func (s State) live() bool {
	return s == Uninitialized || s == Running || s == Suspended
}
