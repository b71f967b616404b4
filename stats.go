package cairn

import "sync/atomic"

// Stats counts what happened to ticks and frames.
type Stats struct {
	Ticks      uint64 // Running ticks
	Suppressed uint64 // ticks while not Running
	Frames     uint64 // frames presented
	Skipped    uint64 // ticks without a configured surface
	Timeouts   uint64
	Outdated   uint64
	Lost       uint64
	Suboptimal uint64
	Resizes    uint64 // resize events handled while Running
	Resumes    uint64
}

// counters is the live form of Stats, readable from any goroutine.
type counters struct {
	ticks      atomic.Uint64
	suppressed atomic.Uint64
	frames     atomic.Uint64
	skipped    atomic.Uint64
	timeouts   atomic.Uint64
	outdated   atomic.Uint64
	lost       atomic.Uint64
	suboptimal atomic.Uint64
	resizes    atomic.Uint64
	resumes    atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Ticks:      c.ticks.Load(),
		Suppressed: c.suppressed.Load(),
		Frames:     c.frames.Load(),
		Skipped:    c.skipped.Load(),
		Timeouts:   c.timeouts.Load(),
		Outdated:   c.outdated.Load(),
		Lost:       c.lost.Load(),
		Suboptimal: c.suboptimal.Load(),
		Resizes:    c.resizes.Load(),
		Resumes:    c.resumes.Load(),
	}
}
