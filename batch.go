package cairn

import (
	"context"
	"time"

	"github.com/CaymanFreeman/Cairn/render"
)

// BatchSource supplies the draw batch for each frame. RequestDrawBatch is
// called once per Running tick on the orchestrator's goroutine and may
// return nil for a cleared frame.
type BatchSource interface {
	RequestDrawBatch(frameIndex uint64) *render.Batch
}

// BatchFunc adapts a function to BatchSource.
type BatchFunc func(frameIndex uint64) *render.Batch

// RequestDrawBatch implements BatchSource.
func (f BatchFunc) RequestDrawBatch(frameIndex uint64) *render.Batch { return f(frameIndex) }

// ChannelSource hands batches from one producer goroutine to the
// orchestrator. It holds at most one batch.
type ChannelSource struct {
	ch   chan *render.Batch
	wait time.Duration
}

// NewChannelSource creates a source whose RequestDrawBatch waits up to
// wait for a batch before rendering a cleared frame. Zero never waits.
func NewChannelSource(wait time.Duration) *ChannelSource {
	return &ChannelSource{ch: make(chan *render.Batch, 1), wait: wait}
}

// Publish queues b, blocking while the previous batch is unconsumed.
func (s *ChannelSource) Publish(ctx context.Context, b *render.Batch) error {
	select {
	case s.ch <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestDrawBatch implements BatchSource.
func (s *ChannelSource) RequestDrawBatch(uint64) *render.Batch {
	select {
	case b := <-s.ch:
		return b
	default:
	}
	if s.wait <= 0 {
		return nil
	}

	t := time.NewTimer(s.wait)
	defer t.Stop()
	select {
	case b := <-s.ch:
		return b
	case <-t.C:
		return nil
	}
}
