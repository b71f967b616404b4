package cairn_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	cairn "github.com/CaymanFreeman/Cairn"
	"github.com/CaymanFreeman/Cairn/device"
	"github.com/CaymanFreeman/Cairn/gpucore"
	"github.com/CaymanFreeman/Cairn/render"
	"github.com/CaymanFreeman/Cairn/surface"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want cairn.Severity
	}{
		{"nil", nil, cairn.Transient},
		{"surface timeout", surface.ErrTimeout, cairn.Transient},
		{"wrapped outdated", fmt.Errorf("%w: %w", surface.ErrOutdated, gpucore.ErrOutdated), cairn.Transient},
		{"driver timeout", gpucore.ErrTimeout, cairn.Transient},
		{"surface lost", surface.ErrLost, cairn.Structural},
		{"not configured", surface.ErrNotConfigured, cairn.Structural},
		{"zero area", gpucore.ErrZeroArea, cairn.Structural},
		{"no adapter", device.ErrNoSuitableAdapter, cairn.Fatal},
		{"device creation", device.ErrDeviceCreationFailed, cairn.Fatal},
		{"configuration", surface.ErrConfigurationFailed, cairn.Fatal},
		{"incompatible", surface.ErrIncompatibleSurface, cairn.Fatal},
		{"device lost", cairn.ErrDeviceLost, cairn.Fatal},
		{"encoding", &render.EncodingError{Index: 0, Err: errors.New("x")}, cairn.Fatal},
		{"fatal wrapping transient", &cairn.FatalError{Op: "acquire", Err: surface.ErrTimeout}, cairn.Fatal},
		{"unknown", errors.New("something else"), cairn.Fatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cairn.Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestFatalError(t *testing.T) {
	cause := fmt.Errorf("%w: adapter gone", device.ErrNoSuitableAdapter)
	err := error(&cairn.FatalError{Op: "device", Err: cause})
	if !errors.Is(err, device.ErrNoSuitableAdapter) {
		t.Error("FatalError does not unwrap to its cause")
	}
	if got, want := err.Error(), "cairn: device: device: no suitable adapter: adapter gone"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[cairn.State]string{
		cairn.Uninitialized: "Uninitialized",
		cairn.Running:       "Running",
		cairn.Suspended:     "Suspended",
		cairn.ShuttingDown:  "ShuttingDown",
		cairn.Terminated:    "Terminated",
		cairn.State(42):     "State(42)",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(s), got, want)
		}
	}
}

func TestChannelSource(t *testing.T) {
	src := cairn.NewChannelSource(20 * time.Millisecond)
	if b := src.RequestDrawBatch(0); b != nil {
		t.Errorf("empty source returned %v", b)
	}

	ctx := context.Background()
	first := render.NewBatch(render.Draw{Vertices: 3})
	if err := src.Publish(ctx, first); err != nil {
		t.Fatal(err)
	}

	// The slot is full; a second Publish blocks until the first is taken.
	short, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	if err := src.Publish(short, render.NewBatch()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Publish() on a full source = %v, want DeadlineExceeded", err)
	}

	if b := src.RequestDrawBatch(1); b != first {
		t.Errorf("RequestDrawBatch() = %v, want the published batch", b)
	}

	second := render.NewBatch()
	go func() {
		time.Sleep(2 * time.Millisecond)
		_ = src.Publish(ctx, second)
	}()
	if b := src.RequestDrawBatch(2); b != second {
		t.Errorf("RequestDrawBatch() did not wait for a late batch")
	}
}

func TestBatchFunc(t *testing.T) {
	var seen uint64
	f := cairn.BatchFunc(func(i uint64) *render.Batch { seen = i; return nil })
	if b := f.RequestDrawBatch(7); b != nil || seen != 7 {
		t.Errorf("BatchFunc got %d, returned %v", seen, b)
	}
}
