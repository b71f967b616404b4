package headless

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Device is an in-memory gpucore.Device.
type Device struct {
	inst     *Instance
	label    string
	queue    *Queue
	released bool

	lost   error
	onLost func(error)

	submitErr error
	stall     chan struct{}
	pending   int
	submitted int
	completed int
	waitIdles int
	discarded int
	depths    int
	passes    []PassRecord
}

// Queue implements gpucore.Device.
func (d *Device) Queue() gpucore.Queue { return d.queue }

// SetLostCallback implements gpucore.LossNotifier.
func (d *Device) SetLostCallback(fn func(reason error)) {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	d.onLost = fn
}

// Lose marks the device lost and fires the lost callback, as a driver
// would from its own thread. Every later submission fails.
func (d *Device) Lose(reason error) {
	if reason == nil {
		reason = errors.New("headless: device removed")
	}
	d.inst.mu.Lock()
	d.lost = reason
	fn := d.onLost
	d.inst.record("device.lost reason=%q", reason.Error())
	d.inst.mu.Unlock()

	if fn != nil {
		fn(reason)
	}
}

// FailNextSubmit makes the next Submit return err.
func (d *Device) FailNextSubmit(err error) {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	d.submitErr = err
}

// CreateCommandEncoder implements gpucore.Device.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	if d.released {
		return nil, gpucore.ErrReleased
	}
	if d.lost != nil {
		return nil, fmt.Errorf("%w: %w", gpucore.ErrDeviceLost, d.lost)
	}
	return &Encoder{dev: d, label: label}, nil
}

// CreateDepthTexture implements gpucore.Device.
func (d *Device) CreateDepthTexture(width, height uint32, format gputypes.TextureFormat) (gpucore.TextureView, error) {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	if d.released {
		return nil, gpucore.ErrReleased
	}
	if !format.HasDepth() {
		return nil, fmt.Errorf("%w: %s is not a depth format", ErrUnsupportedFormat, format)
	}
	if width == 0 || height == 0 {
		return nil, gpucore.ErrZeroArea
	}
	d.depths++
	d.inst.views++
	d.inst.record("device.depth %dx%d", width, height)
	return &TextureView{inst: d.inst, label: fmt.Sprintf("depth %dx%d", width, height)}, nil
}

// StallWaitIdle makes the next WaitIdle block until resume is called, as a
// driver does while a long submission runs.
func (d *Device) StallWaitIdle() (resume func()) {
	ch := make(chan struct{})
	d.inst.mu.Lock()
	d.stall = ch
	d.inst.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// WaitIdle implements gpucore.Device. It completes every pending submission.
func (d *Device) WaitIdle() error {
	d.inst.mu.Lock()
	stall := d.stall
	d.stall = nil
	d.inst.mu.Unlock()
	if stall != nil {
		<-stall
	}

	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	if d.released {
		return gpucore.ErrReleased
	}
	d.inst.record("device.wait_idle pending=%d", d.pending)
	d.completed += d.pending
	d.pending = 0
	d.waitIdles++
	if d.lost != nil {
		return fmt.Errorf("%w: %w", gpucore.ErrDeviceLost, d.lost)
	}
	return nil
}

// Release implements gpucore.Device. The queue is released with it.
func (d *Device) Release() {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	d.inst.record("queue.release pending=%d", d.pending)
	d.inst.record("device.release")
}

// Pending returns the number of submissions that have not completed.
func (d *Device) Pending() int {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.pending
}

// Submitted returns the number of command buffers accepted by the queue.
func (d *Device) Submitted() int {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.submitted
}

// Completed returns the number of submissions that finished executing.
func (d *Device) Completed() int {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.completed
}

// WaitIdles returns how many times WaitIdle was called.
func (d *Device) WaitIdles() int {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.waitIdles
}

// DiscardedEncoders returns how many encoders were discarded unfinished.
func (d *Device) DiscardedEncoders() int {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.discarded
}

// DepthTextures returns how many depth textures were created.
func (d *Device) DepthTextures() int {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.depths
}

// Passes returns every ended render pass, oldest first.
func (d *Device) Passes() []PassRecord {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return slices.Clone(d.passes)
}

// Released reports whether Release was called.
func (d *Device) Released() bool {
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	return d.released
}

// Queue is the device's only queue.
type Queue struct {
	dev *Device
}

// Submit implements gpucore.Queue.
func (q *Queue) Submit(buffers ...gpucore.CommandBuffer) error {
	d := q.dev
	d.inst.mu.Lock()
	defer d.inst.mu.Unlock()
	if d.released {
		return gpucore.ErrReleased
	}
	if d.lost != nil {
		return fmt.Errorf("%w: %w", gpucore.ErrDeviceLost, d.lost)
	}
	if err := d.submitErr; err != nil {
		d.submitErr = nil
		return err
	}

	for _, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok || cb.dev != d {
			return ErrForeignObject
		}
		if cb.released || cb.submitted {
			return fmt.Errorf("headless: command buffer reused: %w", gpucore.ErrReleased)
		}
	}
	for _, b := range buffers {
		b.(*CommandBuffer).submitted = true
		d.pending++
		d.submitted++
	}
	for d.pending > d.inst.latency {
		d.pending--
		d.completed++
	}
	d.inst.record("queue.submit n=%d pending=%d", len(buffers), d.pending)
	return nil
}
