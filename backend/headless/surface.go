package headless

import (
	"fmt"

	"github.com/CaymanFreeman/Cairn/gpucore"
)

// Outcome is one scripted result of AcquireTexture.
type Outcome struct {
	Err        error
	Suboptimal bool
}

// Surface is an in-memory gpucore.Surface.
type Surface struct {
	inst   *Instance
	handle gpucore.NativeHandle
	id     int

	released   bool
	configured bool
	config     gpucore.SurfaceConfiguration

	script     []Outcome
	sticky     error
	rejects    []error
	presentErr error

	seq            int
	outstanding    int
	maxOutstanding int
	acquires       int
	presents       int
	discards       int
	configures     int
	unconfigures   int
}

// Script queues outcomes for the next AcquireTexture calls, one per call.
func (s *Surface) Script(outcomes ...Outcome) {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	s.script = append(s.script, outcomes...)
}

// Lose makes every acquisition fail with gpucore.ErrLost until the surface
// is configured again.
func (s *Surface) Lose() {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	s.sticky = gpucore.ErrLost
	s.inst.record("surface.lost id=%d", s.id)
}

// Outdate makes every acquisition fail with gpucore.ErrOutdated until the
// surface is configured again.
func (s *Surface) Outdate() {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	s.sticky = gpucore.ErrOutdated
}

// RejectConfigure makes the next len(errs) Configure calls fail.
func (s *Surface) RejectConfigure(errs ...error) {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	s.rejects = append(s.rejects, errs...)
}

// FailNextPresent makes the next Present return err.
func (s *Surface) FailNextPresent(err error) {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	s.presentErr = err
}

// Configure implements gpucore.Surface.
func (s *Surface) Configure(d gpucore.Device, cfg *gpucore.SurfaceConfiguration) error {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	if s.released {
		return gpucore.ErrReleased
	}
	hd, ok := d.(*Device)
	if !ok || hd.inst != s.inst {
		return ErrForeignObject
	}
	if hd.released {
		return gpucore.ErrReleased
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return gpucore.ErrZeroArea
	}
	if len(s.rejects) > 0 {
		err := s.rejects[0]
		s.rejects = s.rejects[1:]
		s.inst.record("surface.configure rejected %dx%d", cfg.Width, cfg.Height)
		return fmt.Errorf("headless: configure rejected: %w", err)
	}

	s.configured = true
	s.config = *cfg
	s.sticky = nil
	s.configures++
	s.inst.record("surface.configure %dx%d format=%s mode=%s", cfg.Width, cfg.Height, cfg.Format, cfg.PresentMode)
	return nil
}

// Unconfigure implements gpucore.Surface.
func (s *Surface) Unconfigure() {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	if !s.configured {
		return
	}
	s.configured = false
	s.unconfigures++
	s.inst.record("surface.unconfigure")
}

// AcquireTexture implements gpucore.Surface.
func (s *Surface) AcquireTexture() (gpucore.SurfaceTexture, bool, error) {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	s.acquires++
	if s.released {
		return nil, false, gpucore.ErrReleased
	}
	if !s.configured {
		return nil, false, ErrNotConfigured
	}
	if s.sticky != nil {
		return nil, false, s.sticky
	}

	var suboptimal bool
	if len(s.script) > 0 {
		o := s.script[0]
		s.script = s.script[1:]
		if o.Err != nil {
			s.inst.record("surface.acquire err=%q", o.Err.Error())
			return nil, false, o.Err
		}
		suboptimal = o.Suboptimal
	}

	s.seq++
	s.outstanding++
	s.maxOutstanding = max(s.maxOutstanding, s.outstanding)
	s.inst.record("surface.acquire seq=%d", s.seq)
	return &SurfaceTexture{
		surface: s,
		seq:     s.seq,
		width:   s.config.Width,
		height:  s.config.Height,
	}, suboptimal, nil
}

func (s *Surface) texture(tex gpucore.SurfaceTexture) (*SurfaceTexture, error) {
	st, ok := tex.(*SurfaceTexture)
	if !ok || st.surface != s {
		return nil, ErrForeignObject
	}
	if st.done {
		return nil, fmt.Errorf("headless: texture %d already returned: %w", st.seq, gpucore.ErrReleased)
	}
	return st, nil
}

// Present implements gpucore.Surface.
func (s *Surface) Present(tex gpucore.SurfaceTexture) error {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	st, err := s.texture(tex)
	if err != nil {
		return err
	}
	st.done = true
	s.outstanding--
	if err := s.presentErr; err != nil {
		s.presentErr = nil
		s.inst.record("surface.present seq=%d err=%q", st.seq, err.Error())
		return err
	}
	s.presents++
	s.inst.record("surface.present seq=%d", st.seq)
	return nil
}

// Discard implements gpucore.Surface.
func (s *Surface) Discard(tex gpucore.SurfaceTexture) {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	st, err := s.texture(tex)
	if err != nil {
		return
	}
	st.done = true
	s.outstanding--
	s.discards++
	s.inst.record("surface.discard seq=%d", st.seq)
}

// Release implements gpucore.Surface.
func (s *Surface) Release() {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.configured = false
	s.inst.record("surface.release id=%d", s.id)
}

// Config returns the applied configuration and whether the surface is configured.
func (s *Surface) Config() (gpucore.SurfaceConfiguration, bool) {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	return s.config, s.configured
}

// Handle returns the native handle the surface was created for.
func (s *Surface) Handle() gpucore.NativeHandle { return s.handle }

// Counters is a snapshot of a surface's call counts.
type Counters struct {
	Acquires       int
	Presents       int
	Discards       int
	Configures     int
	Unconfigures   int
	Outstanding    int
	MaxOutstanding int
	Pending        int // scripted outcomes not yet consumed
}

// Counters returns the current call counts.
func (s *Surface) Counters() Counters {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	return Counters{
		Acquires:       s.acquires,
		Presents:       s.presents,
		Discards:       s.discards,
		Configures:     s.configures,
		Unconfigures:   s.unconfigures,
		Outstanding:    s.outstanding,
		MaxOutstanding: s.maxOutstanding,
		Pending:        len(s.script),
	}
}

// Released reports whether Release was called.
func (s *Surface) Released() bool {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	return s.released
}

// SurfaceTexture is one acquired image.
type SurfaceTexture struct {
	surface *Surface
	seq     int
	width   uint32
	height  uint32
	done    bool
}

// Seq returns the acquisition sequence number, starting at 1.
func (t *SurfaceTexture) Seq() int { return t.seq }

// Size returns the texture size.
func (t *SurfaceTexture) Size() (width, height uint32) { return t.width, t.height }

// CreateView implements gpucore.SurfaceTexture.
func (t *SurfaceTexture) CreateView() (gpucore.TextureView, error) {
	inst := t.surface.inst
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if t.done {
		return nil, gpucore.ErrReleased
	}
	inst.views++
	return &TextureView{inst: inst, label: fmt.Sprintf("frame %d", t.seq)}, nil
}

// TextureView is an in-memory gpucore.TextureView.
type TextureView struct {
	inst     *Instance
	label    string
	released bool
}

// Label returns a description of what the view points at.
func (v *TextureView) Label() string { return v.label }

// Release implements gpucore.TextureView.
func (v *TextureView) Release() {
	v.inst.mu.Lock()
	defer v.inst.mu.Unlock()
	if v.released {
		return
	}
	v.released = true
	v.inst.views--
}

