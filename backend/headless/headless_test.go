package headless

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
)

// setup creates an instance with a configured 64x64 surface.
func setup(t *testing.T, opts ...Option) (*Instance, *Surface, *Device) {
	t.Helper()
	inst := New(opts...)
	s, err := inst.CreateSurface(gpucore.NativeHandle{Window: 1})
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	a, err := inst.RequestAdapter(&gpucore.AdapterOptions{CompatibleSurface: s})
	if err != nil {
		t.Fatalf("RequestAdapter() error = %v", err)
	}
	d, err := a.RequestDevice(nil)
	if err != nil {
		t.Fatalf("RequestDevice() error = %v", err)
	}
	cfg := &gpucore.SurfaceConfiguration{
		Width:       64,
		Height:      64,
		Format:      gputypes.TextureFormatBGRA8Unorm,
		PresentMode: gputypes.PresentModeFifo,
	}
	if err := s.Configure(d, cfg); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	return inst, s.(*Surface), d.(*Device)
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendHeadless) {
		t.Fatal("headless backend not registered")
	}
	inst, err := backend.Open(backend.BackendHeadless)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer inst.Release()
	if got := len(inst.Enumerate()); got != 1 {
		t.Errorf("Enumerate() = %d adapters, want 1", got)
	}
}

func TestRegisterWithOptions(t *testing.T) {
	gpu := DefaultAdapter()
	gpu.Info.Name = "Scripted GPU"
	gpu.Info.DeviceType = gputypes.DeviceTypeDiscreteGPU
	Register(WithAdapters(DefaultAdapter(), gpu))
	t.Cleanup(func() { Register() })

	inst, err := backend.Open(backend.BackendHeadless)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer inst.Release()
	infos := inst.Enumerate()
	if len(infos) != 2 || infos[1].Name != "Scripted GPU" {
		t.Errorf("Enumerate() = %+v, want the registered adapters", infos)
	}
}

func TestCreateSurfaceInvalidHandle(t *testing.T) {
	inst := New()
	if _, err := inst.CreateSurface(gpucore.NativeHandle{}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("CreateSurface(zero) error = %v, want ErrInvalidHandle", err)
	}
}

func TestRequestAdapterPreference(t *testing.T) {
	integrated := DefaultAdapter()
	integrated.Info.Name = "igpu"
	integrated.Info.DeviceType = gputypes.DeviceTypeIntegratedGPU
	discrete := DefaultAdapter()
	discrete.Info.Name = "dgpu"
	discrete.Info.DeviceType = gputypes.DeviceTypeDiscreteGPU
	cpu := DefaultAdapter()
	cpu.Info.Name = "cpu"

	tests := []struct {
		name string
		opts gpucore.AdapterOptions
		want string
	}{
		{"none", gpucore.AdapterOptions{}, "igpu"},
		{"high", gpucore.AdapterOptions{PowerPreference: gputypes.PowerPreferenceHighPerformance}, "dgpu"},
		{"low", gpucore.AdapterOptions{PowerPreference: gputypes.PowerPreferenceLowPower}, "igpu"},
		{"fallback", gpucore.AdapterOptions{ForceFallbackAdapter: true}, "cpu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := New(WithAdapters(integrated, discrete, cpu))
			a, err := inst.RequestAdapter(&tt.opts)
			if err != nil {
				t.Fatalf("RequestAdapter() error = %v", err)
			}
			if got := a.Info().Name; got != tt.want {
				t.Errorf("adapter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestAdapterNone(t *testing.T) {
	inst := New(WithAdapters())
	if _, err := inst.RequestAdapter(nil); !errors.Is(err, gpucore.ErrNoAdapter) {
		t.Errorf("RequestAdapter() error = %v, want ErrNoAdapter", err)
	}
}

func TestAcquirePresentCycle(t *testing.T) {
	inst, s, _ := setup(t)

	tex, suboptimal, err := s.AcquireTexture()
	if err != nil || suboptimal {
		t.Fatalf("AcquireTexture() = _, %v, %v", suboptimal, err)
	}
	view, err := tex.CreateView()
	if err != nil {
		t.Fatalf("CreateView() error = %v", err)
	}
	if err := s.Present(tex); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	view.Release()

	if err := s.Present(tex); !errors.Is(err, gpucore.ErrReleased) {
		t.Errorf("second Present() error = %v, want ErrReleased", err)
	}
	c := s.Counters()
	if c.Presents != 1 || c.Outstanding != 0 || c.MaxOutstanding != 1 {
		t.Errorf("Counters() = %+v", c)
	}
	if inst.LiveViews() != 0 {
		t.Errorf("LiveViews() = %d, want 0", inst.LiveViews())
	}
}

func TestScriptedOutcomes(t *testing.T) {
	_, s, _ := setup(t)
	s.Script(
		Outcome{Err: gpucore.ErrTimeout},
		Outcome{Err: gpucore.ErrOutdated},
		Outcome{Suboptimal: true},
	)

	if _, _, err := s.AcquireTexture(); !errors.Is(err, gpucore.ErrTimeout) {
		t.Errorf("1st acquire error = %v, want ErrTimeout", err)
	}
	if _, _, err := s.AcquireTexture(); !errors.Is(err, gpucore.ErrOutdated) {
		t.Errorf("2nd acquire error = %v, want ErrOutdated", err)
	}
	tex, suboptimal, err := s.AcquireTexture()
	if err != nil || !suboptimal {
		t.Fatalf("3rd acquire = _, %v, %v; want suboptimal", suboptimal, err)
	}
	s.Discard(tex)
	if c := s.Counters(); c.Discards != 1 || c.Pending != 0 {
		t.Errorf("Counters() = %+v", c)
	}
}

func TestLoseUntilConfigured(t *testing.T) {
	_, s, d := setup(t)
	s.Lose()
	for range 3 {
		if _, _, err := s.AcquireTexture(); !errors.Is(err, gpucore.ErrLost) {
			t.Fatalf("acquire after Lose error = %v, want ErrLost", err)
		}
	}
	cfg, _ := s.Config()
	if err := s.Configure(d, &cfg); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if _, _, err := s.AcquireTexture(); err != nil {
		t.Errorf("acquire after reconfigure error = %v", err)
	}
}

func TestConfigureRejectAndZero(t *testing.T) {
	_, s, d := setup(t)
	driver := errors.New("driver")
	s.RejectConfigure(driver)

	cfg := gpucore.SurfaceConfiguration{Width: 10, Height: 10}
	if err := s.Configure(d, &cfg); !errors.Is(err, driver) {
		t.Errorf("Configure() error = %v, want driver error", err)
	}
	if err := s.Configure(d, &cfg); err != nil {
		t.Errorf("Configure() after reject error = %v", err)
	}
	cfg.Width = 0
	if err := s.Configure(d, &cfg); !errors.Is(err, gpucore.ErrZeroArea) {
		t.Errorf("Configure(0x10) error = %v, want ErrZeroArea", err)
	}
}

func TestSubmitLatencyAndWaitIdle(t *testing.T) {
	_, _, d := setup(t, WithLatency(2))

	for range 5 {
		enc, err := d.CreateCommandEncoder("frame")
		if err != nil {
			t.Fatalf("CreateCommandEncoder() error = %v", err)
		}
		cb, err := enc.Finish()
		if err != nil {
			t.Fatalf("Finish() error = %v", err)
		}
		if err := d.Queue().Submit(cb); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if d.Pending() != 2 || d.Completed() != 3 {
		t.Errorf("Pending() = %d, Completed() = %d; want 2, 3", d.Pending(), d.Completed())
	}
	if err := d.WaitIdle(); err != nil {
		t.Fatalf("WaitIdle() error = %v", err)
	}
	if d.Pending() != 0 || d.Completed() != 5 {
		t.Errorf("after WaitIdle Pending() = %d, Completed() = %d", d.Pending(), d.Completed())
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	_, _, d := setup(t)
	enc, _ := d.CreateCommandEncoder("")
	cb, _ := enc.Finish()
	if err := d.Queue().Submit(cb); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := d.Queue().Submit(cb); !errors.Is(err, gpucore.ErrReleased) {
		t.Errorf("resubmit error = %v, want ErrReleased", err)
	}
}

func TestDeviceLose(t *testing.T) {
	_, _, d := setup(t)
	var got error
	d.SetLostCallback(func(reason error) { got = reason })

	reason := errors.New("gpu reset")
	d.Lose(reason)
	if !errors.Is(got, reason) {
		t.Errorf("callback reason = %v, want %v", got, reason)
	}
	if _, err := d.CreateCommandEncoder(""); !errors.Is(err, gpucore.ErrDeviceLost) {
		t.Errorf("CreateCommandEncoder() error = %v, want ErrDeviceLost", err)
	}
}

func TestRenderPassRecording(t *testing.T) {
	_, s, d := setup(t)
	tex, _, _ := s.AcquireTexture()
	view, _ := tex.CreateView()
	defer view.Release()

	enc, _ := d.CreateCommandEncoder("frame")
	pass, err := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label:      "main",
		Color:      view,
		ClearColor: gputypes.Color{R: 1, A: 1},
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
	})
	if err != nil {
		t.Fatalf("BeginRenderPass() error = %v", err)
	}
	if _, err := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{Color: view}); !errors.Is(err, ErrPassOpen) {
		t.Errorf("nested BeginRenderPass() error = %v, want ErrPassOpen", err)
	}
	pass.Draw(3, 1, 0, 0)
	if _, err := enc.Finish(); !errors.Is(err, ErrPassOpen) {
		t.Errorf("Finish() with open pass error = %v, want ErrPassOpen", err)
	}
	if err := pass.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := enc.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	_ = s.Present(tex)

	passes := d.Passes()
	if len(passes) != 1 {
		t.Fatalf("Passes() = %d, want 1", len(passes))
	}
	p := passes[0]
	if p.Label != "main" || len(p.Draws) != 1 || p.ClearColor.R != 1 || !strings.HasPrefix(p.Target, "frame") {
		t.Errorf("pass = %+v", p)
	}
}

func TestReleaseLog(t *testing.T) {
	inst, s, d := setup(t)
	s.Release()
	d.Release()
	inst.Release()
	inst.Release()

	events := inst.Events()
	tail := events[len(events)-4:]
	want := []string{"surface.release id=1", "queue.release pending=0", "device.release", "instance.release"}
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, tail[i], want[i])
		}
	}
}

func TestDepthTexture(t *testing.T) {
	_, _, d := setup(t)
	if _, err := d.CreateDepthTexture(8, 8, gputypes.TextureFormatRGBA8Unorm); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("CreateDepthTexture(color) error = %v, want ErrUnsupportedFormat", err)
	}
	v, err := d.CreateDepthTexture(8, 8, gputypes.TextureFormatDepth24Plus)
	if err != nil {
		t.Fatalf("CreateDepthTexture() error = %v", err)
	}
	v.Release()
	if d.DepthTextures() != 1 {
		t.Errorf("DepthTextures() = %d, want 1", d.DepthTextures())
	}
}

func TestInject(t *testing.T) {
	inst := New()
	if err := inst.Inject("surface_lost", ""); !errors.Is(err, ErrNothingToInject) {
		t.Errorf("Inject() before surfaces error = %v", err)
	}

	inst, s, _ := setup(t)
	if err := inst.Inject("gamma_ray", ""); err == nil {
		t.Error("Inject(unknown) error = nil")
	}

	if err := inst.Inject("acquire_timeout", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.AcquireTexture(); !errors.Is(err, gpucore.ErrTimeout) {
		t.Errorf("acquire after timeout fault error = %v", err)
	}

	if err := inst.Inject("surface_lost", ""); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.AcquireTexture(); !errors.Is(err, gpucore.ErrLost) {
		t.Errorf("acquire after lost fault error = %v", err)
	}

	if err := inst.Inject("device_lost", "unplugged"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(strings.Join(inst.Events(), "\n"), `device.lost reason="unplugged"`) {
		t.Errorf("device loss not recorded: %v", inst.Events())
	}
}
