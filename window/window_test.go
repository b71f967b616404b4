package window

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func drain(w *Headless) []Event {
	var out []Event
	for {
		select {
		case ev := <-w.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestHeadlessEvents(t *testing.T) {
	w := NewHeadless(400, 300)
	w.SetScaleFactor(2)
	w.Open()
	w.Minimize()
	w.Hide()
	w.Show()
	w.Resize(500, 250)
	w.RequestClose()

	want := []Event{
		{Kind: Ready, Handle: w.Handle(), Width: 800, Height: 600},
		{Kind: Resize},
		{Kind: Suspend},
		{Kind: Resume},
		{Kind: Resize, Width: 1000, Height: 500},
		{Kind: Close},
	}
	got := drain(w)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if w.Handle().Window == 0 {
		t.Error("zero window handle")
	}
}

func TestHeadlessTerminateDropsEvents(t *testing.T) {
	w := NewHeadless(10, 10)
	boom := errors.New("boom")
	w.Terminate(boom)
	w.Terminate(nil)
	if w.RequestClose() {
		t.Error("event sent after Terminate")
	}
	done, err := w.Terminated()
	if !done || err != boom {
		t.Errorf("Terminated() = %v, %v", done, err)
	}
}

func TestHeadlessFullBufferDoesNotBlock(t *testing.T) {
	w := NewHeadless(10, 10)
	for i := range eventBuffer {
		if !w.Resize(i+1, i+1) {
			t.Fatalf("Resize %d dropped before the buffer filled", i)
		}
	}

	done := make(chan bool, 1)
	go func() { done <- w.Resize(999, 999) }()
	select {
	case sent := <-done:
		if sent {
			t.Error("Resize reported success on a full buffer")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Resize blocked on a full buffer")
	}

	if width, height := w.Size(); width != 999 || height != 999 {
		t.Errorf("Size() = %dx%d, want 999x999", width, height)
	}
	if got := w.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
	if got := len(drain(w)); got != eventBuffer {
		t.Errorf("queued events = %d, want %d", got, eventBuffer)
	}
}

func TestPhysicalSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		scale        float64
		wantW, wantH uint32
	}{
		{"unscaled", 800, 600, 1, 800, 600},
		{"retina", 800, 600, 2, 1600, 1200},
		{"fractional", 101, 51, 1.5, 152, 77},
		{"zero scale", 10, 10, 0, 10, 10},
		{"minimized", 0, 0, 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewHeadless(tt.w, tt.h)
			w.SetScaleFactor(tt.scale)
			gw, gh := PhysicalSize(w)
			if gw != tt.wantW || gh != tt.wantH {
				t.Errorf("PhysicalSize() = %dx%d, want %dx%d", gw, gh, tt.wantW, tt.wantH)
			}
		})
	}
}

const sampleScenario = `
name: recover
width: 800
height: 600
steps:
  - tick: 9
    action: close
  - tick: 2
    action: minimize
  - tick: 4
    action: resize
    width: 1024
    height: 768
  - tick: 4
    fault: surface_lost
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(sampleScenario))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}
	if s.Name != "recover" || s.Width != 800 || s.Height != 600 {
		t.Errorf("header = %+v", s)
	}
	var ticks []uint64
	for _, st := range s.Steps {
		ticks = append(ticks, st.Tick)
	}
	want := []uint64{2, 4, 4, 9}
	for i := range want {
		if ticks[i] != want[i] {
			t.Fatalf("ticks = %v, want %v", ticks, want)
		}
	}
	if s.Steps[1].Action != ActionResize || s.Steps[2].Fault != FaultSurfaceLost {
		t.Errorf("equal-tick order not kept: %v", s.Steps)
	}
}

func TestParseScenarioInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "width: [800"},
		{"no size", "steps: []"},
		{"unknown action", "width: 1\nheight: 1\nsteps:\n  - action: explode\n"},
		{"unknown fault", "width: 1\nheight: 1\nsteps:\n  - fault: gremlins\n"},
		{"both", "width: 1\nheight: 1\nsteps:\n  - action: close\n    fault: device_lost\n"},
		{"empty step", "width: 1\nheight: 1\nsteps:\n  - tick: 3\n"},
		{"negative resize", "width: 1\nheight: 1\nsteps:\n  - action: resize\n    width: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("ParseScenario() error = %v, want ErrInvalidScenario", err)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(sampleScenario), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err != nil {
		t.Errorf("LoadScenario() error = %v", err)
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadScenario(missing) succeeded")
	}
}

func TestPlayerAdvance(t *testing.T) {
	s, err := ParseScenario([]byte(sampleScenario))
	if err != nil {
		t.Fatal(err)
	}
	w := s.Window()
	var faults []Fault
	p := NewPlayer(s, w, func(st Step) error {
		faults = append(faults, st.Fault)
		return nil
	})

	for tick := uint64(0); tick <= 3; tick++ {
		if err := p.Advance(tick); err != nil {
			t.Fatal(err)
		}
	}
	if got := drain(w); len(got) != 1 || got[0].Kind != Resize || got[0].Width != 0 {
		t.Errorf("events after tick 3 = %v, want one zero Resize", got)
	}

	// Skipped ticks still apply everything due.
	if err := p.Advance(20); err != nil {
		t.Fatal(err)
	}
	got := drain(w)
	if len(got) != 2 || got[0] != (Event{Kind: Resize, Width: 1024, Height: 768}) || got[1].Kind != Close {
		t.Errorf("events = %v", got)
	}
	if len(faults) != 1 || faults[0] != FaultSurfaceLost {
		t.Errorf("faults = %v", faults)
	}
	if !p.Done() {
		t.Error("Done() = false")
	}
}

func TestPlayerFaultWithoutHandler(t *testing.T) {
	s, err := ParseScenario([]byte("width: 1\nheight: 1\nsteps:\n  - fault: device_lost\n"))
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(s, s.Window(), nil)
	if err := p.Advance(0); err == nil {
		t.Error("Advance() succeeded without a fault handler")
	}
}
