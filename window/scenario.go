package window

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Fault names a GPU failure a scenario injects through its fault handler.
type Fault string

// Faults understood by scenarios.
const (
	FaultSurfaceLost     Fault = "surface_lost"
	FaultSurfaceOutdated Fault = "surface_outdated"
	FaultAcquireTimeout  Fault = "acquire_timeout"
	FaultSuboptimal      Fault = "suboptimal"
	FaultDeviceLost      Fault = "device_lost"
	FaultConfigureReject Fault = "configure_reject"
	FaultSubmitFail      Fault = "submit_fail"
)

var knownFaults = map[Fault]bool{
	FaultSurfaceLost:     true,
	FaultSurfaceOutdated: true,
	FaultAcquireTimeout:  true,
	FaultSuboptimal:      true,
	FaultDeviceLost:      true,
	FaultConfigureReject: true,
	FaultSubmitFail:      true,
}

// Scenario actions that drive the window.
const (
	ActionResize   = "resize"
	ActionMinimize = "minimize"
	ActionSuspend  = "suspend"
	ActionResume   = "resume"
	ActionClose    = "close"
)

// ErrInvalidScenario is returned for malformed scenario files.
var ErrInvalidScenario = errors.New("window: invalid scenario")

// Scenario is a scripted window session loaded from YAML:
//
//	name: minimize-restore
//	width: 800
//	height: 600
//	steps:
//	  - tick: 5
//	    action: minimize
//	  - tick: 10
//	    action: resize
//	    width: 1024
//	    height: 768
//	  - tick: 20
//	    fault: surface_lost
//	  - tick: 30
//	    action: close
type Scenario struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Steps  []Step `yaml:"steps"`
}

// Step is one scripted action or fault, applied at a driver tick.
type Step struct {
	Tick   uint64 `yaml:"tick"`
	Action string `yaml:"action,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Fault  Fault  `yaml:"fault,omitempty"`
	Reason string `yaml:"reason,omitempty"`
}

func (s Step) String() string {
	if s.Fault != "" {
		return fmt.Sprintf("tick %d fault %s", s.Tick, s.Fault)
	}
	if s.Action == ActionResize {
		return fmt.Sprintf("tick %d resize %dx%d", s.Tick, s.Width, s.Height)
	}
	return fmt.Sprintf("tick %d %s", s.Tick, s.Action)
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("window: read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario. Steps are sorted by tick,
// keeping file order for equal ticks.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: window size %dx%d", ErrInvalidScenario, s.Width, s.Height)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidScenario, i, err)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].Tick < s.Steps[j].Tick })
	return &s, nil
}

func (s Step) validate() error {
	switch {
	case s.Action != "" && s.Fault != "":
		return errors.New("action and fault are exclusive")
	case s.Fault != "":
		if !knownFaults[s.Fault] {
			return fmt.Errorf("unknown fault %q", s.Fault)
		}
		return nil
	}
	switch s.Action {
	case ActionResize:
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("negative size %dx%d", s.Width, s.Height)
		}
	case ActionMinimize, ActionSuspend, ActionResume, ActionClose:
	case "":
		return errors.New("missing action or fault")
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

// FaultHandler injects a fault into the GPU side of a session.
type FaultHandler func(Step) error

// Player applies a scenario to a Headless window as ticks advance.
type Player struct {
	scenario *Scenario
	win      *Headless
	faults   FaultHandler
	next     int
}

// NewPlayer creates a player. faults may be nil when the scenario has none.
func NewPlayer(s *Scenario, win *Headless, faults FaultHandler) *Player {
	return &Player{scenario: s, win: win, faults: faults}
}

// Window creates the Headless window a scenario starts with.
func (s *Scenario) Window() *Headless {
	return NewHeadless(s.Width, s.Height)
}

// Advance applies every step due at or before tick.
func (p *Player) Advance(tick uint64) error {
	for p.next < len(p.scenario.Steps) {
		st := p.scenario.Steps[p.next]
		if st.Tick > tick {
			return nil
		}
		p.next++
		if err := p.apply(st); err != nil {
			return fmt.Errorf("window: %s: %w", st, err)
		}
	}
	return nil
}

func (p *Player) apply(st Step) error {
	if st.Fault != "" {
		if p.faults == nil {
			return errors.New("no fault handler")
		}
		return p.faults(st)
	}
	var sent bool
	switch st.Action {
	case ActionResize:
		sent = p.win.Resize(st.Width, st.Height)
	case ActionMinimize:
		sent = p.win.Minimize()
	case ActionSuspend:
		sent = p.win.Hide()
	case ActionResume:
		sent = p.win.Show()
	case ActionClose:
		sent = p.win.RequestClose()
	}
	if !sent {
		if done, _ := p.win.Terminated(); !done {
			return errors.New("event dropped, buffer full")
		}
	}
	return nil
}

// Done reports whether every step was applied.
func (p *Player) Done() bool { return p.next >= len(p.scenario.Steps) }
