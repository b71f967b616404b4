package cairn

import (
	"context"
	"sync"
	"time"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
	"github.com/CaymanFreeman/Cairn/window"
)

// InstanceFactory creates the GPU instance an App renders with.
type InstanceFactory func() (gpucore.Instance, error)

// BackendFactory returns an InstanceFactory opening the named registered
// backend. An empty name selects the highest priority backend.
func BackendFactory(name string) InstanceFactory {
	return func() (gpucore.Instance, error) { return backend.Open(name) }
}

// App drives one window: it pumps window events and ticks the
// orchestrator at the frame interval on a single goroutine.
type App struct {
	win     window.Provider
	factory InstanceFactory
	opts    []Option

	mu   sync.Mutex
	orch *Orchestrator
	stop chan struct{}
	once sync.Once
}

// NewApp creates an App. Nothing is allocated on the GPU until Initialize.
func NewApp(win window.Provider, factory InstanceFactory, opts ...Option) *App {
	return &App{
		win:     win,
		factory: factory,
		opts:    opts,
		stop:    make(chan struct{}),
	}
}

// Initialize creates the GPU instance and the orchestrator. Device and
// surface are created when the window reports Ready.
func (a *App) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.orch != nil {
		return nil
	}
	inst, err := a.factory()
	if err != nil {
		fe := &FatalError{Op: "instance", Err: err}
		Logger().Error("cairn: backend unavailable", "err", err)
		a.win.Terminate(fe)
		return fe
	}
	a.orch = NewOrchestrator(inst, a.win, a.opts...)
	return nil
}

// Orchestrator returns the orchestrator, or nil before Initialize.
func (a *App) Orchestrator() *Orchestrator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.orch
}

// Shutdown asks Run to drain and return. Safe from any goroutine.
func (a *App) Shutdown() {
	a.once.Do(func() { close(a.stop) })
}

// Run initializes if needed and processes events and ticks until the
// orchestrator terminates. It returns the terminal error, or nil after a
// close request, Shutdown or cancellation of ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(); err != nil {
		return err
	}
	o := a.Orchestrator()

	interval := o.opts.frameInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := a.win.Events()
	done := ctx.Done()
	stop := a.stop
	var tick uint64

	o.log.Info("cairn: running", "interval", interval)
	for o.State() != Terminated {
		select {
		case <-done:
			done = nil
			o.RequestShutdown()
			_ = o.Tick()

		case <-stop:
			stop = nil
			o.RequestShutdown()
			_ = o.Tick()

		case ev, ok := <-events:
			if !ok {
				events = nil
				o.RequestShutdown()
				_ = o.Tick()
				continue
			}
			_ = o.Handle(ev)

		case <-ticker.C:
			tick++
			if o.opts.tickHook != nil {
				o.opts.tickHook(tick)
			}
			_ = o.Tick()
		}
	}

	return o.Err()
}

// Stats returns the orchestrator's counters.
func (a *App) Stats() Stats {
	if o := a.Orchestrator(); o != nil {
		return o.Stats()
	}
	return Stats{}
}
