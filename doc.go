// Package cairn is the frame orchestration core of a real-time GPU
// application.
//
// It turns an OS window into a stream of presented frames: it selects an
// adapter and creates the device, binds and configures the window surface,
// acquires one image per tick, records the application's draw batch into a
// render pass, submits it and presents it. It recovers from resizes,
// minimization, suspension, lost and outdated surfaces, and stops cleanly
// on device loss.
//
// # Quick Start
//
//	import (
//	    "github.com/CaymanFreeman/Cairn"
//	    _ "github.com/CaymanFreeman/Cairn/backend/wgpu"
//	)
//
//	app := cairn.NewApp(win, cairn.BackendFactory(""),
//	    cairn.WithBatchSource(cairn.BatchFunc(func(frame uint64) *render.Batch {
//	        return render.NewBatch(render.Draw{Vertices: 3})
//	    })),
//	)
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Architecture
//
//   - gpucore: backend-neutral GPU interfaces
//   - backend: backend registry; backend/wgpu and backend/headless implement it
//   - device: adapter selection, device and queue, device loss, drain
//   - surface: surface negotiation, configuration and frame acquisition
//   - render: one render pass per frame from a draw batch
//   - window: window events and the provider contract
//
// The [Orchestrator] owns the state machine. [Orchestrator.Handle] is its
// only transition function for window events and [Orchestrator.Tick]
// renders one frame. [App] runs both on one goroutine.
//
// # Errors
//
// [Classify] sorts errors into Transient (drop the frame), Structural
// (reconfigure the surface) and Fatal (stop). Fatal errors end the run
// as a [*FatalError].
//
// # Logging
//
// cairn is silent by default. Call [SetLogger] to enable logging.
package cairn
