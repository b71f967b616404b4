// Package headless implements the gpucore interfaces in memory.
//
// The backend never touches a GPU. It records every call so that tests
// can assert on the exact sequence of configure, acquire, submit, present
// and release operations, and it lets tests inject the failures a live
// window system produces:
//
//	inst := headless.New()
//	s, _ := inst.CreateSurface(gpucore.NativeHandle{Window: 1})
//	hs := s.(*headless.Surface)
//	hs.Script(headless.Outcome{Err: gpucore.ErrOutdated})
//	hs.Lose()
//	hs.RejectConfigure(errors.New("driver said no"))
//
// Submitted command buffers stay pending until the configured latency is
// exceeded or Device.WaitIdle drains them, which mirrors frames in flight
// on a real queue.
//
// The package registers itself with the backend registry as "headless".
package headless
