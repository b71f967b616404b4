// Package gpucore defines the backend-neutral GPU interfaces the frame
// orchestration core is written against.
//
// The interfaces cover exactly what presenting a frame needs: an [Instance]
// that creates surfaces and hands out adapters, an [Adapter] that reports
// capabilities and creates a [Device], a [Queue] that accepts command
// buffers, and a [Surface] from which presentable textures are acquired.
//
// # Architecture
//
// Orchestration logic is implemented once against these interfaces, while
// thin adapters translate to a concrete GPU API:
//
//	              +------------------+
//	              |     gpucore      |
//	              | (interfaces+errs)|
//	              +--------+---------+
//	                       |
//	        +--------------+--------------+
//	        |                             |
//	+-------v--------+           +--------v--------+
//	|  backend/wgpu  |           | backend/headless|
//	| (gogpu/wgpu)   |           | (in-memory)     |
//	+----------------+           +-----------------+
//
// # Presentation failures
//
// [Surface.AcquireTexture] and [Surface.Present] report the presentation
// engine's failure taxonomy through the sentinel errors [ErrTimeout],
// [ErrOutdated] and [ErrLost]. Adapters must wrap backend errors so that
// errors.Is matches these sentinels.
//
// Type values (formats, present modes, limits, features) come from
// github.com/gogpu/gputypes so that every backend shares one vocabulary.
package gpucore
