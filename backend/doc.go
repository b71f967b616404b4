// Package backend provides a pluggable GPU backend registry.
//
// Every backend turns a concrete GPU API into the interfaces of package
// gpucore. Two backends ship with the module:
//
//   - wgpu: github.com/gogpu/wgpu (Vulkan, Metal, DX12, GLES, software)
//   - headless: an in-memory, deterministic backend with fault injection
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import _ "github.com/CaymanFreeman/Cairn/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, Get() to request a
// specific one by name, or Open() to initialize it and create an
// instance in one step:
//
//	inst, err := backend.Open("wgpu")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Release()
//
// Priority order for Default: wgpu > headless.
package backend
