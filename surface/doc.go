// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface keeps a presentable surface consistent with its window.
//
// A [Manager] binds a gpucore.Surface to a native window handle and a
// device.Context, chooses a format, present mode and alpha mode from the
// adapter's capabilities, and applies a [Config] whenever the window size
// changes.
//
// # States
//
//	Unconfigured --Reconfigure(w>0,h>0)--> Configured
//	Configured   --Reconfigure(0, _)-----> Unconfigured
//	Configured   --acquire reports lost--> Lost
//	Lost         --ForceReconfigure------> Configured
//	any          --driver rejects twice--> PermanentlyFailed (Rebind to leave)
//
// A zero-area window (minimized) is always Unconfigured; a Config never
// has a zero width or height.
//
// # Frames
//
// [Manager.AcquireFrame] returns a [Frame] that must be presented or
// dropped before the next acquisition. Acquisition failures are mapped to
// [ErrTimeout], [ErrOutdated] and [ErrLost]; anything else is returned
// wrapped and should be treated as fatal by the caller.
//
// A Manager is used from a single goroutine and is not safe for
// concurrent use.
package surface
