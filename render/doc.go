// Copyright 2026 The Cairn Authors
// SPDX-License-Identifier: MIT

// Package render turns one frame's draw commands into one command buffer.
//
// The package does not know what a draw command draws. A [Command] is
// anything that can record itself into a gpucore.RenderPass; a [Batch] is
// the ordered list of commands application logic supplies for a frame.
//
// # Encoding
//
// [Builder.Encode] records exactly one render pass into the target's view:
//
//	clear (batch color or builder default)
//	viewport + scissor covering the target
//	commands, in batch order
//	end pass, finish encoder
//
// Commands that implement [Referencer] have their resources checked before
// encoding begins. An invalid or destroyed resource, or a command that
// fails to encode, yields an [*EncodingError] and the partially recorded
// encoder is discarded.
//
// # Batches are single use
//
// A Batch is consumed by the first Encode that sees it, successful or not.
// Encoding it again returns [ErrBatchConsumed].
//
// # Usage
//
//	b := render.NewBuilder(dc, render.WithDepth(gputypes.TextureFormatDepth24Plus))
//	defer b.Release()
//
//	batch := render.NewBatch(render.Draw{Vertices: 3, Instances: 1})
//	cb, err := b.Encode(frame, batch)
//	if err != nil {
//	    frame.Drop()
//	    return err
//	}
//	err = dc.GPUQueue().Submit(cb)
package render
