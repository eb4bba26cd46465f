// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package compositor owns the render-side state of a shader visual and the
// command channel that feeds it.
//
// The UI side posts [Command] values through a [Bridge]; a single consumer
// goroutine applies them to a [Handler] in send order. The handler keeps the
// compiled program, uniform store, animation scheduler, last geometry and the
// front copy of the most recent capture behind one mutex, shared with the
// frame scheduler's gate and with Render.
//
// Dispose is terminal. Commands that arrive after it are accepted and
// ignored, since they may already be queued when teardown begins.
package compositor
