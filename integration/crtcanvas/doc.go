// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package crtcanvas presents crtfx output inside a gogpu window.
//
// A [Canvas] is a render.Target that forwards each quad to a backend target
// and keeps the resulting frame for presentation. On the UI side,
// [Canvas.RenderTo] uploads the latest frame into a GPU texture through
// gpucontext.TextureDrawer and draws it.
//
//	canvas, _ := crtcanvas.New(app.GPUContextProvider())
//	control.Attach(host) // host.Render calls control.Render(canvas)
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    canvas.RenderTo(dc.AsTextureDrawer())
//	})
//
// New shares the provider's device with a backend/native target when the
// provider exposes HAL handles, and falls back to backend/software otherwise.
//
// Textures are created lazily on the first RenderTo and updated in place
// while the frame size is stable. After a resize the old texture is kept
// until the replacement has been written, since in-flight command buffers
// may still sample it.
package crtcanvas
