// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package crtfx renders a live, shader-post-processed CRT effect over a
// continuously updating source image.
//
// A [Control] ties together four moving parts:
//
//   - a capture pipeline that rasterizes the source element into an RGBA
//     buffer at a fixed rate (package capture);
//   - a compositor handler on the render side that owns the compiled WGSL
//     program, the uniform store and the animation loop (package compositor);
//   - a command bridge carrying Start, Update, Stop, Reload and Dispose from
//     the UI side to the render side in order;
//   - a draw stage that letterboxes the shader into the viewport and issues a
//     single quad per frame to a host-supplied target (package render).
//
// Basic usage:
//
//	c := crtfx.New(crtfx.WithFPS(30))
//	_ = c.SetSource(element, nil)
//	c.ApplyAppearance(crtfx.MustSkin("RetroPlasma"))
//	_ = c.Attach(host)            // host supplies frames and redraw requests
//	c.Layout(geom.Sz(1280, 720))  // on every layout pass
//	...
//	c.Render(target)              // whenever the host redraws
//	...
//	c.Detach()
//
// Rendering backends live in backend/native (gogpu/wgpu) and
// backend/software (CPU). Presentation into a gogpu window goes through
// integration/crtcanvas.
//
// # Logging
//
// crtfx is silent by default. Call [SetLogger] to route diagnostics to a
// log/slog logger.
package crtfx
