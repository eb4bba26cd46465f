// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader compiles WGSL fragment programs into executable effect
// objects and caches the active one.
//
// A crtfx program is a WGSL module fragment that declares:
//
//   - an optional uniform block: a struct bound as var<uniform> at
//     @group(0) @binding(0) whose members are f32 or vec2/vec3/vec4 of f32
//     in default layout (@align and @size are rejected);
//   - an optional input image named iImage1 (texture_2d<f32>) at binding 1,
//     in group 0, with its sampler at binding 2;
//   - the fragment entry point fs_main taking a VertexOutput.
//
// The shared vertex stage (VertexOutput and vs_main) is prepended by the
// compiler, so user code only supplies the fragment side:
//
//	struct Uniforms { iResolution: vec2<f32> }
//	@group(0) @binding(0) var<uniform> u: Uniforms;
//
//	@fragment
//	fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
//	    return vec4<f32>(v.frag_coord / u.iResolution, 0.0, 1.0);
//	}
//
// Compilation failures are reported as a [*Diagnostic]. The [Cache] keeps
// the last good program active when a reload fails, so a bad hot-reload
// never blanks the display.
package shader
