// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native executes crtfx shader quads on the GPU through the
// gogpu/wgpu HAL.
//
// A [Target] owns an RGBA8 render texture sized to the viewport. Each
// DrawQuad uploads the captured image and the packed uniform block, runs the
// program's SPIR-V as a single render pass and reads the result back into
// an [image.RGBA] that hosts can present or encode.
//
// Pipelines are built per program and rebuilt only when the program
// changes. The input texture is reallocated only when the capture size
// changes.
//
// Build with the nogpu tag to exclude the Vulkan backend; NewTarget then
// always fails and hosts fall back to backend/software.
package native
