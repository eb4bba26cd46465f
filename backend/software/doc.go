// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software is a CPU render target for hosts without a GPU.
//
// It cannot execute WGSL. Instead it reproduces the default CRT program
// from the uniforms found on each quad: the source image is resampled into
// the destination rectangle and the curvature, scanline, shadow, signal
// distortion and brightness terms are evaluated per pixel. Custom
// programs, and quads without any CRT uniforms, are a plain bilinear blit;
// quads without an image show a uv gradient so that geometry remains
// visible.
package software
