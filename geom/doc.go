// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package geom provides the small amount of 2D geometry the pipeline needs:
// sizes, rectangles, an affine matrix, and the stretch/fit computation that
// maps a shader's logical size into a viewport.
//
// # Coordinate System
//
// Origin (0,0) at top-left, X increases right, Y increases down. Sizes are in
// logical units for shader sizes and in pixels for viewports.
package geom
