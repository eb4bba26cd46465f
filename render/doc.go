// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render turns one accepted frame into a single shader-quad draw.
//
// [Stage.Draw] fits the shader's logical rectangle into the viewport,
// injects the pipeline-managed uniforms (iTime, iResolution and, when an
// image is bound, iImageResolution), packs the program's uniform block and
// hands the resulting [Quad] to a [Target]. Frames without a program,
// with invalid geometry, or with unset declared uniforms are skipped.
package render
