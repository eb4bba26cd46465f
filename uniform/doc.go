// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package uniform implements the uniform store: named, tagged shader values
// that persist independently of the shader program consuming them.
//
// Values are kept in an open-ended string-keyed mapping rather than a fixed
// struct so shaders and configuration can evolve separately. A program's
// declared uniform block is described by a [Layout]; [Layout.Pack] copies the
// matching values into the byte block the GPU reads, ignoring keys the
// program does not declare.
package uniform
