// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package capture rasterizes a source element into an off-screen RGBA
// buffer on a fixed-rate timer and publishes each completed capture.
//
// The pipeline owns exactly one [Buffer]. It is sized to the element's last
// observed bounds and reallocated only when those bounds change; ticks with
// an unchanged size reuse the same buffer. A zero-size element or a failed
// rasterization skips the tick and leaves the previous capture published.
package capture
