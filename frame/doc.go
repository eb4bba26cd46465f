// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frame drives the per-display-frame animation loop.
//
// A [Scheduler] is a two-state machine (stopped, running) with a terminal
// disposed flag. While running, every accepted frame callback re-registers
// for the following frame explicitly and then requests a redraw. A failed
// re-registration halts the loop instead of surfacing an error.
//
// The scheduler shares its lock with the state it animates: Start, Stop
// and Dispose are called with that lock held, and the frame callback
// evaluates its gate under the same lock.
package frame
