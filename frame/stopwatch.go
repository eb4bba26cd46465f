// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import "time"

// Stopwatch measures pausable monotonic elapsed time. It is not safe for
// concurrent use; callers guard it with their own lock.
type Stopwatch struct {
	now     func() time.Time
	started time.Time
	elapsed time.Duration
	running bool
}

// NewStopwatch creates a stopped stopwatch. A nil now selects time.Now.
func NewStopwatch(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now}
}

// Start resumes timing. Starting a running stopwatch does nothing.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.started = s.now()
	s.running = true
}

// Stop pauses timing, keeping the accumulated time.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	s.elapsed += s.now().Sub(s.started)
	s.running = false
}

// Reset zeroes the accumulated time and stops the stopwatch.
func (s *Stopwatch) Reset() {
	s.elapsed = 0
	s.running = false
}

// Running reports whether the stopwatch is timing.
func (s *Stopwatch) Running() bool { return s.running }

// Elapsed returns the accumulated running time.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.elapsed + s.now().Sub(s.started)
	}
	return s.elapsed
}

// Seconds returns Elapsed in seconds as a shader-friendly float32.
func (s *Stopwatch) Seconds() float32 {
	return float32(s.Elapsed().Seconds())
}
