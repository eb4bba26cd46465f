// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frametest provides a manually driven frame clock for tests.
package frametest

import (
	"sync"
	"time"
)

// Clock is a frame.Clock whose frames are delivered by Fire.
type Clock struct {
	mu       sync.Mutex
	pending  []func(time.Time)
	requests int
	err      error
	now      time.Time
}

// New returns a clock starting at an arbitrary fixed time.
func New() *Clock {
	return &Clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// RequestFrame queues fn for the next Fire, or returns the error set by
// FailWith.
func (c *Clock) RequestFrame(fn func(time.Time)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.requests++
	c.pending = append(c.pending, fn)
	return nil
}

// Fire advances the clock by one 60 Hz frame and runs the callbacks that
// were pending before the call. It returns how many ran.
func (c *Clock) Fire() int {
	c.mu.Lock()
	fns := c.pending
	c.pending = nil
	c.now = c.now.Add(time.Second / 60)
	now := c.now
	c.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// FireN calls Fire n times and returns the total callbacks run.
func (c *Clock) FireN(n int) int {
	total := 0
	for range n {
		total += c.Fire()
	}
	return total
}

// Pending returns the number of queued callbacks.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Requests returns the number of accepted RequestFrame calls.
func (c *Clock) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

// FailWith makes subsequent RequestFrame calls fail with err. A nil err
// restores normal behaviour.
func (c *Clock) FailWith(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}
