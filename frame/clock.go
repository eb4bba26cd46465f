// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"errors"
	"sync"
	"time"
)

// ErrClockStopped is returned by RequestFrame after the clock is closed.
var ErrClockStopped = errors.New("frame: clock stopped")

// Clock delivers one-shot next-frame callbacks. Callbacks must be invoked
// asynchronously, never from inside RequestFrame.
type Clock interface {
	RequestFrame(fn func(time.Time)) error
}

// TickerClock is a Clock paced by a time.Ticker, for hosts without a
// display-synchronised frame source.
type TickerClock struct {
	mu      sync.Mutex
	pending []func(time.Time)
	stopped bool

	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewTickerClock starts a clock delivering frames at fps.
func NewTickerClock(fps float64) *TickerClock {
	if fps <= 0 {
		fps = 60
	}
	c := &TickerClock{
		ticker: time.NewTicker(time.Duration(float64(time.Second) / fps)),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *TickerClock) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case t := <-c.ticker.C:
			c.mu.Lock()
			fns := c.pending
			c.pending = nil
			c.mu.Unlock()
			for _, fn := range fns {
				fn(t)
			}
		}
	}
}

// RequestFrame registers fn for the next tick.
func (c *TickerClock) RequestFrame(fn func(time.Time)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrClockStopped
	}
	c.pending = append(c.pending, fn)
	return nil
}

// Close stops the clock and drops pending callbacks. It waits for an
// in-progress delivery to finish.
func (c *TickerClock) Close() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.pending = nil
	c.mu.Unlock()

	c.ticker.Stop()
	close(c.done)
	c.wg.Wait()
}
