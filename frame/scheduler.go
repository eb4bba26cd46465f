// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/crtfx/internal/logging"
)

// State is the scheduler's run state.
type State int

const (
	Stopped State = iota
	Running
	Disposed
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Stats counts frame callbacks.
type Stats struct {
	Accepted      uint64
	Rejected      uint64
	ArmFailures   uint64
	Registrations uint64
}

// Scheduler is the animation loop state machine.
type Scheduler struct {
	mu         sync.Locker
	clock      Clock
	invalidate func()

	running  bool
	disposed bool
	armed    bool
	stats    Stats
}

// NewScheduler creates a stopped scheduler. mu is the lock shared with the
// animated state; invalidate is called outside it once per accepted frame.
func NewScheduler(mu sync.Locker, clock Clock, invalidate func()) *Scheduler {
	return &Scheduler{mu: mu, clock: clock, invalidate: invalidate}
}

// Start enters the running state and arms the next frame. The caller must
// hold the lock. It reports false if the scheduler is disposed or the
// frame could not be armed.
func (s *Scheduler) Start() bool {
	if s.disposed {
		return false
	}
	s.running = true
	return s.armLocked()
}

// Stop leaves the running state. An already-armed callback still fires
// but is rejected by the gate. The caller must hold the lock.
func (s *Scheduler) Stop() {
	s.running = false
}

// Dispose stops the scheduler for good. The caller must hold the lock.
func (s *Scheduler) Dispose() {
	s.running = false
	s.disposed = true
}

// State returns the current state. The caller must hold the lock.
func (s *Scheduler) State() State {
	switch {
	case s.disposed:
		return Disposed
	case s.running:
		return Running
	default:
		return Stopped
	}
}

// Armed reports whether a frame callback is outstanding. The caller must
// hold the lock.
func (s *Scheduler) Armed() bool { return s.armed }

// Stats returns the frame counters. The caller must hold the lock.
func (s *Scheduler) Stats() Stats { return s.stats }

func (s *Scheduler) armLocked() bool {
	if s.armed {
		return true
	}
	if s.clock == nil {
		return false
	}
	if err := s.clock.RequestFrame(s.onFrame); err != nil {
		s.stats.ArmFailures++
		logging.Logger().Warn("frame: re-arm failed, animation halted", slog.String("err", err.Error()))
		return false
	}
	s.armed = true
	s.stats.Registrations++
	return true
}

func (s *Scheduler) onFrame(time.Time) {
	s.mu.Lock()
	s.armed = false
	if !s.running || s.disposed {
		s.stats.Rejected++
		state := s.State()
		s.mu.Unlock()
		logging.Logger().Debug("frame: callback rejected", slog.String("state", state.String()))
		return
	}
	s.stats.Accepted++
	s.armLocked()
	s.mu.Unlock()

	if s.invalidate != nil {
		s.invalidate()
	}
}
