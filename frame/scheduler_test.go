// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/crtfx/frame/frametest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() (*Scheduler, *frametest.Clock, *sync.Mutex, *atomic.Int64) {
	var mu sync.Mutex
	var invalidations atomic.Int64
	clock := frametest.New()
	s := NewScheduler(&mu, clock, func() { invalidations.Add(1) })
	return s, clock, &mu, &invalidations
}

func TestSchedulerRunningRearmsEachFrame(t *testing.T) {
	s, clock, mu, inv := newTestScheduler()

	mu.Lock()
	require.True(t, s.Start())
	assert.Equal(t, Running, s.State())
	mu.Unlock()

	for i := 1; i <= 3; i++ {
		assert.Equal(t, 1, clock.Fire())
		assert.Equal(t, int64(i), inv.Load())
		assert.Equal(t, 1, clock.Pending(), "exactly one registration outstanding")
	}
	assert.Equal(t, 4, clock.Requests())
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	s, clock, mu, _ := newTestScheduler()
	mu.Lock()
	s.Start()
	s.Start()
	s.Start()
	mu.Unlock()
	assert.Equal(t, 1, clock.Pending())
}

func TestSchedulerStopPreventsRearm(t *testing.T) {
	s, clock, mu, inv := newTestScheduler()

	mu.Lock()
	s.Start()
	s.Stop()
	s.Stop()
	mu.Unlock()

	fired := clock.FireN(5)
	assert.Equal(t, 1, fired, "only the callback armed before Stop fires")
	assert.Zero(t, inv.Load())
	assert.Zero(t, clock.Pending())
	assert.Equal(t, 1, clock.Requests(), "no re-arm after Stop")

	mu.Lock()
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, uint64(1), s.Stats().Rejected)
	mu.Unlock()
}

func TestSchedulerRestartAfterStop(t *testing.T) {
	s, clock, mu, inv := newTestScheduler()

	mu.Lock()
	s.Start()
	s.Stop()
	s.Start()
	mu.Unlock()
	assert.Equal(t, 1, clock.Pending(), "still-armed callback is reused")

	clock.Fire()
	assert.Equal(t, int64(1), inv.Load())
	assert.Equal(t, 1, clock.Pending())
}

func TestSchedulerDisposeIsTerminal(t *testing.T) {
	s, clock, mu, inv := newTestScheduler()

	mu.Lock()
	s.Start()
	s.Dispose()
	s.Dispose()
	assert.False(t, s.Start())
	assert.Equal(t, Disposed, s.State())
	mu.Unlock()

	clock.FireN(3)
	assert.Zero(t, inv.Load())
	assert.Zero(t, clock.Pending())
}

func TestSchedulerFailedRearmHalts(t *testing.T) {
	s, clock, mu, inv := newTestScheduler()

	mu.Lock()
	s.Start()
	mu.Unlock()

	clock.FailWith(errors.New("surface lost"))
	assert.Equal(t, 1, clock.Fire())
	assert.Equal(t, int64(1), inv.Load(), "the accepted frame still invalidates")
	assert.Zero(t, clock.Pending())

	clock.FailWith(nil)
	assert.Zero(t, clock.FireN(3))

	mu.Lock()
	assert.Equal(t, uint64(1), s.Stats().ArmFailures)
	assert.False(t, s.Armed())
	require.True(t, s.Start(), "Start re-arms a halted loop")
	mu.Unlock()
	assert.Equal(t, 1, clock.Pending())
}

func TestSchedulerStopRacesFrame(t *testing.T) {
	s, clock, mu, inv := newTestScheduler()

	mu.Lock()
	s.Start()
	mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 100 {
			clock.Fire()
		}
	}()
	go func() {
		defer wg.Done()
		mu.Lock()
		s.Stop()
		mu.Unlock()
	}()
	wg.Wait()

	before := inv.Load()
	clock.FireN(5)
	assert.Equal(t, before, inv.Load())
	assert.Zero(t, clock.Pending())
}

func TestStopwatch(t *testing.T) {
	now := time.Unix(100, 0)
	sw := NewStopwatch(func() time.Time { return now })

	assert.Zero(t, sw.Elapsed())
	sw.Start()
	now = now.Add(2 * time.Second)
	assert.Equal(t, 2*time.Second, sw.Elapsed())

	sw.Stop()
	now = now.Add(10 * time.Second)
	assert.Equal(t, 2*time.Second, sw.Elapsed(), "paused time is not counted")

	sw.Start()
	sw.Start()
	now = now.Add(500 * time.Millisecond)
	assert.InDelta(t, 2.5, sw.Seconds(), 1e-6)

	sw.Reset()
	assert.Zero(t, sw.Elapsed())
	assert.False(t, sw.Running())
}

func TestTickerClock(t *testing.T) {
	c := NewTickerClock(200)
	got := make(chan time.Time, 1)
	require.NoError(t, c.RequestFrame(func(ts time.Time) { got <- ts }))

	select {
	case ts := <-got:
		assert.False(t, ts.IsZero())
	case <-time.After(5 * time.Second):
		t.Fatal("frame not delivered")
	}

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.RequestFrame(func(time.Time) {}), ErrClockStopped)
}
