// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/internal/logging"
)

var (
	// ErrInvalidSize is returned by Tick when the element has a zero or
	// negative dimension, or is larger than MaxDimension or MaxPixels.
	ErrInvalidSize = errors.New("capture: element size out of range")

	// ErrRasterize wraps failures reported (or panics raised) by the
	// Rasterizer.
	ErrRasterize = errors.New("capture: rasterization failed")
)

// DefaultFPS is the capture rate used when none is configured.
const DefaultFPS = 30

// Capture size limits. Larger elements are skipped rather than allocated.
const (
	MaxDimension = 16384
	MaxPixels    = 1 << 26
)

// Element is a visual whose current layout bounds can be queried.
type Element interface {
	Size() geom.Size
}

// Rasterizer renders an element's current visual state into dst, which is
// sized to the element's pixel bounds.
type Rasterizer interface {
	Rasterize(el Element, dst *Buffer) error
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(el Element, dst *Buffer) error

// Rasterize calls f(el, dst).
func (f RasterizerFunc) Rasterize(el Element, dst *Buffer) error { return f(el, dst) }

// Publisher receives every completed capture. The buffer is only valid for
// the duration of the call; implementations copy what they keep.
type Publisher interface {
	Publish(buf *Buffer)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(buf *Buffer)

// Publish calls f(buf).
func (f PublisherFunc) Publish(buf *Buffer) { f(buf) }

// Stats counts pipeline activity.
type Stats struct {
	Ticks          uint64
	Published      uint64
	Skipped        uint64
	Failures       uint64
	Reallocations  uint64
	LastBufferSize geom.Size
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFPS sets the capture rate. Non-positive values are ignored.
func WithFPS(fps float64) Option {
	return func(p *Pipeline) {
		if fps > 0 {
			p.period = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithPeriod sets the interval between ticks directly.
func WithPeriod(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.period = d
		}
	}
}

// Pipeline periodically captures an element and publishes the result.
type Pipeline struct {
	el     Element
	raster Rasterizer
	pub    Publisher
	period time.Duration

	mu    sync.Mutex
	buf   *Buffer
	stats Stats
}

// NewPipeline creates a capture pipeline for el.
func NewPipeline(el Element, r Rasterizer, pub Publisher, opts ...Option) *Pipeline {
	p := &Pipeline{
		el:     el,
		raster: r,
		pub:    pub,
		period: time.Second / DefaultFPS,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Period returns the interval between ticks.
func (p *Pipeline) Period() time.Duration { return p.period }

// Buffer returns the current capture buffer, or nil before the first
// successful allocation.
func (p *Pipeline) Buffer() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf
}

// Stats returns a snapshot of the counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Tick captures one frame. On success the published buffer is returned.
// A skipped tick leaves the current buffer untouched.
func (p *Pipeline) Tick() (*Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Ticks++

	size := p.el.Size()
	if !inRange(size) {
		p.stats.Skipped++
		return nil, fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	w, h := size.Pixels()

	if p.buf == nil || !p.buf.SameSize(w, h) {
		old := p.buf
		p.buf = NewBuffer(w, h)
		p.stats.LastBufferSize = p.buf.Size()
		if old != nil {
			old.Release()
			p.stats.Reallocations++
			logging.Logger().Debug("capture: buffer reallocated",
				slog.Int("width", w), slog.Int("height", h))
		}
	}

	if err := p.rasterize(p.buf); err != nil {
		p.stats.Failures++
		return nil, err
	}

	if p.pub != nil {
		p.pub.Publish(p.buf)
	}
	p.stats.Published++
	return p.buf, nil
}

// inRange reports whether s converts to a positive pixel size within the
// capture limits. NaN fails every comparison.
func inRange(s geom.Size) bool {
	if !(s.W >= 1 && s.H >= 1 && s.W <= MaxDimension && s.H <= MaxDimension) {
		return false
	}
	w, h := s.Pixels()
	return w*h <= MaxPixels
}

func (p *Pipeline) rasterize(dst *Buffer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrRasterize, r)
		}
	}()
	if err := p.raster.Rasterize(p.el, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	return nil
}

// Run ticks at the configured rate until ctx is done. Tick errors are
// logged and never stop the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.Tick(); err != nil {
				level := slog.LevelWarn
				if errors.Is(err, ErrInvalidSize) {
					level = slog.LevelDebug
				}
				logging.Logger().Log(ctx, level, "capture: tick skipped", slog.String("err", err.Error()))
			}
		}
	}
}

// Close releases the pipeline buffer.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf != nil {
		p.buf.Release()
		p.buf = nil
	}
}
