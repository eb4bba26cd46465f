// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/crtfx/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sizedElement struct {
	mu   sync.Mutex
	size geom.Size
}

func (e *sizedElement) Size() geom.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

func (e *sizedElement) resize(w, h float64) {
	e.mu.Lock()
	e.size = geom.Sz(w, h)
	e.mu.Unlock()
}

// fillRasterizer paints every pixel with a counter-derived colour so tests
// can tell captures apart.
type fillRasterizer struct {
	calls int
	err   error
	panic bool
}

func (r *fillRasterizer) Rasterize(_ Element, dst *Buffer) error {
	r.calls++
	if r.panic {
		panic("boom")
	}
	if r.err != nil {
		return r.err
	}
	pix := dst.Pix()
	for i := 0; i < len(pix); i += 4 {
		pix[i] = byte(r.calls)
		pix[i+3] = 0xff
	}
	return nil
}

type recordingPublisher struct {
	bufs []*Buffer
}

func (p *recordingPublisher) Publish(b *Buffer) { p.bufs = append(p.bufs, b) }

func TestTickReallocatesOnResize(t *testing.T) {
	el := &sizedElement{size: geom.Sz(100, 50)}
	pub := &recordingPublisher{}
	p := NewPipeline(el, &fillRasterizer{}, pub)

	first, err := p.Tick()
	require.NoError(t, err)
	assert.Equal(t, 100, first.Width())
	assert.Equal(t, 50, first.Height())

	el.resize(200, 50)
	second, err := p.Tick()
	require.NoError(t, err)
	assert.Equal(t, 200, second.Width())
	assert.Equal(t, 50, second.Height())
	assert.NotEqual(t, first.ID(), second.ID())
	assert.True(t, first.Released(), "old buffer must be released")
	assert.False(t, second.Released())

	require.Len(t, pub.bufs, 2)
	assert.Equal(t, uint64(1), p.Stats().Reallocations)
}

func TestTickSameSizeKeepsIdentity(t *testing.T) {
	el := &sizedElement{size: geom.Sz(64, 32)}
	r := &fillRasterizer{}
	p := NewPipeline(el, r, nil)

	first, err := p.Tick()
	require.NoError(t, err)
	firstPix := &first.Pix()[0]

	second, err := p.Tick()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, first.ID(), second.ID())
	assert.Same(t, firstPix, &second.Pix()[0], "pixel memory must be reused")
	assert.Equal(t, byte(2), second.Pix()[0], "contents must update")
	assert.Equal(t, uint64(0), p.Stats().Reallocations)
}

func TestTickInvalidSizePreservesBuffer(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"zero", 0, 0},
		{"zero width", 0, 50},
		{"zero height", 100, 0},
		{"negative", -5, 20},
		{"sub-pixel", 0.5, 0.5},
		{"huge", 1e6, 1e6},
		{"too wide", MaxDimension + 1, 10},
		{"too many pixels", MaxDimension, MaxDimension},
		{"not a number", math.NaN(), 10},
		{"infinite", math.Inf(1), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := &sizedElement{size: geom.Sz(100, 50)}
			r := &fillRasterizer{}
			pub := &recordingPublisher{}
			p := NewPipeline(el, r, pub)

			prev, err := p.Tick()
			require.NoError(t, err)

			el.resize(tt.w, tt.h)
			got, err := p.Tick()
			assert.ErrorIs(t, err, ErrInvalidSize)
			assert.Nil(t, got)
			assert.Same(t, prev, p.Buffer())
			assert.False(t, prev.Released())
			assert.Equal(t, 1, r.calls, "rasterizer must not run")
			assert.Len(t, pub.bufs, 1, "nothing new published")
			assert.Equal(t, uint64(1), p.Stats().Skipped)
		})
	}
}

func TestTickRasterizeFailure(t *testing.T) {
	tests := []struct {
		name string
		r    *fillRasterizer
	}{
		{"error", &fillRasterizer{}},
		{"panic", &fillRasterizer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := &sizedElement{size: geom.Sz(10, 10)}
			pub := &recordingPublisher{}
			p := NewPipeline(el, tt.r, pub)

			_, err := p.Tick()
			require.NoError(t, err)

			if tt.name == "panic" {
				tt.r.panic = true
			} else {
				tt.r.err = errors.New("device lost")
			}
			_, err = p.Tick()
			require.ErrorIs(t, err, ErrRasterize)
			assert.Len(t, pub.bufs, 1)
			assert.Equal(t, uint64(1), p.Stats().Failures)
		})
	}
}

func TestWithFPS(t *testing.T) {
	p := NewPipeline(&sizedElement{}, &fillRasterizer{}, nil)
	assert.Equal(t, time.Second/DefaultFPS, p.Period())

	fps := 60.0
	p = NewPipeline(&sizedElement{}, &fillRasterizer{}, nil, WithFPS(fps))
	assert.Equal(t, time.Duration(float64(time.Second)/fps), p.Period())

	p = NewPipeline(&sizedElement{}, &fillRasterizer{}, nil, WithFPS(-1), WithPeriod(0))
	assert.Equal(t, time.Second/DefaultFPS, p.Period())
}

func TestRunTicksUntilCancelled(t *testing.T) {
	el := &sizedElement{size: geom.Sz(4, 4)}
	published := make(chan struct{}, 16)
	pub := PublisherFunc(func(*Buffer) {
		select {
		case published <- struct{}{}:
		default:
		}
	})
	p := NewPipeline(el, &fillRasterizer{}, pub, WithPeriod(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	for range 2 {
		select {
		case <-published:
		case <-time.After(5 * time.Second):
			t.Fatal("no capture published")
		}
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestClose(t *testing.T) {
	p := NewPipeline(&sizedElement{size: geom.Sz(2, 2)}, &fillRasterizer{}, nil)
	b, err := p.Tick()
	require.NoError(t, err)
	p.Close()
	assert.True(t, b.Released())
	assert.Nil(t, p.Buffer())
}

func TestDrawRasterizer(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			src.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	el := ImageElement{Image: src}
	assert.Equal(t, geom.Sz(2, 2), el.Size())

	p := NewPipeline(el, DrawRasterizer{}, nil)
	b, err := p.Tick()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, b.RGBA().RGBAAt(1, 1))

	err = DrawRasterizer{}.Rasterize(&sizedElement{size: geom.Sz(1, 1)}, NewBuffer(1, 1))
	assert.ErrorIs(t, err, ErrNotDrawable)
}

func TestBufferCopyAndClone(t *testing.T) {
	a := NewBuffer(2, 1)
	a.Pix()[0] = 7
	b := NewBuffer(2, 1)
	require.True(t, b.CopyFrom(a))
	assert.Equal(t, byte(7), b.Pix()[0])
	assert.False(t, NewBuffer(3, 1).CopyFrom(a))

	c := a.Clone()
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Equal(t, a.Pix(), c.Pix())

	a.Release()
	a.Release()
	assert.True(t, a.Released())
	assert.Equal(t, 2, a.Width())
	assert.Empty(t, a.Pix())
}
