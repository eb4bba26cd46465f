// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capture

import (
	"image"
	"sync/atomic"

	"github.com/gogpu/crtfx/geom"
)

var bufferIDs atomic.Uint64

// Buffer is an 8-bit RGBA pixel buffer with premultiplied alpha, the
// image.RGBA convention.
type Buffer struct {
	id       uint64
	img      *image.RGBA
	released atomic.Bool
}

// NewBuffer allocates a cleared w×h buffer. Dimensions must be positive.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{
		id:  bufferIDs.Add(1),
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

// ID identifies the allocation. Reallocation always yields a new ID.
func (b *Buffer) ID() uint64 { return b.id }

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Size returns the dimensions as a geom.Size.
func (b *Buffer) Size() geom.Size {
	return geom.Sz(float64(b.Width()), float64(b.Height()))
}

// RGBA exposes the pixels. The image shares memory with the buffer.
func (b *Buffer) RGBA() *image.RGBA { return b.img }

// Pix returns the raw pixel bytes, 4 per pixel, row-major.
func (b *Buffer) Pix() []byte { return b.img.Pix }

// SameSize reports whether the buffer is w×h.
func (b *Buffer) SameSize(w, h int) bool {
	return b.Width() == w && b.Height() == h
}

// CopyFrom copies src's pixels into b. Both must have the same size.
func (b *Buffer) CopyFrom(src *Buffer) bool {
	if !b.SameSize(src.Width(), src.Height()) {
		return false
	}
	copy(b.img.Pix, src.img.Pix)
	return true
}

// Clone returns a new buffer holding a copy of b's pixels.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.Width(), b.Height())
	copy(c.img.Pix, b.img.Pix)
	return c
}

// Release drops the pixel memory. It is safe to call more than once;
// a released buffer keeps its dimensions.
func (b *Buffer) Release() {
	if b.released.Swap(true) {
		return
	}
	b.img = &image.RGBA{Rect: b.img.Rect}
}

// Released reports whether Release was called.
func (b *Buffer) Released() bool { return b.released.Load() }
