// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtcanvas

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/crtfx/backend/native"
	"github.com/gogpu/crtfx/backend/software"
	"github.com/gogpu/crtfx/internal/logging"
	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/gpucontext"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("crtcanvas: canvas is closed")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("crtcanvas: nil DeviceProvider")

	// ErrNilTarget is returned when a nil backend target is passed.
	ErrNilTarget = errors.New("crtcanvas: nil target")

	// ErrInvalidRenderer is returned when the draw context has no texture creator.
	ErrInvalidRenderer = errors.New("crtcanvas: draw context has no TextureCreator")

	// ErrInvalidTexture is returned when a created texture is not drawable.
	ErrInvalidTexture = errors.New("crtcanvas: texture does not implement gpucontext.Texture")
)

// FrameTarget is a render target whose output can be read back.
// Both backend/native and backend/software targets implement it.
type FrameTarget interface {
	render.Target
	Frame() *image.RGBA
}

// textureDestroyer matches gogpu's Texture.Destroy.
type textureDestroyer interface {
	Destroy()
}

type textureUpdater interface {
	UpdateData(data []byte) error
}

// createFunc creates a GPU texture from RGBA pixels.
type createFunc func(width, height int, data []byte) (any, error)

// Canvas is a render.Target whose output is drawn into a gogpu window.
//
// DrawQuad may be called from the render goroutine while RenderTo runs on
// the UI thread.
type Canvas struct {
	mu sync.Mutex

	target   FrameTarget
	provider gpucontext.DeviceProvider
	owned    bool

	texture    any // created lazily by the first RenderTo
	oldTexture any // awaiting deferred destruction
	dirty      bool
	width      int
	height     int
	closed     bool
}

// New creates a canvas sharing the provider's GPU device. When the
// provider does not expose HAL handles the canvas renders on the CPU.
func New(provider gpucontext.DeviceProvider) (*Canvas, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	var target FrameTarget
	nt, err := native.NewTargetFromProvider(provider)
	if err != nil {
		logging.Logger().Info("crtcanvas: using software target", slog.String("reason", err.Error()))
		target = software.NewTarget(0, 0)
	} else {
		target = nt
	}
	c := NewWithTarget(target)
	c.provider = provider
	c.owned = true
	return c, nil
}

// NewWithTarget creates a canvas around an existing backend target. The
// target is not closed by Close.
func NewWithTarget(target FrameTarget) *Canvas {
	return &Canvas{target: target}
}

// Target returns the backend target.
func (c *Canvas) Target() FrameTarget {
	return c.target
}

// Provider returns the DeviceProvider associated with this canvas.
// Returns nil if the canvas is closed or was created with NewWithTarget.
func (c *Canvas) Provider() gpucontext.DeviceProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.provider
}

// DrawQuad implements render.Target.
func (c *Canvas) DrawQuad(q *render.Quad) error {
	if c.target == nil {
		return ErrNilTarget
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrCanvasClosed
	}

	if err := c.target.DrawQuad(q); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
	return nil
}

// IsDirty reports whether a frame was drawn since the last upload.
func (c *Canvas) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Size returns the size of the last uploaded frame.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Texture returns the current texture without flushing, nil before the
// first frame.
func (c *Canvas) Texture() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.texture
}

// RenderTo uploads the latest frame if needed and draws it at (0, 0).
func (c *Canvas) RenderTo(dc gpucontext.TextureDrawer) error {
	return c.RenderToPosition(dc, 0, 0)
}

// RenderToPosition uploads the latest frame if needed and draws it at (x, y).
// It is a no-op until the first frame has been drawn.
func (c *Canvas) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	create := func(w, h int, data []byte) (any, error) {
		creator := dc.TextureCreator()
		if creator == nil {
			return nil, ErrInvalidRenderer
		}
		return creator.NewTextureFromRGBA(w, h, data)
	}
	tex, err := c.flush(create)
	if err != nil || tex == nil {
		return err
	}

	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// flush uploads the target's frame when dirty and returns the texture
// to draw, or nil when nothing has been rendered yet.
func (c *Canvas) flush(create createFunc) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCanvasClosed
	}
	if !c.dirty {
		return c.texture, nil
	}

	frame := c.target.Frame()
	if frame == nil {
		return c.texture, nil
	}
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if w <= 0 || h <= 0 {
		return c.texture, nil
	}

	if c.texture != nil && (w != c.width || h != c.height) {
		c.destroy(c.oldTexture)
		c.oldTexture = c.texture
		c.texture = nil
	}
	c.width, c.height = w, h

	if c.texture != nil {
		if u, ok := c.texture.(textureUpdater); ok {
			if err := u.UpdateData(frame.Pix); err != nil {
				return nil, fmt.Errorf("crtcanvas: texture update failed: %w", err)
			}
		}
		c.dirty = false
		return c.texture, nil
	}

	tex, err := create(w, h, frame.Pix)
	if err != nil {
		return nil, fmt.Errorf("crtcanvas: NewTextureFromRGBA failed: %w", err)
	}
	// image.RGBA is premultiplied.
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	c.texture = tex
	c.dirty = false

	// Creating the texture waited for the GPU, so the old one is idle.
	c.destroy(c.oldTexture)
	c.oldTexture = nil
	return tex, nil
}

func (c *Canvas) destroy(tex any) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// Close releases the textures, and the backend target if the canvas
// created it. Close is idempotent.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.destroy(c.oldTexture)
	c.destroy(c.texture)
	c.oldTexture, c.texture = nil, nil

	if nt, ok := c.target.(*native.Target); ok && c.owned {
		nt.Close()
	}
	c.provider = nil
	return nil
}
