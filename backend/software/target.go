// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/render"
	"golang.org/x/image/draw"
)

// Target is a CPU-backed render target using *image.RGBA. It grows or
// shrinks to each quad's viewport.
type Target struct {
	mu    sync.Mutex
	img   *image.RGBA
	draws int
}

// NewTarget creates a target with an initial size. Zero is allowed.
func NewTarget(width, height int) *Target {
	return &Target{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewTargetFromImage wraps an existing image. It is used directly until a
// quad with a different viewport arrives.
func NewTargetFromImage(img *image.RGBA) *Target {
	return &Target{img: img}
}

// Width returns the current width in pixels.
func (t *Target) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img.Rect.Dx()
}

// Height returns the current height in pixels.
func (t *Target) Height() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img.Rect.Dy()
}

// Image returns the underlying image. It is overwritten by the next draw.
func (t *Target) Image() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Frame returns a copy of the last rendered frame.
func (t *Target) Frame() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := image.NewRGBA(t.img.Rect)
	copy(out.Pix, t.img.Pix)
	return out
}

// Draws returns the number of quads drawn.
func (t *Target) Draws() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draws
}

// Resize changes the target size, discarding its contents.
func (t *Target) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resize(width, height)
}

func (t *Target) resize(width, height int) {
	if t.img.Rect.Dx() == width && t.img.Rect.Dy() == height {
		return
	}
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Clear fills the target with transparent black.
func (t *Target) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.img.Pix)
}

// DrawQuad implements render.Target.
func (t *Target) DrawQuad(q *render.Quad) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := q.Viewport.Pixels()
	if w <= 0 || h <= 0 {
		return nil
	}
	t.resize(w, h)
	clear(t.img.Pix)

	dst := destRect(q.Placement.Dest).Intersect(t.img.Rect)
	if dst.Empty() {
		return nil
	}

	fx, ok := effectFrom(q)
	switch {
	case q.Image == nil || q.Image.Released():
		drawGradient(t.img, dst, q)
	case !ok:
		src := sourceRect(q.Placement.Source, q.Content, q.Image.Width(), q.Image.Height())
		draw.BiLinear.Scale(t.img, dst, q.Image.RGBA(), src, draw.Src, nil)
	default:
		fx.apply(t.img, dst, q)
	}
	t.draws++
	return nil
}

var _ render.Target = (*Target)(nil)

func destRect(r geom.Rect) image.Rectangle {
	return image.Rect(int(r.X+0.5), int(r.Y+0.5), int(r.MaxX()+0.5), int(r.MaxY()+0.5))
}

// sourceRect maps a rectangle in shader content space onto image pixels.
func sourceRect(r geom.Rect, content geom.Size, iw, ih int) image.Rectangle {
	sx := float64(iw) / content.W
	sy := float64(ih) / content.H
	out := image.Rect(int(r.X*sx), int(r.Y*sy), int(r.MaxX()*sx+0.5), int(r.MaxY()*sy+0.5))
	return out.Intersect(image.Rect(0, 0, iw, ih))
}

// drawGradient writes u into red and v into green.
func drawGradient(img *image.RGBA, dst image.Rectangle, q *render.Quad) {
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			u, v := quadUV(q, float32(x)+0.5, float32(y)+0.5)
			img.SetRGBA(x, y, color.RGBA{R: unorm(u), G: unorm(v), A: 0xff})
		}
	}
}

// quadUV interpolates the quad's uv at viewport pixel (px, py).
func quadUV(q *render.Quad, px, py float32) (u, v float32) {
	d := q.Placement.Dest
	s := q.Placement.Source
	fx := (float64(px) - d.X) / d.W
	fy := (float64(py) - d.Y) / d.H
	u = float32((s.X + fx*s.W) / q.Content.W)
	v = float32((s.Y + fy*s.H) / q.Content.H)
	return u, v
}
