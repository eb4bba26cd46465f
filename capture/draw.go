// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package capture

import (
	"errors"
	"image"

	"github.com/gogpu/crtfx/geom"
	"golang.org/x/image/draw"
)

// ErrNotDrawable is returned by DrawRasterizer for elements that do not
// implement Drawer.
var ErrNotDrawable = errors.New("capture: element cannot draw itself")

// Drawer is an element that paints itself into an image whose bounds match
// its pixel size.
type Drawer interface {
	Element
	Draw(dst draw.Image) error
}

// DrawRasterizer rasterizes Drawer elements. The buffer is cleared to
// transparent before each draw.
type DrawRasterizer struct{}

// Rasterize implements Rasterizer.
func (DrawRasterizer) Rasterize(el Element, dst *Buffer) error {
	d, ok := el.(Drawer)
	if !ok {
		return ErrNotDrawable
	}
	img := dst.RGBA()
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return d.Draw(img)
}

// ImageElement is an element backed by a fixed image. It is useful for
// static sources and tests.
type ImageElement struct {
	Image image.Image
}

// Size implements Element.
func (e ImageElement) Size() geom.Size {
	b := e.Image.Bounds()
	return geom.Sz(float64(b.Dx()), float64(b.Dy()))
}

// Draw paints the image into dst, scaling when the bounds differ.
func (e ImageElement) Draw(dst draw.Image) error {
	sb, db := e.Image.Bounds(), dst.Bounds()
	if sb.Size() == db.Size() {
		draw.Draw(dst, db, e.Image, sb.Min, draw.Over)
		return nil
	}
	draw.ApproxBiLinear.Scale(dst, db, e.Image, sb, draw.Over, nil)
	return nil
}
