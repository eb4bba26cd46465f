// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geom

import (
	"fmt"
	"math"
)

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Sz is a convenience function to create a Size.
func Sz(w, h float64) Size {
	return Size{W: w, H: h}
}

// Valid reports whether both dimensions are strictly positive and finite.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

// Mul scales both dimensions.
func (s Size) Mul(sx, sy float64) Size {
	return Size{W: s.W * sx, H: s.H * sy}
}

// Pixels truncates the size to whole pixels, the way layout bounds are
// converted to buffer dimensions.
func (s Size) Pixels() (w, h int) {
	return int(s.W), int(s.H)
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.W, s.H)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// RectOf returns a rectangle at the origin with the given size.
func RectOf(s Size) Rect {
	return Rect{W: s.W, H: s.H}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// CenterRect returns a rectangle of the given size centered within r.
func (r Rect) CenterRect(s Size) Rect {
	return Rect{
		X: r.X + (r.W-s.W)/2,
		Y: r.Y + (r.H-s.H)/2,
		W: s.W,
		H: s.H,
	}
}

// Intersect returns the overlap of r and o. Disjoint rectangles yield an
// empty rectangle.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// containsEpsilon absorbs the rounding of X+W after an intersection.
const containsEpsilon = 1e-9

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-containsEpsilon && o.Y >= r.Y-containsEpsilon &&
		o.MaxX() <= r.MaxX()+containsEpsilon && o.MaxY() <= r.MaxY()+containsEpsilon
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// FrameGeometry is the layout state consumed by the draw stage: the shader's
// logical size and the viewport's pixel size.
type FrameGeometry struct {
	ShaderSize Size
	Viewport   Size
}

// Valid reports whether both sizes are strictly positive. Frames with invalid
// geometry are skipped rather than drawn degenerately.
func (g FrameGeometry) Valid() bool {
	return g.ShaderSize.Valid() && g.Viewport.Valid()
}
