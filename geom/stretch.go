// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geom

import (
	"fmt"
	"math"
	"strings"
)

// Stretch selects how a shader's logical size is mapped into a viewport.
type Stretch int

const (
	// StretchUniform scales uniformly so the content fits inside the
	// viewport, letterboxing the remainder. This is the default.
	StretchUniform Stretch = iota

	// StretchFill scales each axis independently to fill the viewport.
	StretchFill

	// StretchUniformToFill scales uniformly so the content covers the
	// viewport; the overflow is clipped.
	StretchUniformToFill

	// StretchNone draws the content at its logical size, centered.
	StretchNone
)

var stretchNames = [...]string{
	StretchUniform:       "uniform",
	StretchFill:          "fill",
	StretchUniformToFill: "uniform-to-fill",
	StretchNone:          "none",
}

func (s Stretch) String() string {
	if s < 0 || int(s) >= len(stretchNames) {
		return fmt.Sprintf("Stretch(%d)", int(s))
	}
	return stretchNames[s]
}

// ParseStretch parses a stretch name as printed by String. The empty string
// selects StretchUniform.
func ParseStretch(name string) (Stretch, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StretchUniform, nil
	}
	for i, n := range stretchNames {
		if n == name {
			return Stretch(i), nil
		}
	}
	return StretchUniform, fmt.Errorf("geom: unknown stretch %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stretch) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stretch) UnmarshalText(b []byte) error {
	v, err := ParseStretch(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Scaling returns the per-axis scale factors that map content into avail.
func (s Stretch) Scaling(avail, content Size) (sx, sy float64) {
	if !content.Valid() {
		return 1, 1
	}
	sx = avail.W / content.W
	sy = avail.H / content.H
	if math.IsInf(avail.W, 1) {
		sx = sy
	}
	if math.IsInf(avail.H, 1) {
		sy = sx
	}
	switch s {
	case StretchFill:
		return sx, sy
	case StretchUniformToFill:
		m := math.Max(sx, sy)
		return m, m
	case StretchNone:
		return 1, 1
	default:
		m := math.Min(sx, sy)
		return m, m
	}
}

// Measure returns the size content occupies when stretched into avail.
// Layout uses it to size the owning element.
func (s Stretch) Measure(avail, content Size) Size {
	if math.IsInf(avail.W, 1) && math.IsInf(avail.H, 1) {
		return content
	}
	sx, sy := s.Scaling(avail, content)
	return content.Mul(sx, sy)
}

// Placement is the result of fitting a shader's logical rectangle into a
// viewport.
type Placement struct {
	// Dest is the destination rectangle in viewport pixels. It is always
	// contained in the viewport rectangle.
	Dest Rect

	// Source is the part of the logical shader rectangle visible in Dest.
	Source Rect

	// ScaleX and ScaleY map source units to destination pixels.
	ScaleX, ScaleY float64

	// Transform maps source coordinates to viewport coordinates.
	Transform Matrix
}

// Fit computes the placement of a shader of logical size content inside a
// viewport. It reports false when either size is not strictly positive, or
// when the clipped destination is empty.
func Fit(viewport, content Size, stretch Stretch) (Placement, bool) {
	if !viewport.Valid() || !content.Valid() {
		return Placement{}, false
	}

	sx, sy := stretch.Scaling(viewport, content)
	if sx <= 0 || sy <= 0 {
		return Placement{}, false
	}

	vp := RectOf(viewport)
	dest := vp.CenterRect(content.Mul(sx, sy)).Intersect(vp)
	if dest.Empty() {
		return Placement{}, false
	}
	src := RectOf(content).CenterRect(dest.Size().Mul(1/sx, 1/sy))

	m := Translate(dest.X, dest.Y).
		Multiply(Scale(sx, sy)).
		Multiply(Translate(-src.X, -src.Y))

	return Placement{
		Dest:      dest,
		Source:    src,
		ScaleX:    sx,
		ScaleY:    sy,
		Transform: m,
	}, true
}
