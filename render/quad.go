// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/shader"
	"github.com/gogpu/crtfx/uniform"
)

// Pipeline-managed uniform names.
const (
	UniformTime            = "iTime"
	UniformResolution      = "iResolution"
	UniformImageResolution = "iImageResolution"
)

// VertexStride is the number of float32 values per quad vertex: clip-space
// position, viewport pixel coordinate and uv, two components each.
const VertexStride = 6

// Quad is one draw request. It is only valid during Target.DrawQuad;
// targets copy anything they keep, in particular the image pixels.
type Quad struct {
	Program *shader.Program

	// Uniforms holds every value visible to the program, pipeline-managed
	// ones included.
	Uniforms uniform.Values

	// Block is the packed uniform block for Program's layout.
	Block []byte

	// Image is the bound input image, nil when none is available.
	Image *capture.Buffer

	Placement geom.Placement
	Viewport  geom.Size
	Content   geom.Size
}

// Vertices returns two triangles covering the destination rectangle.
func (q *Quad) Vertices() []float32 {
	d := q.Placement.Dest
	s := q.Placement.Source
	vw, vh := q.Viewport.W, q.Viewport.H
	cw, ch := q.Content.W, q.Content.H

	corner := func(fx, fy float64) [VertexStride]float32 {
		px := d.X + fx*d.W
		py := d.Y + fy*d.H
		return [VertexStride]float32{
			float32(px/vw*2 - 1),
			float32(1 - py/vh*2),
			float32(px),
			float32(py),
			float32((s.X + fx*s.W) / cw),
			float32((s.Y + fy*s.H) / ch),
		}
	}

	tl, tr := corner(0, 0), corner(1, 0)
	bl, br := corner(0, 1), corner(1, 1)
	out := make([]float32, 0, 6*VertexStride)
	for _, v := range [][VertexStride]float32{tl, bl, tr, tr, bl, br} {
		out = append(out, v[:]...)
	}
	return out
}

// Target executes quads. Implementations must not retain q.Image.
type Target interface {
	DrawQuad(q *Quad) error
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(q *Quad) error

// DrawQuad calls f(q).
func (f TargetFunc) DrawQuad(q *Quad) error { return f(q) }
