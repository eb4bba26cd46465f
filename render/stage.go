// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/internal/logging"
	"github.com/gogpu/crtfx/shader"
	"github.com/gogpu/crtfx/uniform"
)

// Frame is the input of one draw.
type Frame struct {
	Program  *shader.Program
	Uniforms uniform.Values
	Image    *capture.Buffer
	Geometry geom.FrameGeometry
	Stretch  geom.Stretch

	// Time is the pipeline's elapsed running time in seconds.
	Time float32
}

// Result describes what Draw did.
type Result int

const (
	Drawn Result = iota
	SkippedNoProgram
	SkippedGeometry
	SkippedUniforms
	Failed
)

func (r Result) String() string {
	switch r {
	case Drawn:
		return "drawn"
	case SkippedNoProgram:
		return "skipped: no program"
	case SkippedGeometry:
		return "skipped: geometry"
	case SkippedUniforms:
		return "skipped: uniforms"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Stage performs draws. The zero value is ready to use.
type Stage struct{}

// Draw renders f into t with at most one DrawQuad call.
func (Stage) Draw(t Target, f Frame) (Result, error) {
	p := f.Program
	if p == nil || p.Released() {
		return SkippedNoProgram, nil
	}
	g := f.Geometry
	if !g.Valid() {
		logging.Logger().Debug("render: frame skipped", slog.String("reason", "geometry"),
			slog.String("shader", g.ShaderSize.String()), slog.String("viewport", g.Viewport.String()))
		return SkippedGeometry, nil
	}
	pl, ok := geom.Fit(g.Viewport, g.ShaderSize, f.Stretch)
	if !ok {
		return SkippedGeometry, nil
	}

	values := Inject(f.Uniforms, f.Time, g.Viewport, f.Image)
	packed := p.Layout().Pack(values)
	if len(packed.Missing) > 0 {
		logging.Logger().Debug("render: frame skipped", slog.String("reason", "uniforms"),
			slog.Any("missing", packed.Missing))
		return SkippedUniforms, nil
	}
	if len(packed.Mismatched) > 0 {
		logging.Logger().Debug("render: uniform type mismatch ignored", slog.Any("keys", packed.Mismatched))
	}

	q := &Quad{
		Program:   p,
		Uniforms:  values,
		Block:     packed.Data,
		Placement: pl,
		Viewport:  g.Viewport,
		Content:   g.ShaderSize,
	}
	if p.HasImage() {
		q.Image = f.Image
	}
	if err := t.DrawQuad(q); err != nil {
		logging.Logger().Warn("render: draw failed", slog.String("err", err.Error()))
		return Failed, fmt.Errorf("render: draw: %w", err)
	}
	return Drawn, nil
}

// Inject returns a copy of values with the pipeline-managed uniforms set.
// iImageResolution is only present when img is non-nil.
func Inject(values uniform.Values, t float32, viewport geom.Size, img *capture.Buffer) uniform.Values {
	out := make(uniform.Values, len(values)+3)
	for k, v := range values {
		out[k] = v
	}
	out[UniformTime] = uniform.Float(t)
	out[UniformResolution] = uniform.Vec2(float32(viewport.W), float32(viewport.H))
	if img != nil {
		out[UniformImageResolution] = uniform.Vec2(float32(img.Width()), float32(img.Height()))
	} else {
		delete(out, UniformImageResolution)
	}
	return out
}
