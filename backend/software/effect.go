// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/crtfx/shader"
)

// Uniform names the CPU effect understands.
const (
	uniformBrightnessBoost        = "brightnessBoost"
	uniformEnableScanlines        = "enableScanlines"
	uniformEnableSurround         = "enableSurround"
	uniformEnableSignalDistortion = "enableSignalDistortion"
	uniformEnableShadows          = "enableShadows"
)

type effect struct {
	time       float32
	boost      float32
	scanlines  bool
	surround   bool
	distortion bool
	shadows    bool
}

// effectFrom reads the CRT parameters from q. It reports false unless q
// runs the built-in program and carries at least one of them; other
// programs cannot be evaluated on the CPU.
func effectFrom(q *render.Quad) (effect, bool) {
	fx := effect{boost: 1}
	if q.Program == nil || q.Program.Source() != shader.DefaultSource() {
		return fx, false
	}
	found := false
	if v, ok := q.Uniforms[uniformBrightnessBoost]; ok {
		fx.boost = v.AsFloat()
		found = true
	}
	flag := func(name string, dst *bool) {
		if v, ok := q.Uniforms[name]; ok {
			*dst = v.AsFloat() > 0.5
			found = true
		}
	}
	flag(uniformEnableScanlines, &fx.scanlines)
	flag(uniformEnableSurround, &fx.surround)
	flag(uniformEnableSignalDistortion, &fx.distortion)
	flag(uniformEnableShadows, &fx.shadows)
	if v, ok := q.Uniforms[render.UniformTime]; ok {
		fx.time = v.AsFloat()
	}
	return fx, found
}

type rgb struct{ r, g, b float32 }

func (c rgb) scale(k float32) rgb { return rgb{c.r * k, c.g * k, c.b * k} }

func (fx effect) apply(img *image.RGBA, dst image.Rectangle, q *render.Quad) {
	src := q.Image
	shadowOffU := 2 / float32(src.Width())
	shadowOffV := 2 / float32(src.Height())

	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		fragY := float32(y) + 0.5
		for x := dst.Min.X; x < dst.Max.X; x++ {
			u, v := quadUV(q, float32(x)+0.5, fragY)
			if fx.surround {
				u, v = curve(u, v)
			}

			col := sample(src, u, v)

			if fx.distortion {
				wobble := math32.Sin(v*400+fx.time*6) * 0.0008
				col.r = sample(src, u+wobble+0.001, v).r
				col.b = sample(src, u-wobble-0.001, v).b
			}
			if fx.shadows {
				sh := sample(src, u-shadowOffU, v-shadowOffV).scale(0.35)
				col = rgb{math32.Max(col.r, sh.r), math32.Max(col.g, sh.g), math32.Max(col.b, sh.b)}
			}
			if fx.scanlines {
				line := 0.5 + 0.5*math32.Sin(fragY*math32.Pi)
				col = col.scale(0.75 + 0.25*line)
			}
			col = col.scale(fx.boost)

			if fx.surround {
				if u < 0 || u > 1 || v < 0 || v > 1 {
					col = rgb{}
				} else {
					ex, ey := u*(1-v), v*(1-u)
					vig := clamp01(math32.Pow(math32.Max(ex*ey*15, 0), 0.25))
					col = col.scale(vig)
				}
			}

			img.SetRGBA(x, y, color.RGBA{R: unorm(col.r), G: unorm(col.g), B: unorm(col.b), A: 0xff})
		}
	}
}

// curve applies the barrel distortion of a curved tube.
func curve(u, v float32) (float32, float32) {
	cx, cy := u*2-1, v*2-1
	ox := math32.Abs(cy) / 6
	oy := math32.Abs(cx) / 4
	cx += cx * ox * ox
	cy += cy * oy * oy
	return cx*0.5 + 0.5, cy*0.5 + 0.5
}

// sample reads src bilinearly at normalized (u, v), clamped to the edge.
func sample(src *capture.Buffer, u, v float32) rgb {
	img := src.RGBA()
	w, h := src.Width(), src.Height()
	fx := clamp(u*float32(w)-0.5, 0, float32(w-1))
	fy := clamp(v*float32(h)-0.5, 0, float32(h-1))
	x0, y0 := int(fx), int(fy)
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	tx, ty := fx-float32(x0), fy-float32(y0)

	p := func(x, y int) rgb {
		c := img.RGBAAt(x, y)
		return rgb{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
	}
	a, b := p(x0, y0), p(x1, y0)
	c, d := p(x0, y1), p(x1, y1)
	lerp := func(a, b, t float32) float32 { return a + (b-a)*t }
	return rgb{
		lerp(lerp(a.r, b.r, tx), lerp(c.r, d.r, tx), ty),
		lerp(lerp(a.g, b.g, tx), lerp(c.g, d.g, tx), ty),
		lerp(lerp(a.b, b.b, tx), lerp(c.b, d.b, tx), ty),
	}
}

func clamp(x, lo, hi float32) float32 {
	return math32.Min(math32.Max(x, lo), hi)
}

func clamp01(x float32) float32 { return clamp(x, 0, 1) }

func unorm(x float32) uint8 {
	return uint8(clamp01(x)*255 + 0.5)
}
