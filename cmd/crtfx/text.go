// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/gogpu/crtfx/geom"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textElement is a terminal-like block of text drawn with a bitmap font.
type textElement struct {
	lines   []string
	face    font.Face
	fg, bg  color.Color
	padding int
}

func newTextElement(text string, fg, bg color.Color) *textElement {
	return &textElement{
		lines:   strings.Split(text, "\n"),
		face:    basicfont.Face7x13,
		fg:      fg,
		bg:      bg,
		padding: 8,
	}
}

func (e *textElement) lineHeight() int {
	return e.face.Metrics().Height.Ceil()
}

// Size implements capture.Element.
func (e *textElement) Size() geom.Size {
	w := 0
	for _, l := range e.lines {
		w = max(w, font.MeasureString(e.face, l).Ceil())
	}
	h := len(e.lines) * e.lineHeight()
	return geom.Sz(float64(w+2*e.padding), float64(h+2*e.padding))
}

// Draw implements capture.Drawer.
func (e *textElement) Draw(dst draw.Image) error {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(e.bg), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(e.fg), Face: e.face}
	ascent := e.face.Metrics().Ascent.Ceil()
	for i, l := range e.lines {
		y := b.Min.Y + e.padding + i*e.lineHeight() + ascent
		d.Dot = fixed.P(b.Min.X+e.padding, y)
		d.DrawString(l)
	}
	return nil
}

// parseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func parseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}
