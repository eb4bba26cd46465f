// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/crtfx/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#ffa000", want: color.RGBA{R: 0xff, G: 0xa0, A: 0xff}},
		{in: "#fff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "000080", want: color.RGBA{B: 0x80, A: 0xff}},
		{in: "#00000000", want: color.RGBA{}},
		{in: "#12", wantErr: true},
		{in: "#gggggg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextElementSize(t *testing.T) {
	e := newTextElement("ab\nabcd", color.White, color.Black)
	s := e.Size()
	assert.Equal(t, float64(4*7+16), s.W)
	assert.Equal(t, float64(2*13+16), s.H)
}

func TestTextElementDraws(t *testing.T) {
	fg := color.RGBA{R: 0xff, A: 0xff}
	bg := color.RGBA{B: 0xff, A: 0xff}
	e := newTextElement("READY.", fg, bg)

	w, h := e.Size().Pixels()
	buf := capture.NewBuffer(w, h)
	require.NoError(t, capture.DrawRasterizer{}.Rasterize(e, buf))

	img := buf.RGBA()
	assert.Equal(t, bg, img.RGBAAt(0, 0))

	var glyph int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.RGBAAt(x, y) == fg {
				glyph++
			}
		}
	}
	assert.Positive(t, glyph)
	assert.Equal(t, image.Rect(0, 0, w, h), img.Rect)
}
