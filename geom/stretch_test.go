// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitUniformLetterbox(t *testing.T) {
	tests := []struct {
		name     string
		viewport Size
		content  Size
		wantDest Rect
		wantS    float64
	}{
		{"same size", Sz(512, 512), Sz(512, 512), Rect{0, 0, 512, 512}, 1},
		{"wide viewport pillarbox", Sz(800, 400), Sz(200, 200), Rect{200, 0, 400, 400}, 2},
		{"tall viewport letterbox", Sz(400, 800), Sz(200, 100), Rect{0, 300, 400, 200}, 2},
		{"shrink", Sz(100, 100), Sz(400, 200), Rect{0, 25, 100, 50}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Fit(tt.viewport, tt.content, StretchUniform)
			require.True(t, ok)
			assert.InDelta(t, tt.wantDest.X, p.Dest.X, 1e-9)
			assert.InDelta(t, tt.wantDest.Y, p.Dest.Y, 1e-9)
			assert.InDelta(t, tt.wantDest.W, p.Dest.W, 1e-9)
			assert.InDelta(t, tt.wantDest.H, p.Dest.H, 1e-9)
			assert.InDelta(t, tt.wantS, p.ScaleX, 1e-12)
			assert.InDelta(t, tt.wantS, p.ScaleY, 1e-12)
			assert.Equal(t, RectOf(tt.content), p.Source, "uniform fit shows the whole source")
		})
	}
}

func TestFitTransformMapsSourceOntoDest(t *testing.T) {
	p, ok := Fit(Sz(800, 400), Sz(200, 200), StretchUniform)
	require.True(t, ok)

	got := p.Transform.TransformRect(p.Source)
	assert.InDelta(t, p.Dest.X, got.X, 1e-9)
	assert.InDelta(t, p.Dest.Y, got.Y, 1e-9)
	assert.InDelta(t, p.Dest.W, got.W, 1e-9)
	assert.InDelta(t, p.Dest.H, got.H, 1e-9)
}

func TestFitUniformToFillClips(t *testing.T) {
	p, ok := Fit(Sz(400, 200), Sz(100, 100), StretchUniformToFill)
	require.True(t, ok)
	assert.Equal(t, Rect{0, 0, 400, 200}, p.Dest)
	assert.InDelta(t, 4.0, p.ScaleX, 1e-12)
	// Only the middle half of the source is visible vertically.
	assert.InDelta(t, 25.0, p.Source.Y, 1e-9)
	assert.InDelta(t, 50.0, p.Source.H, 1e-9)
}

func TestFitRejectsInvalidGeometry(t *testing.T) {
	cases := []struct {
		viewport, content Size
	}{
		{Sz(0, 100), Sz(10, 10)},
		{Sz(100, 0), Sz(10, 10)},
		{Sz(100, 100), Sz(0, 0)},
		{Sz(-1, 100), Sz(10, 10)},
		{Sz(100, 100), Sz(10, -10)},
	}
	for _, c := range cases {
		_, ok := Fit(c.viewport, c.content, StretchUniform)
		assert.False(t, ok, "viewport=%v content=%v", c.viewport, c.content)
	}
}

func TestFitDestAlwaysInsideViewport(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	stretches := []Stretch{StretchUniform, StretchFill, StretchUniformToFill, StretchNone}
	for i := 0; i < 2000; i++ {
		vp := Sz(1+rng.Float64()*4000, 1+rng.Float64()*4000)
		content := Sz(1+rng.Float64()*4000, 1+rng.Float64()*4000)
		for _, s := range stretches {
			p, ok := Fit(vp, content, s)
			if !ok {
				continue
			}
			if !RectOf(vp).Contains(p.Dest) {
				t.Fatalf("stretch=%v viewport=%v content=%v: dest %v escapes viewport", s, vp, content, p.Dest)
			}
		}
	}
}

func TestStretchMeasure(t *testing.T) {
	assert.Equal(t, Sz(300, 150), StretchUniform.Measure(Sz(300, 600), Sz(200, 100)))
	assert.Equal(t, Sz(300, 600), StretchFill.Measure(Sz(300, 600), Sz(200, 100)))
	assert.Equal(t, Sz(200, 100), StretchNone.Measure(Sz(300, 600), Sz(200, 100)))

	inf := math.Inf(1)
	assert.Equal(t, Sz(200, 100), StretchUniform.Measure(Sz(inf, inf), Sz(200, 100)))
	assert.Equal(t, Sz(400, 200), StretchUniform.Measure(Sz(inf, 200), Sz(200, 100)))
}

func TestParseStretch(t *testing.T) {
	for _, s := range []Stretch{StretchUniform, StretchFill, StretchUniformToFill, StretchNone} {
		got, err := ParseStretch(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStretch("")
	require.NoError(t, err)
	assert.Equal(t, StretchUniform, got)

	_, err = ParseStretch("zoom")
	assert.Error(t, err)

	var s Stretch
	require.NoError(t, s.UnmarshalText([]byte("Fill")))
	assert.Equal(t, StretchFill, s)
}
