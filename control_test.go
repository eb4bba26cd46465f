// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/frame/frametest"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/crtfx/shader"
	"github.com/gogpu/crtfx/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

const resolutionShader = `struct Uniforms { iResolution: vec2<f32> } @group(0) @binding(0) var<uniform> u: Uniforms;
@fragment fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> { return vec4<f32>(v.frag_coord / u.iResolution, 0.0, 1.0); }`

var fakeCompiler = shader.CompilerFunc(func(src string) ([]uint32, error) {
	if strings.Contains(src, "syntax error") {
		return nil, errors.New("unexpected identifier")
	}
	return []uint32{shader.SPIRVMagic}, nil
})

// testHost renders synchronously into a recording target whenever the
// control asks for a redraw.
type testHost struct {
	*frametest.Clock
	control *Control

	mu    sync.Mutex
	quads []render.Quad
}

func (h *testHost) Invalidate() {
	_, _ = h.control.Render(render.TargetFunc(func(q *render.Quad) error {
		h.mu.Lock()
		h.quads = append(h.quads, *q)
		h.mu.Unlock()
		return nil
	}))
}

func (h *testHost) draws() []render.Quad {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]render.Quad(nil), h.quads...)
}

type box struct {
	mu   sync.Mutex
	size geom.Size
}

func (b *box) Size() geom.Size {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *box) setSize(w, h float64) {
	b.mu.Lock()
	b.size = geom.Sz(w, h)
	b.mu.Unlock()
}

func (b *box) Draw(dst draw.Image) error {
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	return nil
}

func newAttached(t *testing.T, opts ...Option) (*Control, *testHost) {
	t.Helper()
	opts = append([]Option{WithCompiler(fakeCompiler), WithFPS(1)}, opts...)
	c := New(opts...)
	host := &testHost{Clock: frametest.New(), control: c}
	require.NoError(t, c.Attach(host))
	t.Cleanup(c.Detach)
	return c, host
}

func syncBridge(t *testing.T, c *Control) {
	t.Helper()
	require.NoError(t, c.Sync(context.Background()))
}

func TestControlDrawsWithViewportResolution(t *testing.T) {
	c, host := newAttached(t, WithShaderSource(resolutionShader))
	c.Layout(geom.Sz(800, 450))
	syncBridge(t, c)

	require.Equal(t, 1, host.Fire())
	quads := host.draws()
	require.Len(t, quads, 1)
	assert.Equal(t, uniform.Vec2(800, 450), quads[0].Uniforms[render.UniformResolution])
	assert.Equal(t, DefaultShaderSize, quads[0].Content)
}

func TestControlPauseStopsDrawing(t *testing.T) {
	c, host := newAttached(t, WithShaderSource(resolutionShader))
	c.Layout(geom.Sz(100, 100))
	require.NoError(t, c.Pause())
	syncBridge(t, c)

	host.FireN(5)
	assert.Empty(t, host.draws())
	assert.Zero(t, host.Pending())

	require.NoError(t, c.Resume())
	syncBridge(t, c)
	host.Fire()
	assert.Len(t, host.draws(), 1)
}

func TestControlDetachIsTerminal(t *testing.T) {
	c, host := newAttached(t, WithShaderSource(resolutionShader))
	c.Layout(geom.Sz(100, 100))
	c.Detach()
	c.Detach()

	host.FireN(5)
	assert.Empty(t, host.draws())
	res, err := c.Render(render.TargetFunc(func(*render.Quad) error {
		t.Fatal("drew after detach")
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, render.SkippedNoProgram, res)
	assert.ErrorIs(t, c.Pause(), ErrNotAttached)
	assert.ErrorIs(t, c.Sync(context.Background()), ErrNotAttached)
}

func TestControlReattach(t *testing.T) {
	c, host := newAttached(t, WithShaderSource(resolutionShader))
	c.SetUniform("enableScanlines", uniform.Bool(true))
	c.Detach()

	require.NoError(t, c.Attach(host))
	assert.ErrorIs(t, c.Attach(host), ErrAlreadyAttached)
	c.Layout(geom.Sz(10, 10))
	syncBridge(t, c)

	host.FireN(2)
	quads := host.draws()
	require.NotEmpty(t, quads)
	assert.Equal(t, uniform.Bool(true), quads[len(quads)-1].Uniforms["enableScanlines"])
}

func TestControlSetSource(t *testing.T) {
	c := New(WithCompiler(fakeCompiler))
	assert.ErrorIs(t, c.SetSource(nil, nil), ErrNilSource)
	require.NoError(t, c.SetSource(&box{size: geom.Sz(100, 50)}, nil))
	assert.ErrorIs(t, c.SetSource(&box{}, nil), ErrSourceAlreadySet)
	assert.Equal(t, geom.Sz(100, 50), c.ShaderSize())
	assert.ErrorIs(t, c.Attach(nil), ErrNilHost)
}

func TestControlCaptureReallocatesOnResize(t *testing.T) {
	src := &box{size: geom.Sz(100, 50)}
	c, _ := newAttached(t)
	require.NoError(t, c.SetSource(src, nil))

	first, err := c.CaptureNow()
	require.NoError(t, err)
	assert.Equal(t, 100, first.Width())
	assert.Equal(t, 50, first.Height())

	src.setSize(200, 50)
	second, err := c.CaptureNow()
	require.NoError(t, err)
	assert.Equal(t, 200, second.Width())
	assert.NotEqual(t, first.ID(), second.ID())
	assert.True(t, first.Released())

	src.setSize(0, 0)
	_, err = c.CaptureNow()
	assert.ErrorIs(t, err, capture.ErrInvalidSize)
	assert.False(t, second.Released())
}

func TestControlCaptureFeedsShader(t *testing.T) {
	src := &box{size: geom.Sz(64, 32)}
	c, host := newAttached(t)
	require.NoError(t, c.SetSource(src, nil))
	c.ApplyAppearance(MustSkin("RetroPlasma"))
	c.Layout(geom.Sz(640, 480))

	_, err := c.CaptureNow()
	require.NoError(t, err)
	syncBridge(t, c)

	host.Fire()
	quads := host.draws()
	require.Len(t, quads, 1)
	q := quads[0]
	require.NotNil(t, q.Image)
	assert.Equal(t, 64, q.Image.Width())
	assert.Equal(t, uniform.Vec2(64, 32), q.Uniforms[render.UniformImageResolution])
	assert.Equal(t, geom.Sz(64, 32), q.Content)
	assert.True(t, geom.RectOf(q.Viewport).Contains(q.Placement.Dest))
	assert.Equal(t, uniform.Bool(true), q.Uniforms[UniformEnableScanlines])
}

func TestControlReloadKeepsProgramOnError(t *testing.T) {
	c, host := newAttached(t, WithShaderSource(resolutionShader))
	c.Layout(geom.Sz(10, 10))
	syncBridge(t, c)
	host.Fire()
	require.Len(t, host.draws(), 1)
	before := host.draws()[0].Program

	c.Reload("@fragment fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> { syntax error }")
	syncBridge(t, c)
	d := c.LastDiagnostic()
	require.NotNil(t, d)
	assert.NotEmpty(t, d.Message)

	host.Fire()
	quads := host.draws()
	require.Len(t, quads, 2)
	assert.Same(t, before, quads[1].Program)
}

func TestControlMeasure(t *testing.T) {
	c := New()
	assert.Equal(t, geom.Sz(200, 200), c.Measure(geom.Sz(400, 200)))

	c = New(WithStretch(geom.StretchNone))
	assert.Equal(t, DefaultShaderSize, c.Measure(geom.Sz(100, 100)))
}

func TestControlStats(t *testing.T) {
	c, host := newAttached(t, WithShaderSource(resolutionShader))
	c.Layout(geom.Sz(10, 10))
	syncBridge(t, c)
	host.FireN(3)

	s := c.Stats()
	assert.Equal(t, uint64(3), s.Handler.Draws)
	assert.Equal(t, uint64(3), s.Frames.Accepted)
	assert.NotEqual(t, [16]byte{}, [16]byte(c.ID()))
}
