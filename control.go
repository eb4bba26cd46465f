// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/compositor"
	"github.com/gogpu/crtfx/frame"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/internal/logging"
	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/crtfx/shader"
	"github.com/gogpu/crtfx/uniform"
	"github.com/google/uuid"
)

// Host is the environment a Control is attached to. RequestFrame delivers
// display-frame callbacks; Invalidate asks the host to redraw, after which
// it calls Control.Render.
type Host interface {
	frame.Clock
	Invalidate()
}

// Control is the UI-side handle of a CRT visual.
//
// All methods are safe for concurrent use. Render is the render-side entry
// point and may be called from the host's draw goroutine.
type Control struct {
	id   uuid.UUID
	opts options
	attr slog.Attr

	mu       sync.Mutex
	source   capture.Element
	raster   capture.Rasterizer
	shader   string
	uniforms uniform.Values
	viewport geom.Size
	posted   geom.FrameGeometry

	handler  *compositor.Handler
	bridge   *compositor.Bridge
	pipeline *capture.Pipeline
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a detached control.
func New(opts ...Option) *Control {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.New()
	return &Control{
		id:       id,
		opts:     o,
		attr:     slog.String("control", id.String()),
		shader:   o.source,
		uniforms: make(uniform.Values),
	}
}

// logger resolves the package logger on every call so that SetLogger
// reaches controls created before it.
func (c *Control) logger() *slog.Logger {
	return logging.Logger().With(c.attr)
}

// ID identifies the control in log output.
func (c *Control) ID() uuid.UUID { return c.id }

// SetSource binds the element to capture. r rasterizes it; nil selects
// capture.DrawRasterizer. A source can be bound only once.
func (c *Control) SetSource(el capture.Element, r capture.Rasterizer) error {
	if el == nil {
		return ErrNilSource
	}
	if r == nil {
		r = capture.DrawRasterizer{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source != nil {
		return ErrSourceAlreadySet
	}
	c.source = el
	c.raster = r
	if c.bridge != nil {
		c.startCaptureLocked()
		c.postGeometryLocked()
	}
	return nil
}

// Attach connects the control to host, creating the render-side state and
// starting animation and capture.
func (c *Control) Attach(host Host) error {
	if host == nil {
		return ErrNilHost
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bridge != nil {
		return ErrAlreadyAttached
	}

	c.handler = compositor.NewHandler(compositor.HandlerConfig{
		Clock:      host,
		Invalidate: host.Invalidate,
		Compiler:   c.opts.compiler,
		Stretch:    c.opts.stretch,
		Now:        c.opts.now,
		LogAttrs:   []slog.Attr{c.attr},
	})
	c.handler.Uniforms().SetAll(c.uniforms)
	c.bridge = compositor.NewBridge(c.handler, c.opts.queueSize)

	c.posted = c.geometryLocked()
	c.postLocked(compositor.Start(c.shader, c.posted))
	if c.source != nil {
		c.startCaptureLocked()
	}
	c.logger().Info("crtfx: attached", slog.String("geometry", c.posted.Viewport.String()))
	return nil
}

// Detach stops capture, disposes the render-side state and waits for all
// queued commands to be handled. The control can be attached again.
func (c *Control) Detach() {
	c.mu.Lock()
	bridge, cancel, pipeline := c.bridge, c.cancel, c.pipeline
	c.bridge, c.cancel, c.pipeline = nil, nil, nil
	c.mu.Unlock()

	if bridge == nil {
		return
	}
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	if pipeline != nil {
		pipeline.Close()
	}

	_ = bridge.Post(compositor.Dispose())
	bridge.Close()
	c.logger().Info("crtfx: detached")
}

// Layout records the viewport pixel size from a layout pass and forwards
// the new geometry to the render side.
func (c *Control) Layout(viewport geom.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = viewport
	c.postGeometryLocked()
}

// Measure returns the size the control wants within avail.
func (c *Control) Measure(avail geom.Size) geom.Size {
	return c.opts.stretch.Measure(avail, c.ShaderSize())
}

// ShaderSize returns the logical shader size: the source element's size,
// or DefaultShaderSize without a source.
func (c *Control) ShaderSize() geom.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shaderSizeLocked()
}

func (c *Control) shaderSizeLocked() geom.Size {
	if c.source == nil {
		return DefaultShaderSize
	}
	return c.source.Size()
}

func (c *Control) geometryLocked() geom.FrameGeometry {
	return geom.FrameGeometry{ShaderSize: c.shaderSizeLocked(), Viewport: c.viewport}
}

func (c *Control) postGeometryLocked() {
	g := c.geometryLocked()
	if c.bridge == nil || g == c.posted {
		return
	}
	c.posted = g
	c.postLocked(compositor.Update(g))
}

func (c *Control) postLocked(cmd compositor.Command) {
	if err := c.bridge.Post(cmd); err != nil {
		c.logger().Warn("crtfx: command dropped", slog.String("command", cmd.Kind.String()), slog.String("err", err.Error()))
	}
}

// SetUniform stores a uniform value. Keys the active program does not
// declare are kept and ignored while drawing.
func (c *Control) SetUniform(key string, v uniform.Value) {
	if key == "" || !v.IsValid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uniforms[key] = v
	if c.handler != nil {
		c.handler.Uniforms().Set(key, v)
	}
}

// Uniform returns a stored uniform value.
func (c *Control) Uniform(key string) (uniform.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.uniforms[key]
	return v, ok
}

// ApplyAppearance maps the appearance's effect settings onto uniforms.
func (c *Control) ApplyAppearance(a Appearance) {
	for k, v := range a.Uniforms() {
		c.SetUniform(k, v)
	}
}

// Reload replaces the shader source. While attached the new program is
// compiled on the render side; a failing source keeps the current program
// and is reported through LastDiagnostic.
func (c *Control) Reload(src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shader = src
	if c.bridge != nil {
		c.postLocked(compositor.Reload(src))
	}
}

// Pause stops animation without tearing anything down.
func (c *Control) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bridge == nil {
		return ErrNotAttached
	}
	c.postLocked(compositor.Stop())
	return nil
}

// Resume restarts animation after Pause.
func (c *Control) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bridge == nil {
		return ErrNotAttached
	}
	c.posted = c.geometryLocked()
	c.postLocked(compositor.Start(c.shader, c.posted))
	return nil
}

// Sync waits until every command posted so far has been handled.
func (c *Control) Sync(ctx context.Context) error {
	c.mu.Lock()
	b := c.bridge
	c.mu.Unlock()
	if b == nil {
		return ErrNotAttached
	}
	return b.Sync(ctx)
}

// Render draws the current frame into t. It does nothing while detached.
func (c *Control) Render(t render.Target) (render.Result, error) {
	c.mu.Lock()
	h := c.handler
	attached := c.bridge != nil
	c.mu.Unlock()
	if h == nil || !attached {
		return render.SkippedNoProgram, nil
	}
	return h.Render(t)
}

// CaptureNow runs one capture tick synchronously.
func (c *Control) CaptureNow() (*capture.Buffer, error) {
	c.mu.Lock()
	p := c.pipeline
	c.mu.Unlock()
	if p == nil {
		return nil, ErrNotAttached
	}
	return p.Tick()
}

// LastDiagnostic returns the latest shader compile failure, or nil.
func (c *Control) LastDiagnostic() *shader.Diagnostic {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.LastDiagnostic()
}

// Stats reports capture and render counters.
type Stats struct {
	Capture capture.Stats
	Handler compositor.HandlerStats
	Frames  frame.Stats
}

// Stats returns the current counters.
func (c *Control) Stats() Stats {
	c.mu.Lock()
	h, p := c.handler, c.pipeline
	c.mu.Unlock()

	var s Stats
	if p != nil {
		s.Capture = p.Stats()
	}
	if h != nil {
		s.Handler, s.Frames = h.Stats()
	}
	return s
}

func (c *Control) startCaptureLocked() {
	bridge, handler := c.bridge, c.handler
	pub := capture.PublisherFunc(func(buf *capture.Buffer) {
		handler.Publish(buf)
		c.mu.Lock()
		if c.bridge == bridge {
			c.postGeometryLocked()
		}
		c.mu.Unlock()
	})
	c.pipeline = capture.NewPipeline(c.source, c.raster, pub, capture.WithFPS(c.opts.fps))

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	p := c.pipeline
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = p.Run(ctx)
	}()
}
