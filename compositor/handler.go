// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/frame"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/internal/logging"
	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/crtfx/shader"
	"github.com/gogpu/crtfx/uniform"
)

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// Clock delivers frame callbacks. Required for animation.
	Clock frame.Clock

	// Invalidate is called once per accepted frame, outside the lock.
	// Hosts typically respond by calling Render.
	Invalidate func()

	// Compiler compiles shader programs. Nil selects shader.NagaCompiler.
	Compiler shader.Compiler

	// Stretch selects the fit mode. The zero value is geom.StretchUniform.
	Stretch geom.Stretch

	// Now is the time source for iTime. Nil selects time.Now.
	Now func() time.Time

	// Logger replaces the package logger. Nil resolves the package logger
	// at each log call, so SetLogger applies to running handlers.
	Logger *slog.Logger

	// LogAttrs are added to every log line.
	LogAttrs []slog.Attr
}

// HandlerStats counts handler activity.
type HandlerStats struct {
	Commands  uint64
	Ignored   uint64
	Published uint64
	Draws     uint64
	Skipped   uint64
}

// Handler is the render-side state of one visual.
type Handler struct {
	mu sync.Mutex

	cache    *shader.Cache
	store    *uniform.Store
	sched    *frame.Scheduler
	watch    *frame.Stopwatch
	stage    render.Stage
	stretch  geom.Stretch
	geometry geom.FrameGeometry
	front    *capture.Buffer
	log      *slog.Logger
	attrs    []any
	stats    HandlerStats
}

// NewHandler creates a stopped handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		cache:   shader.NewCache(cfg.Compiler),
		store:   uniform.NewStore(),
		watch:   frame.NewStopwatch(cfg.Now),
		stretch: cfg.Stretch,
		log:     cfg.Logger,
	}
	for _, a := range cfg.LogAttrs {
		h.attrs = append(h.attrs, a)
	}
	h.sched = frame.NewScheduler(&h.mu, cfg.Clock, cfg.Invalidate)
	return h
}

func (h *Handler) logger() *slog.Logger {
	l := h.log
	if l == nil {
		l = logging.Logger()
	}
	if len(h.attrs) > 0 {
		return l.With(h.attrs...)
	}
	return l
}

// Uniforms returns the handler's uniform store. Values persist across
// Start and Stop and are cleared by Dispose.
func (h *Handler) Uniforms() *uniform.Store { return h.store }

// HandleCommand applies cmd. After Dispose every command is a no-op.
func (h *Handler) HandleCommand(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sched.State() == frame.Disposed {
		h.stats.Ignored++
		h.logger().Debug("compositor: command ignored after dispose", slog.String("command", cmd.Kind.String()))
		return
	}
	h.stats.Commands++

	switch cmd.Kind {
	case KindStart:
		if _, err := h.cache.Load(cmd.Source); err != nil {
			h.logger().Warn("compositor: start without a program", slog.String("err", err.Error()))
		}
		h.geometry = cmd.Geometry
		h.watch.Start()
		if !h.sched.Start() {
			h.logger().Warn("compositor: animation could not be armed")
		}
		h.logger().Info("compositor: started", slog.String("command", cmd.String()))

	case KindUpdate:
		h.geometry = cmd.Geometry

	case KindStop:
		h.sched.Stop()
		h.watch.Stop()
		h.logger().Info("compositor: stopped")

	case KindDispose:
		h.sched.Dispose()
		h.watch.Reset()
		h.cache.Release()
		h.store.Clear()
		if h.front != nil {
			h.front.Release()
			h.front = nil
		}
		h.logger().Info("compositor: disposed")

	case KindReload:
		if _, err := h.cache.Reload(cmd.Source); err == nil {
			h.logger().Info("compositor: program reloaded")
		}

	default:
		h.logger().Warn("compositor: unknown command", slog.Int("kind", int(cmd.Kind)))
	}
}

// Publish copies a capture into the handler's front buffer. It implements
// capture.Publisher; buf is not retained.
func (h *Handler) Publish(buf *capture.Buffer) {
	if buf == nil || buf.Released() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sched.State() == frame.Disposed {
		return
	}
	if h.front == nil || !h.front.CopyFrom(buf) {
		if h.front != nil {
			h.front.Release()
		}
		h.front = buf.Clone()
	}
	h.stats.Published++
}

// Render draws the current state into t. It is the draw entry point and
// holds the lock for the duration of the draw.
func (h *Handler) Render(t render.Target) (render.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sched.State() == frame.Disposed {
		h.stats.Skipped++
		return render.SkippedNoProgram, nil
	}

	res, err := h.stage.Draw(t, render.Frame{
		Program:  h.cache.Current(),
		Uniforms: h.store.Snapshot(),
		Image:    h.front,
		Geometry: h.geometry,
		Stretch:  h.stretch,
		Time:     h.watch.Seconds(),
	})
	if res == render.Drawn {
		h.stats.Draws++
	} else {
		h.stats.Skipped++
	}
	return res, err
}

// State returns the scheduler state.
func (h *Handler) State() frame.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sched.State()
}

// Geometry returns the last applied geometry.
func (h *Handler) Geometry() geom.FrameGeometry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.geometry
}

// Program returns the active program, or nil.
func (h *Handler) Program() *shader.Program { return h.cache.Current() }

// LastDiagnostic returns the most recent compile failure, or nil.
func (h *Handler) LastDiagnostic() *shader.Diagnostic { return h.cache.LastDiagnostic() }

// Stats returns the handler and scheduler counters.
func (h *Handler) Stats() (HandlerStats, frame.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats, h.sched.Stats()
}
