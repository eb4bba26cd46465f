// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import (
	"time"

	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/compositor"
	"github.com/gogpu/crtfx/geom"
	"github.com/gogpu/crtfx/shader"
)

// DefaultShaderSize is the logical shader size used when no source element
// is bound.
var DefaultShaderSize = geom.Sz(512, 512)

// Option configures a Control during creation.
//
// Example:
//
//	c := crtfx.New(
//	    crtfx.WithFPS(24),
//	    crtfx.WithStretch(geom.StretchUniformToFill),
//	)
type Option func(*options)

type options struct {
	fps       float64
	source    string
	stretch   geom.Stretch
	queueSize int
	compiler  shader.Compiler
	now       func() time.Time
}

func defaultOptions() options {
	return options{
		fps:       capture.DefaultFPS,
		source:    shader.DefaultSource(),
		stretch:   geom.StretchUniform,
		queueSize: compositor.DefaultQueueSize,
	}
}

// WithFPS sets the capture rate of the source element. It is independent
// of the display frame rate.
func WithFPS(fps float64) Option {
	return func(o *options) {
		if fps > 0 {
			o.fps = fps
		}
	}
}

// WithShaderSource replaces the built-in CRT shader.
func WithShaderSource(src string) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithStretch selects how the shader is fitted into the viewport.
func WithStretch(s geom.Stretch) Option {
	return func(o *options) {
		o.stretch = s
	}
}

// WithQueueSize sets the command queue capacity.
func WithQueueSize(n int) Option {
	return func(o *options) {
		o.queueSize = n
	}
}

// WithCompiler substitutes the shader compiler, mainly for tests.
func WithCompiler(c shader.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithNow substitutes the time source driving iTime.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
