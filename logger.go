// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import (
	"log/slog"

	"github.com/gogpu/crtfx/internal/logging"
)

// SetLogger configures the logger for crtfx and all its sub-packages.
// By default, crtfx produces no log output. Pass nil to restore the silent
// default. SetLogger is safe for concurrent use.
//
// Log levels used by crtfx:
//   - [slog.LevelDebug]: skipped capture ticks and frames, buffer reallocation
//   - [slog.LevelInfo]: lifecycle (attach, start, stop, dispose)
//   - [slog.LevelWarn]: shader diagnostics, rasterization failures, halted animation
//
// Example:
//
//	crtfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by crtfx.
func Logger() *slog.Logger {
	return logging.Logger()
}
