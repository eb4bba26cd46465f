// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package hotreload watches a shader file and reports new contents.
package hotreload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/crtfx/internal/logging"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 50 * time.Millisecond

// Watcher calls a function with the file's contents whenever it changes.
// The containing directory is watched so that atomic saves (write to a
// temporary file, then rename) are seen.
type Watcher struct {
	path     string
	onChange func(src string)
	debounce time.Duration
	fs       *fsnotify.Watcher
}

// New watches path. onChange runs on the Run goroutine.
func New(path string, onChange func(src string)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("hotreload: %w", err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("hotreload: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("hotreload: watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, onChange: onChange, debounce: DefaultDebounce, fs: fs}, nil
}

// SetDebounce changes the quiet period before a reload. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Run delivers changes until ctx is done or the watcher fails. It closes
// the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logging.Logger().Warn("hotreload: event overflow", slog.String("path", w.path))
				continue
			}
			return fmt.Errorf("hotreload: %w", err)
		}
	}
}

func (w *Watcher) reload() {
	b, err := os.ReadFile(w.path)
	if err != nil {
		// Renamed away mid-save; the following Create reloads.
		logging.Logger().Debug("hotreload: read failed", slog.String("path", w.path), slog.String("err", err.Error()))
		return
	}
	logging.Logger().Info("hotreload: shader changed", slog.String("path", w.path), slog.Int("bytes", len(b)))
	w.onChange(string(b))
}
