// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"log/slog"
	"sync"

	"github.com/gogpu/crtfx/internal/logging"
)

// Cache holds the active program. A failed compile never replaces a good
// program. Cache is safe for concurrent use.
type Cache struct {
	compiler Compiler

	mu      sync.Mutex
	current *Program
	lastErr *Diagnostic
}

// NewCache creates a cache that compiles with c. A nil c selects
// NagaCompiler.
func NewCache(c Compiler) *Cache {
	if c == nil {
		c = NagaCompiler{}
	}
	return &Cache{compiler: c}
}

// Load compiles source if no program is loaded yet and returns the current
// program. An already-loaded program is returned unchanged.
func (c *Cache) Load(source string) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return c.current, nil
	}
	return c.compileLocked(source)
}

// Reload always compiles source. On success the new program replaces the
// current one, which is released. On failure the current program stays
// active and the diagnostic is returned.
func (c *Cache) Reload(source string) (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compileLocked(source)
}

func (c *Cache) compileLocked(source string) (*Program, error) {
	p, err := Compile(c.compiler, source)
	if err != nil {
		d, ok := AsDiagnostic(err)
		if !ok {
			d = newDiagnostic(StageCompile, err)
		}
		c.lastErr = d
		attrs := []any{slog.String("stage", string(d.Stage)), slog.String("diagnostic", d.Message)}
		if c.current != nil {
			attrs = append(attrs, slog.Uint64("keeping_program", c.current.ID()))
		}
		logging.Logger().Warn("shader: compile failed", attrs...)
		return c.current, d
	}

	if c.current != nil {
		c.current.Release()
	}
	c.current = p
	c.lastErr = nil
	logging.Logger().Debug("shader: program compiled",
		slog.Uint64("program", p.ID()),
		slog.Int("uniforms", len(p.Layout().Fields())),
		slog.Bool("image", p.HasImage()))
	return p, nil
}

// Current returns the active program, or nil.
func (c *Cache) Current() *Program {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// LastDiagnostic returns the diagnostic of the most recent failed compile,
// cleared by the next successful one.
func (c *Cache) LastDiagnostic() *Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Release drops and releases the current program.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Release()
		c.current = nil
	}
	c.lastErr = nil
}
