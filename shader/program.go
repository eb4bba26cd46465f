// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	_ "embed"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gogpu/crtfx/uniform"
)

//go:embed shaders/prelude.wgsl
var preludeSource string

//go:embed shaders/crt.wgsl
var crtSource string

// Prelude returns the vertex stage prepended to every program.
func Prelude() string { return preludeSource }

// DefaultSource returns the built-in CRT effect.
func DefaultSource() string { return crtSource }

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

var programIDs atomic.Uint64

// Program is a compiled effect. Programs are immutable; a released program
// keeps its metadata but drops its code.
type Program struct {
	id       uint64
	source   string
	module   string
	spirv    []uint32
	layout   *uniform.Layout
	hasImage bool
	released atomic.Bool
}

// Compile reflects and compiles a fragment program with c.
func Compile(c Compiler, source string) (*Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &Diagnostic{Stage: StageReflect, Message: ErrEmptySource.Error(), Err: ErrEmptySource}
	}
	refl, err := Reflect(source)
	if err != nil {
		return nil, newDiagnostic(StageReflect, err)
	}
	layout, err := uniform.NewLayout(refl.Decls)
	if err != nil {
		return nil, newDiagnostic(StageReflect, err)
	}

	module := preludeSource + "\n" + source
	spirv, err := c.Compile(module)
	if err != nil {
		return nil, newDiagnostic(StageCompile, err)
	}
	if len(spirv) == 0 {
		return nil, newDiagnostic(StageCompile, fmt.Errorf("compiler produced no code"))
	}

	return &Program{
		id:       programIDs.Add(1),
		source:   source,
		module:   module,
		spirv:    spirv,
		layout:   layout,
		hasImage: refl.HasImage,
	}, nil
}

// ID is unique per compiled program within the process.
func (p *Program) ID() uint64 { return p.id }

// Source returns the fragment source as given to Compile.
func (p *Program) Source() string { return p.source }

// Module returns the full WGSL module, prelude included.
func (p *Program) Module() string { return p.module }

// SPIRV returns the compiled code, or nil once released.
func (p *Program) SPIRV() []uint32 {
	if p.released.Load() {
		return nil
	}
	return p.spirv
}

// Layout returns the uniform block layout. Programs without a uniform
// block have an empty layout.
func (p *Program) Layout() *uniform.Layout { return p.layout }

// HasImage reports whether the program samples iImage1.
func (p *Program) HasImage() bool { return p.hasImage }

// Release marks the program unusable. It is safe to call more than once.
func (p *Program) Release() { p.released.Store(true) }

// Released reports whether Release was called.
func (p *Program) Released() bool { return p.released.Load() }
