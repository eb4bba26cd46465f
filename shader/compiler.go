// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Compiler turns a full WGSL module into SPIR-V words.
type Compiler interface {
	Compile(source string) ([]uint32, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(source string) ([]uint32, error)

// Compile calls f(source).
func (f CompilerFunc) Compile(source string) ([]uint32, error) { return f(source) }

// NagaCompiler compiles WGSL with the pure-Go naga toolchain.
type NagaCompiler struct{}

// Compile compiles WGSL source to SPIR-V.
func (NagaCompiler) Compile(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("naga: SPIR-V length %d is not word aligned", len(spirvBytes))
	}
	return Words(spirvBytes), nil
}

// Words converts little-endian SPIR-V bytes into 32-bit words.
func Words(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
