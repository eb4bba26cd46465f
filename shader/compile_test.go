// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolutionShader = `struct Uniforms { iResolution: vec2<f32> } @group(0) @binding(0) var<uniform> u: Uniforms;
@fragment fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> { return vec4<f32>(v.frag_coord / u.iResolution, 0.0, 1.0); }`

const brokenShader = `@fragment fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> { return vec4<f32>(1.0 }`

func skipUnimplemented(t *testing.T, err error) {
	t.Helper()
	msg := err.Error()
	if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
		t.Skipf("naga limitation: %v", err)
	}
}

func TestEmbeddedSources(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		required []string
	}{
		{"prelude", Prelude(), []string{"struct VertexOutput", "@vertex", "vs_main", "frag_coord", "uv"}},
		{"crt", DefaultSource(), []string{"@fragment", "fs_main", "var<uniform>", ImageName, "textureSample"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, req := range tt.required {
				assert.Contains(t, tt.source, req)
			}
		})
	}
}

func TestNagaCompileResolutionShader(t *testing.T) {
	p, err := Compile(NagaCompiler{}, resolutionShader)
	if err != nil {
		skipUnimplemented(t, err)
		require.NoError(t, err)
	}
	require.NotEmpty(t, p.SPIRV())
	assert.Equal(t, uint32(SPIRVMagic), p.SPIRV()[0])
	assert.True(t, p.Layout().Has("iResolution"))
	assert.False(t, p.HasImage())
	assert.True(t, strings.HasPrefix(p.Module(), Prelude()))
}

func TestNagaCompileDefaultSource(t *testing.T) {
	p, err := Compile(NagaCompiler{}, DefaultSource())
	if err != nil {
		skipUnimplemented(t, err)
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(SPIRVMagic), p.SPIRV()[0])
	assert.True(t, p.HasImage())
}

func TestNagaCompileSyntaxError(t *testing.T) {
	_, err := Compile(NagaCompiler{}, brokenShader)
	require.Error(t, err)

	d, ok := AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, StageCompile, d.Stage)
	assert.NotEmpty(t, d.Message)
}

func TestCompileEmptySource(t *testing.T) {
	_, err := Compile(NagaCompiler{}, "  \n\t")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySource))
}

func TestCompileReflectionError(t *testing.T) {
	called := false
	c := CompilerFunc(func(string) ([]uint32, error) {
		called = true
		return []uint32{SPIRVMagic}, nil
	})
	_, err := Compile(c, `struct U { n: i32 } @group(0) @binding(0) var<uniform> u: U;
@fragment fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> { return vec4<f32>(1.0); }`)
	require.Error(t, err)

	d, ok := AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, StageReflect, d.Stage)
	assert.False(t, called, "compiler must not run when reflection fails")
}

func TestProgramRelease(t *testing.T) {
	p, err := Compile(fakeCompiler(), resolutionShader)
	require.NoError(t, err)
	require.NotNil(t, p.SPIRV())

	p.Release()
	p.Release()
	assert.True(t, p.Released())
	assert.Nil(t, p.SPIRV())
	assert.True(t, p.Layout().Has("iResolution"))
}
