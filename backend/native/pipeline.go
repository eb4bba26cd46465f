// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package native

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/crtfx/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// programPipeline holds the GPU objects for one compiled program.
//
//	Binding 0: uniform block (vertex+fragment)
//	Binding 1: iImage1 (texture_2d<f32>, fragment)
//	Binding 2: iImage1 sampler (fragment)
type programPipeline struct {
	device    hal.Device
	programID uint64

	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
}

func newProgramPipeline(device hal.Device, p *shader.Program) (*programPipeline, error) {
	code := p.SPIRV()
	if len(code) == 0 {
		return nil, fmt.Errorf("native: program %d has no code", p.ID())
	}
	pp := &programPipeline{device: device, programID: p.ID()}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "crtfx_program",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module: %w", err)
	}
	pp.module = module

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "crtfx_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		pp.destroy()
		return nil, fmt.Errorf("native: create bind group layout: %w", err)
	}
	pp.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "crtfx_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{pp.bindLayout},
	})
	if err != nil {
		pp.destroy()
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}
	pp.pipeLayout = pipeLayout

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "crtfx_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		pp.destroy()
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}
	pp.sampler = sampler

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "crtfx_pipeline",
		Layout: pp.pipeLayout,
		Vertex: hal.VertexState{
			Module:     pp.module,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     pp.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    outputFormat,
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		pp.destroy()
		return nil, fmt.Errorf("native: create render pipeline: %w", err)
	}
	pp.pipeline = pipeline
	return pp, nil
}

func (pp *programPipeline) destroy() {
	if pp.pipeline != nil {
		pp.device.DestroyRenderPipeline(pp.pipeline)
		pp.pipeline = nil
	}
	if pp.sampler != nil {
		pp.device.DestroySampler(pp.sampler)
		pp.sampler = nil
	}
	if pp.pipeLayout != nil {
		pp.device.DestroyPipelineLayout(pp.pipeLayout)
		pp.pipeLayout = nil
	}
	if pp.bindLayout != nil {
		pp.device.DestroyBindGroupLayout(pp.bindLayout)
		pp.bindLayout = nil
	}
	if pp.module != nil {
		pp.device.DestroyShaderModule(pp.module)
		pp.module = nil
	}
}

// quadVertexLayout matches vs_main's inputs:
//
//	location 0: position (vec2<f32>, clip space)
//	location 1: frag_coord (vec2<f32>, viewport pixels)
//	location 2: uv (vec2<f32>)
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: render.VertexStride * 4,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 2},
		},
	}}
}

func vertexBytes(v []float32) []byte {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// uniformBytes returns the block, padded to a non-empty multiple of 16
// bytes. Programs without uniforms still bind a buffer.
func uniformBytes(block []byte) []byte {
	n := (len(block) + 15) &^ 15
	if n == 0 {
		n = 16
	}
	if n == len(block) {
		return block
	}
	out := make([]byte, n)
	copy(out, block)
	return out
}
