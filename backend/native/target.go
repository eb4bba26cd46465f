// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package native

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/crtfx/capture"
	"github.com/gogpu/crtfx/internal/logging"
	"github.com/gogpu/crtfx/render"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoDevice is returned when no GPU device can be opened.
	ErrNoDevice = errors.New("native: no GPU device")

	// ErrClosed is returned by DrawQuad after Close.
	ErrClosed = errors.New("native: target closed")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose HAL device and queue")
)

const outputFormat = gputypes.TextureFormatRGBA8Unorm

// Target renders quads on the GPU and reads the result back.
type Target struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool
	closed   bool

	pipe  *programPipeline
	input *inputTexture

	outTex  hal.Texture
	outView hal.TextureView
	width   uint32
	height  uint32

	frame *image.RGBA
}

// NewTarget opens its own GPU device.
func NewTarget() (*Target, error) {
	instance, device, queue, err := openDevice()
	if err != nil {
		return nil, err
	}
	return &Target{instance: instance, device: device, queue: queue}, nil
}

// NewTargetFromProvider shares the device of a gpucontext provider, such
// as a gogpu window. The provider must also expose HalDevice and HalQueue.
func NewTargetFromProvider(p gpucontext.DeviceProvider) (*Target, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return &Target{device: device, queue: queue, external: true}, nil
}

// DrawQuad implements render.Target.
func (t *Target) DrawQuad(q *render.Quad) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	w, h := q.Viewport.Pixels()
	if w <= 0 || h <= 0 {
		return nil
	}
	if err := t.ensureOutput(uint32(w), uint32(h)); err != nil { //nolint:gosec // viewport fits uint32
		return err
	}
	if t.pipe == nil || t.pipe.programID != q.Program.ID() {
		t.destroyPipeline()
		pp, err := newProgramPipeline(t.device, q.Program)
		if err != nil {
			return err
		}
		t.pipe = pp
		logging.Logger().Debug("native: pipeline built", slog.Uint64("program", q.Program.ID()))
	}
	if t.input == nil {
		t.input = &inputTexture{device: t.device, queue: t.queue}
	}
	if err := t.input.upload(q.Image); err != nil {
		return err
	}
	return t.encode(q)
}

func (t *Target) encode(q *render.Quad) error {
	vertData := vertexBytes(q.Vertices())
	vertBuf, err := t.createAndUploadBuffer("crtfx_quad_verts", vertData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer t.device.DestroyBuffer(vertBuf)

	block := uniformBytes(q.Block)
	uniformBuf, err := t.createAndUploadBuffer("crtfx_uniforms", block,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer t.device.DestroyBuffer(uniformBuf)

	bindGroup, err := t.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "crtfx_bind",
		Layout: t.pipe.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(block)),
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: t.input.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: t.pipe.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("native: create bind group: %w", err)
	}
	defer t.device.DestroyBindGroup(bindGroup)

	encoder, err := t.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "crtfx_encoder"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("crtfx_quad"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "crtfx_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.outView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(t.pipe.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.Draw(6, 1, 0, 0)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.outTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	w, h := t.width, t.height
	size := uint64(w) * uint64(h) * 4
	staging, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "crtfx_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer t.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(t.outTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.outTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer t.device.FreeCommandBuffer(cmdBuf)

	fence, err := t.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer t.device.DestroyFence(fence)

	if err := t.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := t.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !ok {
		return fmt.Errorf("native: wait for GPU: ok=%v err=%w", ok, err)
	}

	if err := t.queue.ReadBuffer(staging, 0, t.frame.Pix); err != nil {
		return fmt.Errorf("native: readback: %w", err)
	}
	return nil
}

func (t *Target) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create %s: %w", label, err)
	}
	t.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (t *Target) ensureOutput(w, h uint32) error {
	if t.outTex != nil && t.width == w && t.height == h {
		return nil
	}
	t.destroyOutput()

	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "crtfx_output",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        outputFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("native: create output texture: %w", err)
	}
	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "crtfx_output_view",
		Format:        outputFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.device.DestroyTexture(tex)
		return fmt.Errorf("native: create output view: %w", err)
	}
	t.outTex, t.outView = tex, view
	t.width, t.height = w, h
	t.frame = image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	return nil
}

// Frame returns a copy of the last rendered frame, or nil before the
// first draw.
func (t *Target) Frame() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frame == nil {
		return nil
	}
	out := image.NewRGBA(t.frame.Rect)
	copy(out.Pix, t.frame.Pix)
	return out
}

// Close releases all GPU resources. A device opened by NewTarget is
// destroyed; a shared one is left alone.
func (t *Target) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.destroyPipeline()
	if t.input != nil {
		t.input.destroy()
		t.input = nil
	}
	t.destroyOutput()
	if !t.external {
		if t.device != nil {
			t.device.Destroy()
		}
		if t.instance != nil {
			t.instance.Destroy()
		}
	}
	t.device, t.queue, t.instance = nil, nil, nil
}

func (t *Target) destroyPipeline() {
	if t.pipe != nil {
		t.pipe.destroy()
		t.pipe = nil
	}
}

func (t *Target) destroyOutput() {
	if t.outView != nil {
		t.device.DestroyTextureView(t.outView)
		t.outView = nil
	}
	if t.outTex != nil {
		t.device.DestroyTexture(t.outTex)
		t.outTex = nil
	}
	t.width, t.height = 0, 0
}

var _ render.Target = (*Target)(nil)

// inputTexture holds the sampled source image. Without a capture it holds
// a single transparent pixel so the binding stays valid.
type inputTexture struct {
	device hal.Device
	queue  hal.Queue

	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

var transparentPixel = []byte{0, 0, 0, 0}

func (it *inputTexture) upload(img *capture.Buffer) error {
	w, h, data := uint32(1), uint32(1), transparentPixel
	if img != nil && !img.Released() {
		w, h, data = uint32(img.Width()), uint32(img.Height()), img.Pix() //nolint:gosec // capture sizes fit uint32
	}
	if err := it.ensure(w, h); err != nil {
		return err
	}
	it.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: it.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

func (it *inputTexture) ensure(w, h uint32) error {
	if it.tex != nil && it.width == w && it.height == h {
		return nil
	}
	it.destroy()

	tex, err := it.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "crtfx_input",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create input texture: %w", err)
	}
	view, err := it.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "crtfx_input_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		it.device.DestroyTexture(tex)
		return fmt.Errorf("native: create input view: %w", err)
	}
	it.tex, it.view, it.width, it.height = tex, view, w, h
	return nil
}

func (it *inputTexture) destroy() {
	if it.view != nil {
		it.device.DestroyTextureView(it.view)
		it.view = nil
	}
	if it.tex != nil {
		it.device.DestroyTexture(it.tex)
		it.tex = nil
	}
	it.width, it.height = 0, 0
}
