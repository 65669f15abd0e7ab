// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// Pipeline errors.
var (
	// ErrNilDevice is returned when constructing against a nil device.
	ErrNilDevice = errors.New("quad: device is nil")

	// ErrPipelineDestroyed is returned when using a destroyed pipeline.
	ErrPipelineDestroyed = errors.New("quad: sprite pipeline has been destroyed")
)

// SpritePipeline owns the GPU objects shared by every sprite draw: the
// compiled sprite shader, the texture+sampler bind group layout, the render
// pipeline (triangle list, premultiplied alpha blending, no depth), and the
// shared linear clamp-to-edge sampler. It lazily creates and caches one bind
// group per Texture.
//
// The pipeline is borrowed by SpriteBatch instances and must outlive them.
type SpritePipeline struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler

	mu         sync.Mutex
	bindGroups map[*Texture]hal.BindGroup
	destroyed  bool
}

// PipelineConfig holds configuration for creating a SpritePipeline.
type PipelineConfig struct {
	// TargetFormat is the color attachment format the pipeline renders to.
	// Defaults to BGRA8Unorm, the common swapchain format.
	TargetFormat gputypes.TextureFormat

	// Label is an optional debug label prefix.
	Label string
}

// NewSpritePipeline compiles the sprite shader and creates the render
// pipeline and sampler. On any failure all partially created resources are
// released and an error is returned; there is no partially usable pipeline.
func NewSpritePipeline(device hal.Device, config PipelineConfig) (*SpritePipeline, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	format := config.TargetFormat
	if format == 0 {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	label := config.Label
	if label == "" {
		label = "sprite"
	}

	p := &SpritePipeline{
		device:     device,
		bindGroups: make(map[*Texture]hal.BindGroup),
	}
	if err := p.create(format, label); err != nil {
		p.Destroy()
		return nil, err
	}

	Logger().Info("sprite pipeline created", "format", format)
	return p, nil
}

// create builds the shader, layouts, sampler, and render pipeline.
func (p *SpritePipeline) create(format gputypes.TextureFormat, label string) error {
	spirv, err := compileShader(spriteShaderSource)
	if err != nil {
		return fmt.Errorf("compile sprite shader: %w", err)
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create sprite shader module: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: sprite texture (texture_2d, fragment)
	//   Binding 1: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	// Shared sampler: linear filtering, clamp-to-edge, no mipmaps.
	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sprite sampler: %w", err)
	}
	p.sampler = sampler

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    spriteVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
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
		return fmt.Errorf("create sprite pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// RenderPipeline returns the underlying render pipeline handle, or nil if
// the pipeline has been destroyed.
func (p *SpritePipeline) RenderPipeline() hal.RenderPipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return nil
	}
	return p.pipeline
}

// bindGroupFor returns the bind group binding tex's view together with the
// shared sampler, creating and caching it on first use. Bind groups are
// created lazily so only textures that are actually drawn allocate one.
func (p *SpritePipeline) bindGroupFor(tex *Texture) (hal.BindGroup, error) {
	if tex == nil {
		return nil, ErrNilTexture
	}
	if tex.Released() {
		return nil, ErrTextureReleased
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrPipelineDestroyed
	}
	if bg, ok := p.bindGroups[tex]; ok {
		return bg, nil
	}

	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  tex.Label() + "_sprite_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{
				TextureView: tex.view.NativeHandle(),
			}},
			{Binding: 1, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create sprite bind group: %w", err)
	}
	p.bindGroups[tex] = bg
	return bg, nil
}

// InvalidateTexture drops the cached bind group for tex, if any. Call this
// after closing a texture that was previously drawn.
func (p *SpritePipeline) InvalidateTexture(tex *Texture) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if bg, ok := p.bindGroups[tex]; ok {
		p.device.DestroyBindGroup(bg)
		delete(p.bindGroups, tex)
	}
}

// Destroy releases all GPU resources in reverse creation order: bind groups,
// then the pipeline, sampler, layouts, and shader. Safe to call multiple
// times or on a partially constructed pipeline.
func (p *SpritePipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed || p.device == nil {
		return
	}
	p.destroyed = true

	for tex, bg := range p.bindGroups {
		p.device.DestroyBindGroup(bg)
		delete(p.bindGroups, tex)
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// compileShader compiles WGSL source to SPIR-V words.
// SPIR-V is little-endian 32-bit words.
func compileShader(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, err
	}

	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
