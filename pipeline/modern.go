package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyph/brush"
	"github.com/gogpu/glyph/gpu"
)

// Modern draws glyphs from a storage buffer of per-glyph instance records,
// expanding each record to a quad in the vertex shader. One draw call covers
// the whole frame regardless of glyph count.
type Modern struct {
	ctx gpu.Context
	cfg Config

	shader      gpu.ShaderModule
	bindLayout  gpu.BindGroupLayout
	pipeLayout  gpu.PipelineLayout
	pipeline    gpu.RenderPipeline
	sampler     gpu.Sampler
	uniforms    gpu.Buffer
	cache       *cacheTexture
	instances   gpu.Buffer
	instanceCap int
	bindGroup   gpu.BindGroup

	instanceCount int
	transform     [16]float32
	released      bool
}

// NewModern creates the modern-tier pipeline.
func NewModern(ctx gpu.Context, cfg Config) (*Modern, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	p := &Modern{
		ctx:       ctx,
		cfg:       cfg.withDefaults(),
		transform: IdentityTransform,
	}
	if err := p.create(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *Modern) create() error {
	dev := p.ctx.Device()
	label := p.cfg.Label

	shader, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Label: label + " modern shader",
		WGSL:  modernShaderWGSL,
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to compile modern shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: transform uniform (vertex)
	//   Binding 1: instance storage buffer (vertex)
	//   Binding 2: glyph cache texture (fragment)
	//   Binding 3: sampler (fragment)
	bindLayout, err := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: label + " modern bind layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create modern bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := dev.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label:            label + " modern pipe layout",
		BindGroupLayouts: []gpu.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create modern pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:  label + " modern pipeline",
		Layout: p.pipeLayout,
		Vertex: gpu.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &gpu.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{colorTarget(p.cfg.TargetFormat)},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create modern pipeline: %w", err)
	}
	p.pipeline = pipeline

	sampler, err := newCacheSampler(dev, label)
	if err != nil {
		return err
	}
	p.sampler = sampler

	uniforms, err := dev.CreateBuffer(&gpu.BufferDescriptor{
		Label: label + " transform",
		Size:  64,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create uniform buffer: %w", err)
	}
	p.uniforms = uniforms
	if err := p.ctx.Queue().WriteBuffer(p.uniforms, 0, encodeTransform(p.transform)); err != nil {
		return fmt.Errorf("pipeline: failed to write transform: %w", err)
	}

	cache, err := newCacheTexture(dev, label, p.cfg.CacheWidth, p.cfg.CacheHeight)
	if err != nil {
		return err
	}
	p.cache = cache

	return p.ensureInstanceCapacity(initialInstanceCapacity)
}

// initialInstanceCapacity sizes the first instance buffer.
const initialInstanceCapacity = 256

// ensureInstanceCapacity grows the instance buffer and rebuilds the bind
// group when the capacity or any bound resource changed.
func (p *Modern) ensureInstanceCapacity(n int) error {
	dev := p.ctx.Device()

	if n > p.instanceCap || p.instances == nil {
		if p.instances != nil {
			dev.DestroyBuffer(p.instances)
			p.instances = nil
		}
		if n < initialInstanceCapacity {
			n = initialInstanceCapacity
		}
		buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{
			Label: p.cfg.Label + " instances",
			Size:  uint64(n) * instanceStride,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("pipeline: failed to create instance buffer: %w", err)
		}
		p.instances = buf
		p.instanceCap = n
	}

	if p.bindGroup != nil {
		dev.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	bg, err := dev.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  p.cfg.Label + " modern bind group",
		Layout: p.bindLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Resource: gpu.BindingResource{Buffer: p.uniforms, BufferSize: 64}},
			{Binding: 1, Resource: gpu.BindingResource{
				Buffer:     p.instances,
				BufferSize: uint64(p.instanceCap) * instanceStride,
			}},
			{Binding: 2, Resource: gpu.BindingResource{TextureView: p.cache.view}},
			{Binding: 3, Resource: gpu.BindingResource{Sampler: p.sampler}},
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create modern bind group: %w", err)
	}
	p.bindGroup = bg
	return nil
}

// CacheDimensions returns the current cache texture size.
func (p *Modern) CacheDimensions() (width, height uint32) {
	return p.cache.width, p.cache.height
}

// UpdateCache writes glyph coverage data into a sub-rectangle of the cache
// texture.
func (p *Modern) UpdateCache(r brush.Rect, data []byte) error {
	if p.released {
		return ErrReleased
	}
	return p.cache.patch(p.ctx.Queue(), r, data)
}

// IncreaseCacheSize replaces the cache texture with a larger one.
// Cached glyph content is lost; callers re-patch it afterwards.
func (p *Modern) IncreaseCacheSize(width, height uint32) error {
	if p.released {
		return ErrReleased
	}
	dev := p.ctx.Device()

	cache, err := newCacheTexture(dev, p.cfg.Label, width, height)
	if err != nil {
		return err
	}
	p.cache.release(dev)
	p.cache = cache

	// The bind group references the old texture view.
	return p.ensureInstanceCapacity(p.instanceCap)
}

// UploadQuads replaces the instance buffer contents with the given quads.
func (p *Modern) UploadQuads(quads []brush.Quad) error {
	if p.released {
		return ErrReleased
	}
	if len(quads) > p.instanceCap {
		if err := p.ensureInstanceCapacity(len(quads)); err != nil {
			return err
		}
	}
	p.instanceCount = len(quads)
	if len(quads) == 0 {
		return nil
	}
	return p.ctx.Queue().WriteBuffer(p.instances, 0, encodeInstances(quads))
}

// QuadCount returns the number of quads currently uploaded.
func (p *Modern) QuadCount() int { return p.instanceCount }

// Draw records the glyph draw into the given render pass.
// A nil region leaves the pass scissor untouched.
func (p *Modern) Draw(pass gpu.RenderPass, transform [16]float32, region *Region) error {
	if p.released {
		return ErrReleased
	}
	if p.instanceCount == 0 {
		return nil
	}

	if transform != p.transform {
		if err := p.ctx.Queue().WriteBuffer(p.uniforms, 0, encodeTransform(transform)); err != nil {
			return fmt.Errorf("pipeline: failed to write transform: %w", err)
		}
		p.transform = transform
	}

	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup)
	if region != nil {
		pass.SetScissorRect(region.X, region.Y, region.Width, region.Height)
	}
	pass.Draw(indicesPerQuad, uint32(p.instanceCount), 0, 0)
	return nil
}

// Release destroys all GPU resources. Safe to call more than once.
func (p *Modern) Release() {
	if p.released {
		return
	}
	p.released = true
	dev := p.ctx.Device()

	if p.bindGroup != nil {
		dev.DestroyBindGroup(p.bindGroup)
	}
	if p.instances != nil {
		dev.DestroyBuffer(p.instances)
	}
	if p.cache != nil {
		p.cache.release(dev)
	}
	if p.uniforms != nil {
		dev.DestroyBuffer(p.uniforms)
	}
	if p.sampler != nil {
		dev.DestroySampler(p.sampler)
	}
	if p.pipeline != nil {
		dev.DestroyRenderPipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		dev.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.bindLayout != nil {
		dev.DestroyBindGroupLayout(p.bindLayout)
	}
	if p.shader != nil {
		dev.DestroyShaderModule(p.shader)
	}
}
