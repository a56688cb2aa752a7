package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyph/brush"
	"github.com/gogpu/glyph/gpu"
)

// Legacy draws glyphs from a plain vertex buffer holding four vertices per
// quad, indexed by a shared uint16 quad index buffer. It needs nothing
// beyond baseline vertex-buffer features, at the cost of regenerating the
// full vertex data on every upload.
type Legacy struct {
	ctx gpu.Context
	cfg Config

	shader     gpu.ShaderModule
	bindLayout gpu.BindGroupLayout
	pipeLayout gpu.PipelineLayout
	pipeline   gpu.RenderPipeline
	sampler    gpu.Sampler
	uniforms   gpu.Buffer
	cache      *cacheTexture
	vertices   gpu.Buffer
	vertexCap  int // capacity in quads
	indices    gpu.Buffer
	indexCap   int // capacity in quads
	bindGroup  gpu.BindGroup

	quadCount int
	transform [16]float32
	released  bool
}

// NewLegacy creates the legacy-tier pipeline.
func NewLegacy(ctx gpu.Context, cfg Config) (*Legacy, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	p := &Legacy{
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

func (p *Legacy) create() error {
	dev := p.ctx.Device()
	label := p.cfg.Label

	shader, err := dev.CreateShaderModule(&gpu.ShaderModuleDescriptor{
		Label: label + " legacy shader",
		WGSL:  legacyShaderWGSL,
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to compile legacy shader: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: transform uniform (vertex)
	//   Binding 1: glyph cache texture (fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := dev.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: label + " legacy bind layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
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
		return fmt.Errorf("pipeline: failed to create legacy bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := dev.CreatePipelineLayout(&gpu.PipelineLayoutDescriptor{
		Label:            label + " legacy pipe layout",
		BindGroupLayouts: []gpu.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create legacy pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := dev.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:  label + " legacy pipeline",
		Layout: p.pipeLayout,
		Vertex: gpu.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    legacyVertexLayout(),
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
		return fmt.Errorf("pipeline: failed to create legacy pipeline: %w", err)
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

	return p.createBindGroup()
}

// legacyVertexLayout declares the vertex buffer layout matching the legacy
// shader's VertexInput.
func legacyVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32, Offset: 8, ShaderLocation: 1},    // z
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 2}, // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 20, ShaderLocation: 3}, // color
			},
		},
	}
}

// createBindGroup (re)builds the bind group referencing the current cache
// texture view.
func (p *Legacy) createBindGroup() error {
	dev := p.ctx.Device()

	if p.bindGroup != nil {
		dev.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	bg, err := dev.CreateBindGroup(&gpu.BindGroupDescriptor{
		Label:  p.cfg.Label + " legacy bind group",
		Layout: p.bindLayout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Resource: gpu.BindingResource{Buffer: p.uniforms, BufferSize: 64}},
			{Binding: 1, Resource: gpu.BindingResource{TextureView: p.cache.view}},
			{Binding: 2, Resource: gpu.BindingResource{Sampler: p.sampler}},
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline: failed to create legacy bind group: %w", err)
	}
	p.bindGroup = bg
	return nil
}

// CacheDimensions returns the current cache texture size.
func (p *Legacy) CacheDimensions() (width, height uint32) {
	return p.cache.width, p.cache.height
}

// UpdateCache writes glyph coverage data into a sub-rectangle of the cache
// texture.
func (p *Legacy) UpdateCache(r brush.Rect, data []byte) error {
	if p.released {
		return ErrReleased
	}
	return p.cache.patch(p.ctx.Queue(), r, data)
}

// IncreaseCacheSize replaces the cache texture with a larger one.
// Cached glyph content is lost; callers re-patch it afterwards.
func (p *Legacy) IncreaseCacheSize(width, height uint32) error {
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

	return p.createBindGroup()
}

// UploadQuads replaces the vertex buffer contents with four vertices per
// quad and grows the shared index buffer to cover the batch.
func (p *Legacy) UploadQuads(quads []brush.Quad) error {
	if p.released {
		return ErrReleased
	}
	dev := p.ctx.Device()

	if len(quads) > p.vertexCap {
		if p.vertices != nil {
			dev.DestroyBuffer(p.vertices)
			p.vertices = nil
		}
		buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{
			Label: p.cfg.Label + " vertices",
			Size:  uint64(len(quads)) * verticesPerQuad * vertexStride,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("pipeline: failed to create vertex buffer: %w", err)
		}
		p.vertices = buf
		p.vertexCap = len(quads)
	}

	// The index pattern only depends on quad count, capped at one draw
	// chunk; chunked draws reuse it with a base vertex.
	indexQuads := len(quads)
	if indexQuads > maxQuadsPerDraw {
		indexQuads = maxQuadsPerDraw
	}
	if indexQuads > p.indexCap {
		if p.indices != nil {
			dev.DestroyBuffer(p.indices)
			p.indices = nil
		}
		buf, err := dev.CreateBuffer(&gpu.BufferDescriptor{
			Label: p.cfg.Label + " indices",
			Size:  uint64(indexQuads) * indicesPerQuad * 2,
			Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("pipeline: failed to create index buffer: %w", err)
		}
		if err := p.ctx.Queue().WriteBuffer(buf, 0, quadIndexData(indexQuads)); err != nil {
			return fmt.Errorf("pipeline: failed to write indices: %w", err)
		}
		p.indices = buf
		p.indexCap = indexQuads
	}

	p.quadCount = len(quads)
	if len(quads) == 0 {
		return nil
	}
	return p.ctx.Queue().WriteBuffer(p.vertices, 0, encodeQuadVertices(quads))
}

// QuadCount returns the number of quads currently uploaded.
func (p *Legacy) QuadCount() int { return p.quadCount }

// Draw records the glyph draw into the given render pass.
// A nil region leaves the pass scissor untouched. Batches beyond the uint16
// index range are drawn in chunks using a base vertex offset.
func (p *Legacy) Draw(pass gpu.RenderPass, transform [16]float32, region *Region) error {
	if p.released {
		return ErrReleased
	}
	if p.quadCount == 0 {
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
	pass.SetVertexBuffer(0, p.vertices, 0)
	pass.SetIndexBuffer(p.indices, gputypes.IndexFormatUint16, 0)
	if region != nil {
		pass.SetScissorRect(region.X, region.Y, region.Width, region.Height)
	}

	for first := 0; first < p.quadCount; first += maxQuadsPerDraw {
		n := p.quadCount - first
		if n > maxQuadsPerDraw {
			n = maxQuadsPerDraw
		}
		pass.DrawIndexed(uint32(n*indicesPerQuad), 1, 0, int32(first*verticesPerQuad), 0)
	}
	return nil
}

// Release destroys all GPU resources. Safe to call more than once.
func (p *Legacy) Release() {
	if p.released {
		return
	}
	p.released = true
	dev := p.ctx.Device()

	if p.bindGroup != nil {
		dev.DestroyBindGroup(p.bindGroup)
	}
	if p.indices != nil {
		dev.DestroyBuffer(p.indices)
	}
	if p.vertices != nil {
		dev.DestroyBuffer(p.vertices)
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
