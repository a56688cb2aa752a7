package glyph

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyph/gpu"
)

// mockBuffer tracks writes so tests can tell uploads apart by size.
type mockBuffer struct {
	gpu.ResourceBase
	label  string
	size   uint64
	writes int
}

type mockTexture struct {
	gpu.ResourceBase
	label  string
	width  uint32
	height uint32
}

type mockResource struct {
	gpu.ResourceBase
	label string
}

type mockDevice struct {
	texturesCreated    int
	texturesDestroyed  int
	viewsCreated       int
	viewsDestroyed     int
	buffersCreated     int
	buffersDestroyed   int
	shadersCreated     int
	shadersDestroyed   int
	samplersCreated    int
	samplersDestroyed  int
	layoutsCreated     int
	layoutsDestroyed   int
	pipeLayoutsCreated int
	pipeLayoutsDest    int
	bindGroupsCreated  int
	bindGroupsDest     int
	pipelinesCreated   int
	pipelinesDestroyed int

	lastTexture *mockTexture
}

func (d *mockDevice) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	d.texturesCreated++
	d.lastTexture = &mockTexture{label: desc.Label, width: desc.Size.Width, height: desc.Size.Height}
	return d.lastTexture, nil
}

func (d *mockDevice) CreateTextureView(gpu.Texture, *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	d.viewsCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	d.buffersCreated++
	return &mockBuffer{label: desc.Label, size: desc.Size}, nil
}

func (d *mockDevice) CreateShaderModule(*gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	d.shadersCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateSampler(*gpu.SamplerDescriptor) (gpu.Sampler, error) {
	d.samplersCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateBindGroupLayout(*gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	d.layoutsCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreatePipelineLayout(*gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	d.pipeLayoutsCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateBindGroup(*gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	d.bindGroupsCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateRenderPipeline(*gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	d.pipelinesCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) DestroyTexture(gpu.Texture)                 { d.texturesDestroyed++ }
func (d *mockDevice) DestroyTextureView(gpu.TextureView)         { d.viewsDestroyed++ }
func (d *mockDevice) DestroyBuffer(gpu.Buffer)                   { d.buffersDestroyed++ }
func (d *mockDevice) DestroyShaderModule(gpu.ShaderModule)       { d.shadersDestroyed++ }
func (d *mockDevice) DestroySampler(gpu.Sampler)                 { d.samplersDestroyed++ }
func (d *mockDevice) DestroyBindGroupLayout(gpu.BindGroupLayout) { d.layoutsDestroyed++ }
func (d *mockDevice) DestroyPipelineLayout(gpu.PipelineLayout)   { d.pipeLayoutsDest++ }
func (d *mockDevice) DestroyBindGroup(gpu.BindGroup)             { d.bindGroupsDest++ }
func (d *mockDevice) DestroyRenderPipeline(gpu.RenderPipeline)   { d.pipelinesDestroyed++ }

type textureWrite struct {
	x, y, width, height uint32
	bytes               int
}

type mockQueue struct {
	textureWrites []textureWrite
	bufferWrites  []int // byte sizes in call order
}

func (q *mockQueue) WriteTexture(dst *gpu.TextureCopyView, data []byte, _ *gpu.TextureDataLayout, size *gpu.Extent) error {
	if tex, ok := dst.Texture.(*mockTexture); ok {
		if dst.Origin.X+size.Width > tex.width || dst.Origin.Y+size.Height > tex.height {
			return errors.New("mock: texture write out of bounds")
		}
	}
	q.textureWrites = append(q.textureWrites, textureWrite{
		x: dst.Origin.X, y: dst.Origin.Y,
		width: size.Width, height: size.Height,
		bytes: len(data),
	})
	return nil
}

func (q *mockQueue) WriteBuffer(buf gpu.Buffer, _ uint64, data []byte) error {
	if b, ok := buf.(*mockBuffer); ok {
		b.writes++
	}
	q.bufferWrites = append(q.bufferWrites, len(data))
	return nil
}

// writesOfSize counts buffer writes of exactly n bytes.
func (q *mockQueue) writesOfSize(n int) int {
	count := 0
	for _, w := range q.bufferWrites {
		if w == n {
			count++
		}
	}
	return count
}

type mockContext struct {
	dev     *mockDevice
	queue   *mockQueue
	version gpu.APIVersion
	limits  gputypes.Limits
}

func newMockContext(major int, maxTextureSize uint32) *mockContext {
	limits := gputypes.DefaultLimits()
	limits.MaxTextureDimension2D = maxTextureSize
	return &mockContext{
		dev:     &mockDevice{},
		queue:   &mockQueue{},
		version: gpu.APIVersion{Major: major},
		limits:  limits,
	}
}

func (c *mockContext) Device() gpu.Device         { return c.dev }
func (c *mockContext) Queue() gpu.Queue           { return c.queue }
func (c *mockContext) APIVersion() gpu.APIVersion { return c.version }
func (c *mockContext) Limits() gputypes.Limits    { return c.limits }

type drawCall struct {
	vertexCount   uint32
	instanceCount uint32
}

type drawIndexedCall struct {
	indexCount uint32
	baseVertex int32
}

type mockRenderPass struct {
	pipelineSets  int
	bindGroupSets int
	vertexSets    int
	indexSets     int
	scissors      [][4]uint32
	draws         []drawCall
	drawsIndexed  []drawIndexedCall
}

func (p *mockRenderPass) SetPipeline(gpu.RenderPipeline)             { p.pipelineSets++ }
func (p *mockRenderPass) SetBindGroup(uint32, gpu.BindGroup)         { p.bindGroupSets++ }
func (p *mockRenderPass) SetVertexBuffer(uint32, gpu.Buffer, uint64) { p.vertexSets++ }
func (p *mockRenderPass) SetIndexBuffer(gpu.Buffer, gputypes.IndexFormat, uint64) {
	p.indexSets++
}

func (p *mockRenderPass) SetScissorRect(x, y, width, height uint32) {
	p.scissors = append(p.scissors, [4]uint32{x, y, width, height})
}

func (p *mockRenderPass) Draw(vertexCount, instanceCount, _, _ uint32) {
	p.draws = append(p.draws, drawCall{vertexCount: vertexCount, instanceCount: instanceCount})
}

func (p *mockRenderPass) DrawIndexed(indexCount, _, _ uint32, baseVertex int32, _ uint32) {
	p.drawsIndexed = append(p.drawsIndexed, drawIndexedCall{indexCount: indexCount, baseVertex: baseVertex})
}
