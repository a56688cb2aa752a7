package pipeline

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyph/gpu"
)

type mockBuffer struct {
	gpu.ResourceBase
	label string
	size  uint64
}

type mockTexture struct {
	gpu.ResourceBase
	width  uint32
	height uint32
}

type mockResource struct {
	gpu.ResourceBase
}

type mockDevice struct {
	failSampler bool
	failBuffer  bool

	texturesCreated   int
	texturesDestroyed int
	viewsCreated      int
	viewsDestroyed    int
	buffersCreated    int
	buffersDestroyed  int
	shadersCreated    int
	shadersDestroyed  int
	samplersCreated   int
	samplersDestroyed int
	layoutsCreated    int
	layoutsDestroyed  int
	pipeLayoutsMade   int
	pipeLayoutsDest   int
	bindGroupsCreated int
	bindGroupsDest    int
	pipelinesCreated  int
	pipelinesDest     int

	lastBuffer *mockBuffer
}

func (d *mockDevice) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	d.texturesCreated++
	return &mockTexture{width: desc.Size.Width, height: desc.Size.Height}, nil
}

func (d *mockDevice) CreateTextureView(gpu.Texture, *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	d.viewsCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if d.failBuffer {
		return nil, errors.New("mock: buffer creation failed")
	}
	d.buffersCreated++
	d.lastBuffer = &mockBuffer{label: desc.Label, size: desc.Size}
	return d.lastBuffer, nil
}

func (d *mockDevice) CreateShaderModule(*gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	d.shadersCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateSampler(*gpu.SamplerDescriptor) (gpu.Sampler, error) {
	if d.failSampler {
		return nil, errors.New("mock: sampler creation failed")
	}
	d.samplersCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreateBindGroupLayout(*gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	d.layoutsCreated++
	return &mockResource{}, nil
}

func (d *mockDevice) CreatePipelineLayout(*gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	d.pipeLayoutsMade++
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
func (d *mockDevice) DestroyRenderPipeline(gpu.RenderPipeline)   { d.pipelinesDest++ }

type bufferWrite struct {
	label string
	bytes int
}

type mockQueue struct {
	textureWrites int
	bufferWrites  []bufferWrite
}

func (q *mockQueue) WriteTexture(*gpu.TextureCopyView, []byte, *gpu.TextureDataLayout, *gpu.Extent) error {
	q.textureWrites++
	return nil
}

func (q *mockQueue) WriteBuffer(buf gpu.Buffer, _ uint64, data []byte) error {
	label := ""
	if b, ok := buf.(*mockBuffer); ok {
		label = b.label
	}
	q.bufferWrites = append(q.bufferWrites, bufferWrite{label: label, bytes: len(data)})
	return nil
}

type mockContext struct {
	dev   *mockDevice
	queue *mockQueue
}

func newMockContext() *mockContext {
	return &mockContext{dev: &mockDevice{}, queue: &mockQueue{}}
}

func (c *mockContext) Device() gpu.Device         { return c.dev }
func (c *mockContext) Queue() gpu.Queue           { return c.queue }
func (c *mockContext) APIVersion() gpu.APIVersion { return gpu.APIVersion{Major: 3} }
func (c *mockContext) Limits() gputypes.Limits    { return gputypes.DefaultLimits() }

type drawCall struct {
	vertexCount   uint32
	instanceCount uint32
}

type drawIndexedCall struct {
	indexCount uint32
	baseVertex int32
}

type mockRenderPass struct {
	pipelineSets int
	bindSets     int
	vertexSets   int
	indexSets    int
	scissors     [][4]uint32
	draws        []drawCall
	drawsIndexed []drawIndexedCall
}

func (p *mockRenderPass) SetPipeline(gpu.RenderPipeline)             { p.pipelineSets++ }
func (p *mockRenderPass) SetBindGroup(uint32, gpu.BindGroup)         { p.bindSets++ }
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
