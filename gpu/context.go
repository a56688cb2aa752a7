package gpu

import (
	"github.com/gogpu/gputypes"
)

// APIVersion identifies the graphics API revision exposed by a Context.
// The pipeline tier is selected from the major version alone.
type APIVersion struct {
	Major int
	Minor int
}

// Context bundles the device handles glyph needs for a rendering session.
//
// Implementations wrap a concrete GPU backend. The same Context instance is
// shared by the pipeline and the host application; glyph never owns the
// device lifetime.
type Context interface {
	// Device returns the resource-creation interface.
	Device() Device

	// Queue returns the data-upload interface.
	Queue() Queue

	// APIVersion reports the graphics API revision of the underlying device.
	APIVersion() APIVersion

	// Limits reports the device limits. MaxTextureDimension2D bounds the
	// glyph cache texture size.
	Limits() gputypes.Limits
}

// Device creates and destroys GPU resources.
//
// Creation failures return errors; Destroy methods are best-effort and must
// tolerate nil receivers on the resource side having already been released.
type Device interface {
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateTextureView(tex Texture, desc *TextureViewDescriptor) (TextureView, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	DestroyTexture(Texture)
	DestroyTextureView(TextureView)
	DestroyBuffer(Buffer)
	DestroyShaderModule(ShaderModule)
	DestroySampler(Sampler)
	DestroyBindGroupLayout(BindGroupLayout)
	DestroyPipelineLayout(PipelineLayout)
	DestroyBindGroup(BindGroup)
	DestroyRenderPipeline(RenderPipeline)
}

// Queue uploads data to GPU resources.
type Queue interface {
	// WriteTexture copies data into a sub-rectangle of a 2D texture.
	// Layout.BytesPerRow must cover Size.Width at the texture's pixel width.
	WriteTexture(dst *TextureCopyView, data []byte, layout *TextureDataLayout, size *Extent) error

	// WriteBuffer copies data into a buffer at the given byte offset.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
}

// RenderPass records draw commands into an already-begun render pass.
// glyph draws into passes owned by the host; it never begins or ends one.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, bg BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer, offset uint64)
	SetIndexBuffer(buf Buffer, format gputypes.IndexFormat, offset uint64)

	// SetScissorRect restricts rendering to the given rectangle in target
	// pixel coordinates. Implementations without scissor support may no-op.
	SetScissorRect(x, y, width, height uint32)

	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// Opaque resource handles. Implementations attach their own state; glyph
// only passes these back to the Device, Queue and RenderPass that made them.
type (
	Texture         interface{ isTexture() }
	TextureView     interface{ isTextureView() }
	Buffer          interface{ isBuffer() }
	ShaderModule    interface{ isShaderModule() }
	Sampler         interface{ isSampler() }
	BindGroupLayout interface{ isBindGroupLayout() }
	PipelineLayout  interface{ isPipelineLayout() }
	BindGroup       interface{ isBindGroup() }
	RenderPipeline  interface{ isRenderPipeline() }
)

// ResourceBase can be embedded by implementations to satisfy every opaque
// resource interface without spelling out the marker methods.
type ResourceBase struct{}

func (ResourceBase) isTexture()         {}
func (ResourceBase) isTextureView()     {}
func (ResourceBase) isBuffer()          {}
func (ResourceBase) isShaderModule()    {}
func (ResourceBase) isSampler()         {}
func (ResourceBase) isBindGroupLayout() {}
func (ResourceBase) isPipelineLayout()  {}
func (ResourceBase) isBindGroup()       {}
func (ResourceBase) isRenderPipeline()  {}
