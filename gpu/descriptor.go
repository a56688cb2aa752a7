package gpu

import (
	"github.com/gogpu/gputypes"
)

// Extent is a 3D size. DepthOrArrayLayers is 1 for plain 2D textures.
type Extent struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
}

// Origin is a texel offset into a texture.
type Origin struct {
	X uint32
	Y uint32
	Z uint32
}

// TextureDescriptor describes parameters for creating a texture.
// This mirrors the WebGPU GPUTextureDescriptor specification.
type TextureDescriptor struct {
	Label         string
	Size          Extent
	MipLevelCount uint32
	SampleCount   uint32
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
}

// TextureViewDescriptor describes a view over a texture.
// The zero value selects the texture's own format and full mip range.
type TextureViewDescriptor struct {
	Label  string
	Format gputypes.TextureFormat
	Aspect gputypes.TextureAspect
}

// TextureCopyView identifies the destination of a texture write.
type TextureCopyView struct {
	Texture  Texture
	MipLevel uint32
	Origin   Origin
}

// TextureDataLayout describes the memory layout of texel data passed to
// Queue.WriteTexture.
type TextureDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

// BufferDescriptor describes parameters for creating a buffer.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// ShaderModuleDescriptor carries WGSL source for a shader module.
// Backends decide whether to consume the WGSL directly or translate it.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

// SamplerDescriptor describes a texture sampler.
type SamplerDescriptor struct {
	Label        string
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
}

// BindGroupLayoutDescriptor lists the bindings of one bind group.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

// PipelineLayoutDescriptor lists the bind group layouts of a pipeline.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
}

// BindingResource is the resource bound at one bind group slot.
// Exactly one field is set.
type BindingResource struct {
	Buffer       Buffer
	BufferOffset uint64
	BufferSize   uint64
	TextureView  TextureView
	Sampler      Sampler
}

// BindGroupEntry binds one resource to a shader binding index.
type BindGroupEntry struct {
	Binding  uint32
	Resource BindingResource
}

// BindGroupDescriptor describes a bind group.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// VertexState describes the vertex stage of a render pipeline.
type VertexState struct {
	Module     ShaderModule
	EntryPoint string
	Buffers    []gputypes.VertexBufferLayout
}

// FragmentState describes the fragment stage of a render pipeline.
type FragmentState struct {
	Module     ShaderModule
	EntryPoint string
	Targets    []gputypes.ColorTargetState
}

// RenderPipelineDescriptor describes a complete render pipeline.
type RenderPipelineDescriptor struct {
	Label       string
	Layout      PipelineLayout
	Vertex      VertexState
	Fragment    *FragmentState
	Primitive   gputypes.PrimitiveState
	Multisample gputypes.MultisampleState
}
