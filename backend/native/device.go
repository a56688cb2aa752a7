package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyph/gpu"
)

// device implements gpu.Device over a hal.Device.
type device struct {
	hal hal.Device
}

var _ gpu.Device = (*device)(nil)

func (d *device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	depth := desc.Size.DepthOrArrayLayers
	if depth == 0 {
		depth = 1
	}

	tex, err := d.hal.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture: %w", err)
	}
	return &texture{hal: tex}, nil
}

func (d *device) DestroyTexture(t gpu.Texture) {
	if wrapped, ok := t.(*texture); ok && wrapped.hal != nil {
		d.hal.DestroyTexture(wrapped.hal)
	}
}

func (d *device) CreateTextureView(t gpu.Texture, desc *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	wrapped, ok := t.(*texture)
	if !ok {
		return nil, fmt.Errorf("native: texture is %T, not a native texture", t)
	}

	aspect := desc.Aspect
	if aspect == 0 {
		aspect = gputypes.TextureAspectAll
	}

	// Zero format and dimension inherit from the texture.
	view, err := d.hal.CreateTextureView(wrapped.hal, &hal.TextureViewDescriptor{
		Label:     desc.Label,
		Format:    desc.Format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    aspect,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture view: %w", err)
	}
	return &textureView{hal: view}, nil
}

func (d *device) DestroyTextureView(v gpu.TextureView) {
	if wrapped, ok := v.(*textureView); ok && wrapped.hal != nil {
		d.hal.DestroyTextureView(wrapped.hal)
	}
}

func (d *device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	buf, err := d.hal.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer: %w", err)
	}
	return &buffer{hal: buf}, nil
}

func (d *device) DestroyBuffer(b gpu.Buffer) {
	if wrapped, ok := b.(*buffer); ok && wrapped.hal != nil {
		d.hal.DestroyBuffer(wrapped.hal)
	}
}

func (d *device) CreateShaderModule(desc *gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	spirv, err := compileWGSL(desc.WGSL)
	if err != nil {
		return nil, fmt.Errorf("native: compile shader %q: %w", desc.Label, err)
	}

	module, err := d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: desc.Label,
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module %q: %w", desc.Label, err)
	}
	return &shaderModule{hal: module}, nil
}

func (d *device) DestroyShaderModule(m gpu.ShaderModule) {
	if wrapped, ok := m.(*shaderModule); ok && wrapped.hal != nil {
		d.hal.DestroyShaderModule(wrapped.hal)
	}
}

// compileWGSL translates WGSL source to SPIR-V words. hal shader modules
// consume SPIR-V, so the WGSL carried by the pipeline descriptors is
// translated here.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

func (d *device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s, err := d.hal.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.AddressModeU,
		AddressModeV: desc.AddressModeV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MinFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}
	return &sampler{hal: s}, nil
}

func (d *device) DestroySampler(s gpu.Sampler) {
	if wrapped, ok := s.(*sampler); ok && wrapped.hal != nil {
		d.hal.DestroySampler(wrapped.hal)
	}
}

func (d *device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	layout, err := d.hal.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: desc.Entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group layout: %w", err)
	}
	return &bindGroupLayout{hal: layout}, nil
}

func (d *device) DestroyBindGroupLayout(l gpu.BindGroupLayout) {
	if wrapped, ok := l.(*bindGroupLayout); ok && wrapped.hal != nil {
		d.hal.DestroyBindGroupLayout(wrapped.hal)
	}
}

func (d *device) CreatePipelineLayout(desc *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	layouts := make([]hal.BindGroupLayout, 0, len(desc.BindGroupLayouts))
	for _, l := range desc.BindGroupLayouts {
		wrapped, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("native: bind group layout is %T, not a native layout", l)
		}
		layouts = append(layouts, wrapped.hal)
	}

	layout, err := d.hal.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}
	return &pipelineLayout{hal: layout}, nil
}

func (d *device) DestroyPipelineLayout(l gpu.PipelineLayout) {
	if wrapped, ok := l.(*pipelineLayout); ok && wrapped.hal != nil {
		d.hal.DestroyPipelineLayout(wrapped.hal)
	}
}

func (d *device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("native: bind group layout is %T, not a native layout", desc.Layout)
	}

	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := gputypes.BindGroupEntry{Binding: e.Binding}
		if err := setBindingResource(&entry, e.Resource); err != nil {
			return nil, fmt.Errorf("native: bind group entry %d: %w", e.Binding, err)
		}
		entries = append(entries, entry)
	}

	bg, err := d.hal.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.hal,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group: %w", err)
	}
	return &bindGroup{hal: bg}, nil
}

// setBindingResource maps a glyph binding resource onto the gputypes
// binding union using the underlying hal native handles.
func setBindingResource(entry *gputypes.BindGroupEntry, r gpu.BindingResource) error {
	switch {
	case r.Buffer != nil:
		wrapped, ok := r.Buffer.(*buffer)
		if !ok {
			return fmt.Errorf("buffer is %T, not a native buffer", r.Buffer)
		}
		entry.Resource = gputypes.BufferBinding{
			Buffer: wrapped.hal.NativeHandle(),
			Offset: r.BufferOffset,
			Size:   r.BufferSize,
		}
	case r.TextureView != nil:
		wrapped, ok := r.TextureView.(*textureView)
		if !ok {
			return fmt.Errorf("texture view is %T, not a native view", r.TextureView)
		}
		entry.Resource = gputypes.TextureViewBinding{
			TextureView: wrapped.hal.NativeHandle(),
		}
	case r.Sampler != nil:
		wrapped, ok := r.Sampler.(*sampler)
		if !ok {
			return fmt.Errorf("sampler is %T, not a native sampler", r.Sampler)
		}
		entry.Resource = gputypes.SamplerBinding{
			Sampler: wrapped.hal.NativeHandle(),
		}
	default:
		return fmt.Errorf("binding resource is empty")
	}
	return nil
}

func (d *device) DestroyBindGroup(bg gpu.BindGroup) {
	if wrapped, ok := bg.(*bindGroup); ok && wrapped.hal != nil {
		d.hal.DestroyBindGroup(wrapped.hal)
	}
}

func (d *device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	layout, ok := desc.Layout.(*pipelineLayout)
	if !ok {
		return nil, fmt.Errorf("native: pipeline layout is %T, not a native layout", desc.Layout)
	}
	vertModule, ok := desc.Vertex.Module.(*shaderModule)
	if !ok {
		return nil, fmt.Errorf("native: vertex module is %T, not a native module", desc.Vertex.Module)
	}

	halDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.hal,
		Vertex: hal.VertexState{
			Module:     vertModule.hal,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    desc.Vertex.Buffers,
		},
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
	}

	if desc.Fragment != nil {
		fragModule, ok := desc.Fragment.Module.(*shaderModule)
		if !ok {
			return nil, fmt.Errorf("native: fragment module is %T, not a native module", desc.Fragment.Module)
		}
		halDesc.Fragment = &hal.FragmentState{
			Module:     fragModule.hal,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    desc.Fragment.Targets,
		}
	}

	pipe, err := d.hal.CreateRenderPipeline(halDesc)
	if err != nil {
		return nil, fmt.Errorf("native: create render pipeline: %w", err)
	}
	return &renderPipeline{hal: pipe}, nil
}

func (d *device) DestroyRenderPipeline(p gpu.RenderPipeline) {
	if wrapped, ok := p.(*renderPipeline); ok && wrapped.hal != nil {
		d.hal.DestroyRenderPipeline(wrapped.hal)
	}
}
