package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyph/gpu"
)

// WrapRenderPass adapts a hal render pass encoder so glyph draws can be
// recorded into it. The host owns the pass; glyph never begins or ends it.
func WrapRenderPass(rp hal.RenderPassEncoder) gpu.RenderPass {
	return &renderPass{hal: rp}
}

type renderPass struct {
	hal hal.RenderPassEncoder
}

var _ gpu.RenderPass = (*renderPass)(nil)

func (p *renderPass) SetPipeline(pipe gpu.RenderPipeline) {
	if wrapped, ok := pipe.(*renderPipeline); ok {
		p.hal.SetPipeline(wrapped.hal)
	}
}

func (p *renderPass) SetBindGroup(index uint32, bg gpu.BindGroup) {
	if wrapped, ok := bg.(*bindGroup); ok {
		p.hal.SetBindGroup(index, wrapped.hal, nil)
	}
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer, offset uint64) {
	if wrapped, ok := buf.(*buffer); ok {
		p.hal.SetVertexBuffer(slot, wrapped.hal, offset)
	}
}

func (p *renderPass) SetIndexBuffer(buf gpu.Buffer, format gputypes.IndexFormat, offset uint64) {
	if wrapped, ok := buf.(*buffer); ok {
		p.hal.SetIndexBuffer(wrapped.hal, format, offset)
	}
}

// SetScissorRect forwards to the encoder when the backend exposes scissor
// control. Encoders without it render unclipped.
func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	type scissorSetter interface {
		SetScissorRect(x, y, width, height uint32)
	}
	if s, ok := p.hal.(scissorSetter); ok {
		s.SetScissorRect(x, y, width, height)
	}
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.hal.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.hal.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}
