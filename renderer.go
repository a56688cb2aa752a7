package glyph

import (
	"errors"
	"fmt"

	"github.com/gogpu/glyph/brush"
	"github.com/gogpu/glyph/gpu"
	"github.com/gogpu/glyph/pipeline"
)

// Renderer errors.
var (
	// ErrNilContext is returned when building a Renderer without a GPU context.
	ErrNilContext = errors.New("glyph: context is nil")

	// ErrNilEngine is returned when building a Renderer with an explicit
	// nil cache engine.
	ErrNilEngine = errors.New("glyph: cache engine is nil")
)

// Region is a scissor rectangle in target pixel coordinates.
type Region = pipeline.Region

// cachePipeline is the contract shared by both pipeline variants.
// The driver and draw paths only ever see this surface, so tier dispatch
// happens exactly once per call.
type cachePipeline interface {
	CacheDimensions() (width, height uint32)
	UpdateCache(r brush.Rect, data []byte) error
	IncreaseCacheSize(width, height uint32) error
	UploadQuads(quads []brush.Quad) error
	QuadCount() int
	Draw(pass gpu.RenderPass, transform [16]float32, region *Region) error
	Release()
}

var (
	_ cachePipeline = (*pipeline.Modern)(nil)
	_ cachePipeline = (*pipeline.Legacy)(nil)
)

// Renderer draws queued text sections with cached glyph quads.
//
// It pairs one cache engine with one pipeline variant, chosen from the
// device tier at construction and fixed for the Renderer's lifetime.
// Renderers are built with [Builder.Build] and must be used from the thread
// that owns the GPU context.
type Renderer struct {
	tier           Tier
	modern         *pipeline.Modern
	legacy         *pipeline.Legacy
	engine         brush.Engine
	maxTextureSize uint32
	released       bool
}

// pipeline returns the active variant.
func (r *Renderer) pipeline() cachePipeline {
	if r.tier == TierModern {
		return r.modern
	}
	return r.legacy
}

// Tier returns the pipeline tier selected at construction.
func (r *Renderer) Tier() Tier { return r.tier }

// Queue enqueues a section for the next draw using the engine's default
// layout. Sections queue up until a draw call consumes them.
func (r *Renderer) Queue(section brush.Section) {
	r.engine.Queue(section)
}

// QueueCustomLayout enqueues a section laid out by a custom layout.
func (r *Renderer) QueueCustomLayout(section brush.Section, layout brush.Layout) {
	r.engine.QueueCustomLayout(section, layout)
}

// QueuePrePositioned enqueues glyphs that are already placed, clipped to
// bounds. Use this when layout happens outside the engine, e.g. with the
// shape package.
func (r *Renderer) QueuePrePositioned(glyphs []brush.PositionedGlyph, bounds brush.Bounds) {
	r.engine.QueuePrePositioned(glyphs, bounds)
}

// KeepCached keeps a section's glyphs resident in the cache texture across
// draws without drawing them. Useful to avoid cache churn for text that
// reappears frequently.
func (r *Renderer) KeepCached(section brush.Section) {
	r.engine.KeepCached(section)
}

// KeepCachedCustomLayout is KeepCached with a custom layout.
func (r *Renderer) KeepCachedCustomLayout(section brush.Section, layout brush.Layout) {
	r.engine.KeepCachedCustomLayout(section, layout)
}

// Glyphs returns the positioned glyphs a section would produce, without
// queueing anything. Useful for hit testing and caret placement.
func (r *Renderer) Glyphs(section brush.Section) []brush.PositionedGlyph {
	return r.engine.Glyphs(section)
}

// GlyphsCustomLayout is Glyphs with a custom layout.
func (r *Renderer) GlyphsCustomLayout(section brush.Section, layout brush.Layout) []brush.PositionedGlyph {
	return r.engine.GlyphsCustomLayout(section, layout)
}

// GlyphBounds measures the screen rectangle a section would cover, without
// queueing anything. ok is false when the section has no visible glyphs.
func (r *Renderer) GlyphBounds(section brush.Section) (bounds brush.Bounds, ok bool) {
	return r.engine.GlyphBounds(section)
}

// GlyphBoundsCustomLayout is GlyphBounds with a custom layout.
func (r *Renderer) GlyphBoundsCustomLayout(section brush.Section, layout brush.Layout) (bounds brush.Bounds, ok bool) {
	return r.engine.GlyphBoundsCustomLayout(section, layout)
}

// Fonts returns the fonts registered with the cache engine.
func (r *Renderer) Fonts() []*brush.Font {
	return r.engine.Fonts()
}

// AddFont registers a font with the cache engine and returns its ID.
func (r *Renderer) AddFont(f *brush.Font) brush.FontID {
	return r.engine.AddFont(f)
}

// DrawQueued synchronizes the glyph cache and draws every queued section
// into the given render pass, using an orthographic projection for a
// width x height target.
func (r *Renderer) DrawQueued(pass gpu.RenderPass, targetWidth, targetHeight uint32) error {
	return r.DrawQueuedWithTransform(pass, Orthographic(targetWidth, targetHeight))
}

// DrawQueuedWithTransform is DrawQueued with an explicit transform applied
// to every glyph quad.
func (r *Renderer) DrawQueuedWithTransform(pass gpu.RenderPass, transform [16]float32) error {
	return r.DrawQueuedWithTransformAndScissoring(pass, transform, nil)
}

// DrawQueuedWithTransformAndScissoring is DrawQueuedWithTransform with an
// optional scissor region. A nil region leaves the pass scissor untouched.
func (r *Renderer) DrawQueuedWithTransformAndScissoring(pass gpu.RenderPass, transform [16]float32, region *Region) error {
	if err := r.processQueued(); err != nil {
		return err
	}
	return r.pipeline().Draw(pass, transform, region)
}

// String describes the renderer's tier, cache texture size, and the number
// of glyph quads currently uploaded.
func (r *Renderer) String() string {
	p := r.pipeline()
	w, h := p.CacheDimensions()
	return fmt.Sprintf("glyph.Renderer(tier=%s, cache=%dx%d, quads=%d)",
		r.tier, w, h, p.QuadCount())
}

// Release destroys the renderer's GPU resources. Safe to call more than once.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.pipeline().Release()
}
