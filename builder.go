package glyph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyph/brush"
	"github.com/gogpu/glyph/gpu"
	"github.com/gogpu/glyph/pipeline"
)

// defaultMaxTextureSize is assumed when the device reports no limit.
const defaultMaxTextureSize = 2048

// Builder configures and constructs a [Renderer].
type Builder struct {
	fonts        []*brush.Font
	engine       brush.Engine
	engineSet    bool
	cacheWidth   uint32
	cacheHeight  uint32
	targetFormat gputypes.TextureFormat
	label        string
}

// NewBuilder starts a renderer configuration with the given fonts.
// Font IDs are assigned in argument order starting at zero.
func NewBuilder(fonts ...*brush.Font) *Builder {
	return &Builder{fonts: fonts}
}

// WithInitialCacheSize sets the starting cache texture dimensions.
// Pre-sizing for the expected glyph load avoids resize cycles on the first
// frames. Defaults to brush.DefaultCacheSize on both axes.
func (b *Builder) WithInitialCacheSize(width, height uint32) *Builder {
	b.cacheWidth = width
	b.cacheHeight = height
	return b
}

// WithTargetFormat sets the color format of the render targets the renderer
// will draw into. Defaults to BGRA8Unorm.
func (b *Builder) WithTargetFormat(format gputypes.TextureFormat) *Builder {
	b.targetFormat = format
	return b
}

// WithEngine substitutes a custom cache engine for the built-in brush.
// The engine's texture dimensions override WithInitialCacheSize, and fonts
// passed to NewBuilder are ignored.
func (b *Builder) WithEngine(e brush.Engine) *Builder {
	b.engine = e
	b.engineSet = true
	return b
}

// WithLabel sets the debug label prefix on GPU resources.
func (b *Builder) WithLabel(label string) *Builder {
	b.label = label
	return b
}

// Build probes the context's capability tier and constructs the matching
// pipeline variant paired with the cache engine.
func (b *Builder) Build(ctx gpu.Context) (*Renderer, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if b.engineSet && b.engine == nil {
		return nil, ErrNilEngine
	}

	engine := b.engine
	if engine == nil {
		engine = brush.New(brush.Config{
			CacheWidth:  b.cacheWidth,
			CacheHeight: b.cacheHeight,
		}, b.fonts...)
	}

	// The pipeline's cache texture must match the engine's mirror exactly.
	cacheW, cacheH := engine.CacheTextureDimensions()

	maxSize := ctx.Limits().MaxTextureDimension2D
	if maxSize == 0 {
		maxSize = defaultMaxTextureSize
	}

	cfg := pipeline.Config{
		Label:        b.label,
		TargetFormat: b.targetFormat,
		CacheWidth:   cacheW,
		CacheHeight:  cacheH,
	}

	r := &Renderer{
		tier:           DetectTier(ctx.APIVersion()),
		engine:         engine,
		maxTextureSize: maxSize,
	}

	var err error
	switch r.tier {
	case TierModern:
		r.modern, err = pipeline.NewModern(ctx, cfg)
	default:
		r.legacy, err = pipeline.NewLegacy(ctx, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to build %s pipeline: %w", r.tier, err)
	}

	Logger().Debug("glyph renderer built",
		"tier", r.tier.String(),
		"cache_width", cacheW, "cache_height", cacheH,
		"max_texture_size", maxSize)

	return r, nil
}
