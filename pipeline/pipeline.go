// Package pipeline implements the GPU side of glyph drawing: a cache texture
// holding rasterized glyphs and a render pipeline that draws textured quads
// from it.
//
// Two variants exist with identical contracts. [Modern] keeps one compact
// instance record per glyph in a storage buffer and synthesizes quad corners
// in the vertex shader. [Legacy] expands every quad to four plain vertices
// and draws through an index buffer, requiring nothing beyond baseline
// vertex-buffer features. Callers select a variant from the device tier and
// use it through the same method set.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glyph/brush"
	"github.com/gogpu/glyph/gpu"
)

// Pipeline errors.
var (
	// ErrNilContext is returned when constructing a pipeline without a context.
	ErrNilContext = errors.New("pipeline: context is nil")

	// ErrPatchOutOfBounds is returned when a cache patch falls outside the
	// cache texture.
	ErrPatchOutOfBounds = errors.New("pipeline: patch is outside the cache texture")

	// ErrPatchSizeMismatch is returned when patch data doesn't match the
	// patch rectangle.
	ErrPatchSizeMismatch = errors.New("pipeline: patch data size mismatch")

	// ErrReleased is returned when using a pipeline after Release.
	ErrReleased = errors.New("pipeline: pipeline has been released")
)

// cacheFormat is the glyph cache texture format: one coverage byte per texel.
const cacheFormat = gputypes.TextureFormatR8Unorm

// Region is a scissor rectangle in target pixel coordinates.
type Region struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// Config holds construction parameters shared by both pipeline variants.
type Config struct {
	// Label prefixes debug labels on every GPU resource.
	Label string

	// TargetFormat is the color format of the render targets the pipeline
	// will draw into. Defaults to BGRA8Unorm.
	TargetFormat gputypes.TextureFormat

	// CacheWidth, CacheHeight set the initial cache texture size.
	// Zero values default to brush.DefaultCacheSize.
	CacheWidth  uint32
	CacheHeight uint32
}

// withDefaults returns cfg with zero values replaced.
func (cfg Config) withDefaults() Config {
	if cfg.Label == "" {
		cfg.Label = "glyph"
	}
	if cfg.TargetFormat == gputypes.TextureFormatUndefined {
		cfg.TargetFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if cfg.CacheWidth == 0 {
		cfg.CacheWidth = brush.DefaultCacheSize
	}
	if cfg.CacheHeight == 0 {
		cfg.CacheHeight = brush.DefaultCacheSize
	}
	return cfg
}

// IdentityTransform is the no-op draw transform.
var IdentityTransform = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// cacheTexture bundles the glyph cache texture with its view.
type cacheTexture struct {
	tex    gpu.Texture
	view   gpu.TextureView
	width  uint32
	height uint32
}

// newCacheTexture creates an R8 cache texture of the given size.
func newCacheTexture(dev gpu.Device, label string, width, height uint32) (*cacheTexture, error) {
	tex, err := dev.CreateTexture(&gpu.TextureDescriptor{
		Label:         label + " cache",
		Size:          gpu.Extent{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Format:        cacheFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to create cache texture: %w", err)
	}

	view, err := dev.CreateTextureView(tex, &gpu.TextureViewDescriptor{
		Label:  label + " cache view",
		Format: cacheFormat,
		Aspect: gputypes.TextureAspectAll,
	})
	if err != nil {
		dev.DestroyTexture(tex)
		return nil, fmt.Errorf("pipeline: failed to create cache texture view: %w", err)
	}

	return &cacheTexture{tex: tex, view: view, width: width, height: height}, nil
}

// patch writes data into a sub-rectangle of the cache texture.
func (c *cacheTexture) patch(queue gpu.Queue, r brush.Rect, data []byte) error {
	if r.X+r.Width > c.width || r.Y+r.Height > c.height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d",
			ErrPatchOutOfBounds, r.Width, r.Height, r.X, r.Y, c.width, c.height)
	}
	if uint32(len(data)) != r.Width*r.Height {
		return fmt.Errorf("%w: got %d bytes for %dx%d",
			ErrPatchSizeMismatch, len(data), r.Width, r.Height)
	}

	return queue.WriteTexture(
		&gpu.TextureCopyView{
			Texture: c.tex,
			Origin:  gpu.Origin{X: r.X, Y: r.Y},
		},
		data,
		&gpu.TextureDataLayout{BytesPerRow: r.Width, RowsPerImage: r.Height},
		&gpu.Extent{Width: r.Width, Height: r.Height, DepthOrArrayLayers: 1},
	)
}

// release destroys the texture and view.
func (c *cacheTexture) release(dev gpu.Device) {
	dev.DestroyTextureView(c.view)
	dev.DestroyTexture(c.tex)
}

// newCacheSampler creates the linear clamping sampler both variants use.
func newCacheSampler(dev gpu.Device, label string) (gpu.Sampler, error) {
	s, err := dev.CreateSampler(&gpu.SamplerDescriptor{
		Label:        label + " sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to create sampler: %w", err)
	}
	return s, nil
}

// colorTarget is the premultiplied-alpha blend target both variants render to.
func colorTarget(format gputypes.TextureFormat) gputypes.ColorTargetState {
	premul := gputypes.BlendStatePremultiplied()
	return gputypes.ColorTargetState{
		Format:    format,
		Blend:     &premul,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
}
