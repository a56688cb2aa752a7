package glyph

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/gogpu/glyph/brush"
)

// ErrCacheResizeLoop is returned when the cache engine keeps reporting its
// texture as too small without converging. A correct engine converges within
// a handful of doublings; hitting this indicates a misbehaving engine.
var ErrCacheResizeLoop = errors.New("glyph: cache resize did not converge")

// processQueued pulls pending work out of the cache engine and applies it to
// the pipeline: atlas patches stream through the callback during processing,
// then the resulting action either uploads a fresh quad batch or keeps the
// previous one. A too-small cache texture is grown and the processing step
// retried; the engine re-emits every cached glyph against the new texture.
func (r *Renderer) processQueued() error {
	p := r.pipeline()

	// Growth converges to the device limit within log2(max) doublings.
	// The cap only guards against an engine that never converges.
	maxRetries := bits.Len32(r.maxTextureSize) + 4

	for attempt := 0; ; attempt++ {
		if attempt > maxRetries {
			return fmt.Errorf("%w: %d resizes without success", ErrCacheResizeLoop, attempt)
		}

		var patchErr error
		action, err := r.engine.ProcessQueued(func(rect brush.Rect, data []byte) {
			if e := p.UpdateCache(rect, data); e != nil && patchErr == nil {
				patchErr = e
			}
		})
		if patchErr != nil {
			return patchErr
		}

		if err == nil {
			if action.Kind == brush.ActionRedraw {
				// Previous frame's quads are still uploaded and valid.
				return nil
			}
			return p.UploadQuads(action.Quads)
		}

		var tooSmall *brush.TextureTooSmallError
		if !errors.As(err, &tooSmall) {
			return fmt.Errorf("glyph: failed to process queued sections: %w", err)
		}

		curW, curH := r.engine.CacheTextureDimensions()
		newW, newH := growTarget(
			tooSmall.SuggestedWidth, tooSmall.SuggestedHeight,
			curW, curH, r.maxTextureSize,
		)

		Logger().Warn("increasing glyph cache texture size",
			"from_width", curW, "from_height", curH,
			"to_width", newW, "to_height", newH,
			"hint", "set an initial cache size to avoid resizing")

		if err := p.IncreaseCacheSize(newW, newH); err != nil {
			return err
		}
		r.engine.ResizeCacheTexture(newW, newH)
	}
}

// growTarget decides the cache texture size to grow to. When the suggestion
// exceeds the device limit on either axis while there is still room to grow,
// it jumps straight to (max, max) instead of creeping there through repeated
// resizes. Once the texture already sits at the limit on both axes, the
// suggestion passes through unmodified; if it fails at the GPU layer the
// frame genuinely does not fit.
func growTarget(suggestedW, suggestedH, curW, curH, max uint32) (uint32, uint32) {
	if (suggestedW > max || suggestedH > max) && (curW < max || curH < max) {
		return max, max
	}
	return suggestedW, suggestedH
}
