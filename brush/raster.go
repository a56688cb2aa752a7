package brush

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// glyphBitmap is a rasterized glyph: a tightly packed 8-bit alpha mask plus
// its placement relative to the glyph origin (baseline, left edge).
type glyphBitmap struct {
	data   []byte
	width  uint32
	height uint32

	// Bitmap top-left in pixels relative to the glyph origin.
	// offsetY is negative for glyphs extending above the baseline.
	offsetX float32
	offsetY float32
}

// empty reports whether the glyph has no visible pixels (e.g. a space).
func (b glyphBitmap) empty() bool { return b.width == 0 || b.height == 0 }

// rasterizeGlyph renders one glyph to an alpha mask.
// ok is false when the face has no glyph for the rune. Whitespace glyphs
// return ok with an empty bitmap.
func rasterizeGlyph(face font.Face, r rune) (glyphBitmap, bool) {
	bounds, _, ok := face.GlyphBounds(r)
	if !ok {
		return glyphBitmap{}, false
	}

	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()
	w := maxX - minX
	h := maxY - minY
	if w <= 0 || h <= 0 {
		return glyphBitmap{}, true
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		// Place the glyph origin so the outline lands at the mask's (0, 0).
		Dot: fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(string(r))

	// image.NewAlpha with a zero-origin rect is tightly packed (Stride == w),
	// so Pix can be used as-is for texture upload.
	return glyphBitmap{
		data:    mask.Pix,
		width:   uint32(w),
		height:  uint32(h),
		offsetX: float32(minX),
		offsetY: float32(minY),
	}, true
}
