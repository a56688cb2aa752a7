package brush

import "math"

// Rect is an axis-aligned rectangle in texel coordinates.
// Used for cache texture patches.
type Rect struct {
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

// Bounds is an axis-aligned rectangle in floating-point coordinates.
type Bounds struct {
	MinX float32
	MinY float32
	MaxX float32
	MaxY float32
}

// InfiniteBounds returns bounds that contain every point.
func InfiniteBounds() Bounds {
	inf := float32(math.Inf(1))
	return Bounds{MinX: -inf, MinY: -inf, MaxX: inf, MaxY: inf}
}

// Empty reports whether the bounds contain no area.
func (b Bounds) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	r := b
	if o.MinX < r.MinX {
		r.MinX = o.MinX
	}
	if o.MinY < r.MinY {
		r.MinY = o.MinY
	}
	if o.MaxX > r.MaxX {
		r.MaxX = o.MaxX
	}
	if o.MaxY > r.MaxY {
		r.MaxY = o.MaxY
	}
	return r
}

// Intersect returns the overlap of b and o.
func (b Bounds) Intersect(o Bounds) Bounds {
	r := b
	if o.MinX > r.MinX {
		r.MinX = o.MinX
	}
	if o.MinY > r.MinY {
		r.MinY = o.MinY
	}
	if o.MaxX < r.MaxX {
		r.MaxX = o.MaxX
	}
	if o.MaxY < r.MaxY {
		r.MaxY = o.MaxY
	}
	return r
}

// FontID identifies a font registered with a Brush via AddFont.
// The zero value refers to the first font added.
type FontID int

// Text is one styled run within a Section.
type Text struct {
	// Content is the text to draw.
	Content string

	// Font selects the font by registration order. Defaults to the first
	// registered font.
	Font FontID

	// Scale is the font size in pixels per em. Zero means 16.
	Scale float32

	// Color is linear RGBA in [0, 1].
	Color [4]float32
}

// Section is a block of text queued for drawing at a screen position.
type Section struct {
	// Position of the layout origin in screen pixels.
	Position [2]float32

	// Bounds is the maximum layout extent in pixels from Position.
	// Zero means unbounded on that axis. Glyph quads are clipped to it.
	Bounds [2]float32

	// Depth is the z value written for every glyph of this section.
	Depth float32

	// Text runs drawn in order.
	Text []Text
}

// clipBounds returns the section's clipping rectangle in screen coordinates.
func (s *Section) clipBounds() Bounds {
	b := InfiniteBounds()
	if s.Bounds[0] > 0 {
		b.MinX = s.Position[0]
		b.MaxX = s.Position[0] + s.Bounds[0]
	}
	if s.Bounds[1] > 0 {
		b.MinY = s.Position[1]
		b.MaxY = s.Position[1] + s.Bounds[1]
	}
	return b
}

// PositionedGlyph is a single glyph with resolved screen placement.
// Produced by layouts or supplied directly via QueuePrePositioned.
type PositionedGlyph struct {
	// Font and Rune identify the glyph.
	Font FontID
	Rune rune

	// Position is the glyph origin (baseline, left edge) in screen pixels.
	Position [2]float32

	// Scale is the font size in pixels per em.
	Scale float32

	// Color is linear RGBA in [0, 1].
	Color [4]float32

	// Depth is the z value for the glyph's quad.
	Depth float32
}

// Quad is the draw data for one cached glyph: its screen rectangle and the
// matching cache texture rectangle in normalized coordinates.
type Quad struct {
	PixelCoords Bounds
	TexCoords   Bounds
	Color       [4]float32
	Depth       float32
}

// Layout converts a section into positioned glyphs.
// Implementations must not retain the section.
type Layout interface {
	LayoutGlyphs(fonts []*Font, section *Section) []PositionedGlyph
}
