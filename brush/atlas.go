package brush

// glyphPadding is the gap kept between cached glyphs so that linear
// sampling never bleeds neighboring glyphs into each other.
const glyphPadding = 1

// shelf is one horizontal row of the shelf-packing allocator.
type shelf struct {
	y      uint32 // top edge
	height uint32 // tallest item placed so far, plus padding
	nextX  uint32 // next free x position
}

// shelfPacker allocates rectangles inside a fixed area using shelf packing:
// rectangles are placed left to right on horizontal shelves, and a new shelf
// is opened below the last one when no existing shelf fits.
//
// Not safe for concurrent use; the owning Brush serializes access.
type shelfPacker struct {
	width   uint32
	height  uint32
	shelves []shelf
}

func newShelfPacker(width, height uint32) *shelfPacker {
	return &shelfPacker{width: width, height: height}
}

// alloc finds space for a width x height rectangle.
// The returned rect excludes padding. ok is false when nothing fits.
func (p *shelfPacker) alloc(width, height uint32) (r Rect, ok bool) {
	if width == 0 || height == 0 {
		return Rect{}, false
	}

	paddedW := width + glyphPadding
	paddedH := height + glyphPadding
	if paddedW > p.width || paddedH > p.height {
		return Rect{}, false
	}

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.nextX+paddedW > p.width {
			continue
		}
		// A shelf with items on it cannot grow taller.
		if paddedH > s.height && s.nextX > 0 {
			continue
		}
		r = Rect{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += paddedW
		if paddedH > s.height {
			s.height = paddedH
		}
		return r, true
	}

	// Open a new shelf below the last one.
	var newY uint32
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+paddedH > p.height {
		return Rect{}, false
	}
	p.shelves = append(p.shelves, shelf{y: newY, height: paddedH, nextX: paddedW})
	return Rect{X: 0, Y: newY, Width: width, Height: height}, true
}

// reset drops every allocation and adopts new dimensions.
func (p *shelfPacker) reset(width, height uint32) {
	p.width = width
	p.height = height
	p.shelves = p.shelves[:0]
}
