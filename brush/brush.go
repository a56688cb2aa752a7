package brush

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// Engine is the glyph cache contract consumed by the renderer's cache-sync
// driver. [Brush] is the reference implementation; hosts with their own text
// stack can substitute one as long as the ProcessQueued semantics hold:
// patches target a caller-owned texture of CacheTextureDimensions size, and
// a TextureTooSmallError leaves the queue intact for a retry after
// ResizeCacheTexture.
type Engine interface {
	// Queue enqueues a section for the next ProcessQueued using the
	// default layout.
	Queue(section Section)

	// QueueCustomLayout enqueues a section laid out by a custom Layout.
	QueueCustomLayout(section Section, layout Layout)

	// QueuePrePositioned enqueues glyphs that are already placed.
	// Quads are clipped to bounds.
	QueuePrePositioned(glyphs []PositionedGlyph, bounds Bounds)

	// KeepCached keeps a section's glyphs resident in the cache texture
	// without drawing them this frame.
	KeepCached(section Section)

	// KeepCachedCustomLayout is KeepCached with a custom Layout.
	KeepCachedCustomLayout(section Section, layout Layout)

	// Glyphs returns the positioned glyphs a section would produce,
	// without queueing anything.
	Glyphs(section Section) []PositionedGlyph

	// GlyphsCustomLayout is Glyphs with a custom Layout.
	GlyphsCustomLayout(section Section, layout Layout) []PositionedGlyph

	// GlyphBounds measures the bounds enclosing every visible glyph of a
	// section, clipped to the section bounds, without queueing anything.
	// ok is false when the section has no visible glyphs.
	GlyphBounds(section Section) (bounds Bounds, ok bool)

	// GlyphBoundsCustomLayout is GlyphBounds with a custom Layout.
	GlyphBoundsCustomLayout(section Section, layout Layout) (bounds Bounds, ok bool)

	// Fonts returns the registered fonts in registration order.
	Fonts() []*Font

	// AddFont registers a font and returns its ID.
	AddFont(f *Font) FontID

	// CacheTextureDimensions returns the current cache texture size the
	// engine is packing against.
	CacheTextureDimensions() (width, height uint32)

	// ResizeCacheTexture adopts a new cache texture size. All cached
	// placements are dropped and re-patched by the next ProcessQueued.
	ResizeCacheTexture(width, height uint32)

	// ProcessQueued rasterizes and places every queued glyph, reporting
	// texture writes through patch, and returns the frame's draw action.
	// Cached glyphs that no queued section references anymore may be
	// evicted to make room. On TextureTooSmallError the queue is retained
	// so the call can be retried after resizing.
	ProcessQueued(patch func(r Rect, data []byte)) (Action, error)
}

// ActionKind discriminates the result of ProcessQueued.
type ActionKind int

const (
	// ActionDraw means new vertex data was produced and must be uploaded.
	ActionDraw ActionKind = iota

	// ActionRedraw means the frame is identical to the previous one; the
	// vertices already uploaded remain valid.
	ActionRedraw
)

// Action is the result of a successful ProcessQueued call.
type Action struct {
	Kind  ActionKind
	Quads []Quad
}

// TextureTooSmallError reports that the cache texture cannot fit the queued
// glyphs and suggests a size to grow to.
type TextureTooSmallError struct {
	SuggestedWidth  uint32
	SuggestedHeight uint32
}

func (e *TextureTooSmallError) Error() string {
	return fmt.Sprintf("brush: cache texture too small, suggested %dx%d",
		e.SuggestedWidth, e.SuggestedHeight)
}

// DefaultCacheSize is the initial cache texture dimension used when the
// config leaves it at zero.
const DefaultCacheSize = 256

// Config holds construction parameters for a Brush.
type Config struct {
	// CacheWidth, CacheHeight set the initial cache texture size.
	// Zero values default to DefaultCacheSize. Text-heavy applications
	// should start larger to avoid growth cycles on the first frames.
	CacheWidth  uint32
	CacheHeight uint32
}

type glyphKey struct {
	font     FontID
	r        rune
	scaleKey int32
}

type cachedGlyph struct {
	bitmap  glyphBitmap
	missing bool // face has no glyph for the rune
	placed  bool
	rect    Rect
}

type queuedGlyph struct {
	g    PositionedGlyph
	clip Bounds
}

// Brush is the reference Engine implementation. It lays out queued sections
// immediately, rasterizes glyphs with golang.org/x/image/font, and packs
// them into the cache texture with a shelf allocator.
//
// Brush is safe for concurrent use.
type Brush struct {
	mu sync.Mutex

	fonts  []*Font
	layout Layout

	width  uint32
	height uint32
	packer *shelfPacker
	cache  map[glyphKey]*cachedGlyph

	queued []queuedGlyph
	keep   []queuedGlyph

	lastHash  uint64
	lastValid bool
}

var _ Engine = (*Brush)(nil)

// New creates a Brush with the given fonts. Font IDs are assigned in
// argument order starting at zero.
func New(cfg Config, fonts ...*Font) *Brush {
	w := cfg.CacheWidth
	if w == 0 {
		w = DefaultCacheSize
	}
	h := cfg.CacheHeight
	if h == 0 {
		h = DefaultCacheSize
	}

	return &Brush{
		fonts:  fonts,
		layout: DefaultLayout(),
		width:  w,
		height: h,
		packer: newShelfPacker(w, h),
		cache:  make(map[glyphKey]*cachedGlyph),
	}
}

// AddFont registers a font and returns its ID.
func (b *Brush) AddFont(f *Font) FontID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fonts = append(b.fonts, f)
	return FontID(len(b.fonts) - 1)
}

// Fonts returns the registered fonts in registration order.
// The returned slice must not be modified.
func (b *Brush) Fonts() []*Font {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fonts
}

// Queue enqueues a section with the default layout.
func (b *Brush) Queue(section Section) {
	b.QueueCustomLayout(section, b.layout)
}

// QueueCustomLayout enqueues a section laid out by the given layout.
func (b *Brush) QueueCustomLayout(section Section, layout Layout) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clip := section.clipBounds()
	for _, g := range layout.LayoutGlyphs(b.fonts, &section) {
		b.queued = append(b.queued, queuedGlyph{g: g, clip: clip})
	}
}

// QueuePrePositioned enqueues glyphs that are already placed.
func (b *Brush) QueuePrePositioned(glyphs []PositionedGlyph, bounds Bounds) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, g := range glyphs {
		b.queued = append(b.queued, queuedGlyph{g: g, clip: bounds})
	}
}

// KeepCached rasterizes and retains a section's glyphs without drawing them.
func (b *Brush) KeepCached(section Section) {
	b.KeepCachedCustomLayout(section, b.layout)
}

// KeepCachedCustomLayout is KeepCached with a custom layout.
func (b *Brush) KeepCachedCustomLayout(section Section, layout Layout) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clip := section.clipBounds()
	for _, g := range layout.LayoutGlyphs(b.fonts, &section) {
		b.keep = append(b.keep, queuedGlyph{g: g, clip: clip})
	}
}

// Glyphs returns the positioned glyphs a section would produce with the
// default layout, without queueing anything.
func (b *Brush) Glyphs(section Section) []PositionedGlyph {
	return b.GlyphsCustomLayout(section, b.layout)
}

// GlyphsCustomLayout is Glyphs with a custom layout.
func (b *Brush) GlyphsCustomLayout(section Section, layout Layout) []PositionedGlyph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return layout.LayoutGlyphs(b.fonts, &section)
}

// GlyphBounds measures the section without queueing it.
func (b *Brush) GlyphBounds(section Section) (Bounds, bool) {
	return b.GlyphBoundsCustomLayout(section, b.layout)
}

// GlyphBoundsCustomLayout is GlyphBounds with a custom layout. The result
// matches the pixel rectangles drawing the same section would produce.
func (b *Brush) GlyphBoundsCustomLayout(section Section, layout Layout) (Bounds, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clip := section.clipBounds()
	var (
		bounds Bounds
		have   bool
	)
	for _, g := range layout.LayoutGlyphs(b.fonts, &section) {
		r, ok := b.glyphPixelBounds(g)
		if !ok {
			continue
		}
		r = r.Intersect(clip)
		if r.Empty() {
			continue
		}
		if have {
			bounds = bounds.Union(r)
		} else {
			bounds = r
			have = true
		}
	}
	return bounds, have
}

// glyphPixelBounds returns the screen rectangle a glyph's quad would cover,
// using the same outline rounding as rasterization.
func (b *Brush) glyphPixelBounds(g PositionedGlyph) (Bounds, bool) {
	if int(g.Font) < 0 || int(g.Font) >= len(b.fonts) {
		return Bounds{}, false
	}
	face, err := b.fonts[g.Font].face(quantizeScale(g.Scale))
	if err != nil {
		return Bounds{}, false
	}
	r, _, ok := face.GlyphBounds(g.Rune)
	if !ok {
		return Bounds{}, false
	}

	w := r.Max.X.Ceil() - r.Min.X.Floor()
	h := r.Max.Y.Ceil() - r.Min.Y.Floor()
	if w <= 0 || h <= 0 {
		return Bounds{}, false
	}

	x := g.Position[0] + float32(r.Min.X.Floor())
	y := g.Position[1] + float32(r.Min.Y.Floor())
	return Bounds{MinX: x, MinY: y, MaxX: x + float32(w), MaxY: y + float32(h)}, true
}

// CacheTextureDimensions returns the cache texture size being packed against.
func (b *Brush) CacheTextureDimensions() (width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// ResizeCacheTexture adopts a new cache texture size. Rasterized bitmaps are
// kept but every placement is dropped, so the next ProcessQueued re-patches
// all glyphs it needs into the new texture.
func (b *Brush) ResizeCacheTexture(width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width = width
	b.height = height
	b.packer.reset(width, height)
	for _, c := range b.cache {
		c.placed = false
	}
	b.lastValid = false
}

// ProcessQueued implements Engine.
func (b *Brush) ProcessQueued(patch func(r Rect, data []byte)) (Action, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	patched, err := b.placeQueued(patch)
	if err != nil {
		// Before asking for a bigger texture, trim glyphs no longer
		// referenced by any queued section and re-pack at the current
		// size. A steady working set then never grows the texture, no
		// matter how many glyphs have come and gone before it.
		if !b.trimStale() {
			// Queue stays intact so the caller can resize and retry.
			return Action{}, err
		}
		retried, err := b.placeQueued(patch)
		if err != nil {
			return Action{}, err
		}
		patched = patched || retried
	}

	hash := b.queueHash()
	if !patched && b.lastValid && hash == b.lastHash {
		b.clearQueue()
		return Action{Kind: ActionRedraw}, nil
	}

	quads := b.buildQuads()
	b.lastHash = hash
	b.lastValid = true
	b.clearQueue()
	return Action{Kind: ActionDraw, Quads: quads}, nil
}

// placeQueued rasterizes and places every queued glyph, reporting whether
// any patch was issued. On error the queue is left intact.
func (b *Brush) placeQueued(patch func(r Rect, data []byte)) (bool, error) {
	patched := false
	for _, list := range [2][]queuedGlyph{b.queued, b.keep} {
		for _, q := range list {
			didPatch, err := b.ensureCached(q.g, patch)
			if err != nil {
				return patched, err
			}
			patched = patched || didPatch
		}
	}
	return patched, nil
}

// trimStale evicts every cached glyph the current queue does not reference
// and drops all placements so the retry re-packs the texture from scratch.
// Reports whether anything was evicted; with nothing stale a retry cannot
// succeed and the too-small error stands.
func (b *Brush) trimStale() bool {
	inUse := make(map[glyphKey]bool, len(b.queued)+len(b.keep))
	for _, list := range [2][]queuedGlyph{b.queued, b.keep} {
		for _, q := range list {
			key := glyphKey{font: q.g.Font, r: q.g.Rune, scaleKey: quantizeScale(q.g.Scale)}
			inUse[key] = true
		}
	}

	stale := false
	for key, c := range b.cache {
		if c.placed && !inUse[key] {
			stale = true
			break
		}
	}
	if !stale {
		return false
	}

	for key, c := range b.cache {
		if !inUse[key] {
			delete(b.cache, key)
			continue
		}
		c.placed = false
	}
	b.packer.reset(b.width, b.height)
	b.lastValid = false
	return true
}

func (b *Brush) clearQueue() {
	b.queued = b.queued[:0]
	b.keep = b.keep[:0]
}

// ensureCached rasterizes and places one glyph if needed, reporting the
// texture write through patch. Returns whether a patch was issued.
func (b *Brush) ensureCached(g PositionedGlyph, patch func(r Rect, data []byte)) (bool, error) {
	key := glyphKey{font: g.Font, r: g.Rune, scaleKey: quantizeScale(g.Scale)}
	c, ok := b.cache[key]
	if !ok {
		c = &cachedGlyph{}
		if int(g.Font) >= 0 && int(g.Font) < len(b.fonts) {
			face, err := b.fonts[g.Font].face(key.scaleKey)
			if err == nil {
				bm, hasGlyph := rasterizeGlyph(face, g.Rune)
				c.bitmap = bm
				c.missing = !hasGlyph
			} else {
				c.missing = true
			}
		} else {
			c.missing = true
		}
		b.cache[key] = c
	}

	if c.missing || c.bitmap.empty() || c.placed {
		return false, nil
	}

	rect, ok := b.packer.alloc(c.bitmap.width, c.bitmap.height)
	if !ok {
		return false, b.tooSmallError(c.bitmap)
	}
	c.rect = rect
	c.placed = true
	if patch != nil {
		patch(rect, c.bitmap.data)
	}
	return true, nil
}

// tooSmallError suggests doubling the cache texture until the failed glyph
// would fit. The caller may clamp the suggestion to device limits.
func (b *Brush) tooSmallError(bm glyphBitmap) error {
	w := b.width * 2
	h := b.height * 2
	for w < bm.width+glyphPadding {
		w *= 2
	}
	for h < bm.height+glyphPadding {
		h *= 2
	}
	return &TextureTooSmallError{SuggestedWidth: w, SuggestedHeight: h}
}

// buildQuads converts the queued glyphs into clipped draw quads.
func (b *Brush) buildQuads() []Quad {
	quads := make([]Quad, 0, len(b.queued))
	texW := float32(b.width)
	texH := float32(b.height)

	for _, q := range b.queued {
		key := glyphKey{font: q.g.Font, r: q.g.Rune, scaleKey: quantizeScale(q.g.Scale)}
		c := b.cache[key]
		if c == nil || c.missing || c.bitmap.empty() || !c.placed {
			continue
		}

		x := q.g.Position[0] + c.bitmap.offsetX
		y := q.g.Position[1] + c.bitmap.offsetY
		pixel := Bounds{
			MinX: x,
			MinY: y,
			MaxX: x + float32(c.bitmap.width),
			MaxY: y + float32(c.bitmap.height),
		}
		tex := Bounds{
			MinX: float32(c.rect.X) / texW,
			MinY: float32(c.rect.Y) / texH,
			MaxX: float32(c.rect.X+c.rect.Width) / texW,
			MaxY: float32(c.rect.Y+c.rect.Height) / texH,
		}

		pixel, tex, visible := clipQuad(pixel, tex, q.clip)
		if !visible {
			continue
		}

		quads = append(quads, Quad{
			PixelCoords: pixel,
			TexCoords:   tex,
			Color:       q.g.Color,
			Depth:       q.g.Depth,
		})
	}
	return quads
}

// clipQuad intersects pixel with clip and shrinks tex by the same fractions,
// so partially visible glyphs sample only their visible texels.
func clipQuad(pixel, tex, clip Bounds) (Bounds, Bounds, bool) {
	clipped := pixel.Intersect(clip)
	if clipped.Empty() {
		return Bounds{}, Bounds{}, false
	}
	if clipped == pixel {
		return pixel, tex, true
	}

	w := pixel.MaxX - pixel.MinX
	h := pixel.MaxY - pixel.MinY
	tw := tex.MaxX - tex.MinX
	th := tex.MaxY - tex.MinY

	tex = Bounds{
		MinX: tex.MinX + tw*(clipped.MinX-pixel.MinX)/w,
		MinY: tex.MinY + th*(clipped.MinY-pixel.MinY)/h,
		MaxX: tex.MaxX - tw*(pixel.MaxX-clipped.MaxX)/w,
		MaxY: tex.MaxY - th*(pixel.MaxY-clipped.MaxY)/h,
	}
	return clipped, tex, true
}

// queueHash fingerprints the queued glyphs so identical consecutive frames
// can be answered with ActionRedraw.
func (b *Brush) queueHash() uint64 {
	h := fnv.New64a()
	var buf [4]byte

	u32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	f32 := func(v float32) { u32(math.Float32bits(v)) }

	for _, q := range b.queued {
		u32(uint32(q.g.Font))
		u32(uint32(q.g.Rune))
		u32(uint32(quantizeScale(q.g.Scale)))
		f32(q.g.Position[0])
		f32(q.g.Position[1])
		for _, c := range q.g.Color {
			f32(c)
		}
		f32(q.g.Depth)
		f32(q.clip.MinX)
		f32(q.clip.MinY)
		f32(q.clip.MaxX)
		f32(q.clip.MaxY)
	}
	return h.Sum64()
}
