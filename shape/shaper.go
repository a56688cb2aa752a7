// Package shape turns text into pre-positioned glyphs using HarfBuzz-level
// shaping from go-text/typesetting. It is the feeder for
// Renderer.QueuePrePositioned: sections shaped here pick up kerning and
// bidirectional run ordering that the renderer's built-in single-line
// layout does not apply.
//
// Glyphs are handed to the renderer by rune, and the cache engine
// rasterizes each rune's nominal glyph. Scripts whose glyph shapes depend
// on context, such as Arabic joining forms or Latin ligature substitution,
// therefore render at shaped positions but with isolated forms.
//
// A Shaper keeps its own parsed fonts. Register each font under the same
// FontID the renderer assigned it, so the shaped glyphs resolve to the
// right rasterization font:
//
//	id := renderer.AddFont(f)
//	if err := shaper.AddFont(id, fontData); err != nil { ... }
//	glyphs, bounds, err := shaper.Shape(&shape.Section{...})
//	renderer.QueuePrePositioned(glyphs, bounds)
package shape

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyph/brush"
)

// ErrUnknownFont is returned when a section references a FontID that was
// never registered with AddFont.
var ErrUnknownFont = errors.New("shape: unknown font")

// defaultScale is used when a Text run leaves Scale at zero.
const defaultScale = 16

// Direction is the base paragraph direction for bidi resolution.
type Direction int

const (
	// DirectionAuto infers the direction from the text content.
	DirectionAuto Direction = iota

	// DirectionLTR forces a left-to-right base direction.
	DirectionLTR

	// DirectionRTL forces a right-to-left base direction.
	DirectionRTL
)

// Text is one styled run within a Section.
type Text struct {
	// Content is the string to shape. Newlines are treated as spaces.
	Content string

	// Font selects the font by the ID the renderer assigned it.
	Font brush.FontID

	// Scale is the font size in pixels. Zero means 16.
	Scale float32

	// Color is premultiplied-alpha-free linear RGBA.
	Color [4]float32
}

// Section is a shaped paragraph of one or more styled runs sharing a
// baseline.
type Section struct {
	// Position is the top-left pen origin in screen pixels.
	Position [2]float32

	// Depth is the z value written for every glyph.
	Depth float32

	// Direction sets the base bidi direction.
	Direction Direction

	// Text holds the styled runs in logical order.
	Text []Text
}

// Shaper shapes sections into positioned glyphs. It is safe for concurrent
// use: parsed fonts are read-only and the HarfBuzz shapers are pooled since
// they carry per-call mutable state.
type Shaper struct {
	pool sync.Pool

	mu    sync.RWMutex
	fonts map[brush.FontID]*shaperFont
}

// shaperFont pairs the go-text font used for shaping with the x/image font
// used for vertical metrics.
type shaperFont struct {
	gt *gtfont.Font
	ot *opentype.Font
}

// NewShaper creates an empty Shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fonts: make(map[brush.FontID]*shaperFont),
	}
}

// AddFont parses OpenType/TrueType font data and registers it under id.
// Registering the same id again replaces the font.
func (s *Shaper) AddFont(id brush.FontID, data []byte) error {
	gtFace, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("shape: failed to parse font for shaping: %w", err)
	}
	ot, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("shape: failed to parse font metrics: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fonts[id] = &shaperFont{gt: gtFace.Font, ot: ot}
	return nil
}

func (s *Shaper) font(id brush.FontID) (*shaperFont, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fonts[id]
	return f, ok
}

// Shape lays out a section and returns its glyphs in visual order together
// with the bounds enclosing them. The glyph positions are pen positions on
// the baseline, ready for QueuePrePositioned.
func (s *Shaper) Shape(section *Section) ([]brush.PositionedGlyph, brush.Bounds, error) {
	var (
		glyphs []brush.PositionedGlyph
		bounds brush.Bounds
		have   bool
	)

	penX := section.Position[0]

	for _, t := range section.Text {
		if t.Content == "" {
			continue
		}

		sf, ok := s.font(t.Font)
		if !ok {
			return nil, brush.Bounds{}, fmt.Errorf("%w: id %d", ErrUnknownFont, t.Font)
		}

		scale := t.Scale
		if scale <= 0 {
			scale = defaultScale
		}

		ascent, descent, err := sf.metrics(scale)
		if err != nil {
			return nil, brush.Bounds{}, err
		}
		baseline := section.Position[1] + ascent

		runes := sanitizeRunes(t.Content)
		shaped, advance := s.shapeRuns(sf, runes, scale, section.Direction, func(g brush.PositionedGlyph) brush.PositionedGlyph {
			g.Font = t.Font
			g.Scale = scale
			g.Color = t.Color
			g.Depth = section.Depth
			g.Position[1] += baseline
			return g
		}, penX)
		glyphs = append(glyphs, shaped...)

		runBounds := brush.Bounds{
			MinX: penX,
			MinY: baseline - ascent,
			MaxX: penX + advance,
			MaxY: baseline + descent,
		}
		if have {
			bounds = bounds.Union(runBounds)
		} else {
			bounds = runBounds
			have = true
		}
		penX += advance
	}

	if !have {
		return nil, brush.Bounds{}, nil
	}
	return glyphs, bounds, nil
}

// shapeRuns splits runes into bidi runs, shapes each with HarfBuzz, and
// returns the glyphs in visual order plus the total pen advance.
func (s *Shaper) shapeRuns(sf *shaperFont, runes []rune, scale float32, dir Direction, finish func(brush.PositionedGlyph) brush.PositionedGlyph, startX float32) ([]brush.PositionedGlyph, float32) {
	if len(runes) == 0 {
		return nil, 0
	}

	// font.Face carries glyph caches and is not safe for concurrent use,
	// so each Shape call builds its own over the shared read-only Font.
	face := gtfont.NewFace(sf.gt)

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	defer s.pool.Put(hb)

	var (
		glyphs  []brush.PositionedGlyph
		advance float32
	)

	for _, run := range visualRuns(runes, dir) {
		input := shaping.Input{
			Text:      runes,
			RunStart:  run.start,
			RunEnd:    run.end,
			Direction: run.direction,
			Face:      face,
			Size:      fixed.Int26_6(scale * 64),
			Script:    detectScript(runes[run.start:run.end]),
			Language:  language.NewLanguage("en"),
		}
		output := hb.Shape(input)

		for _, g := range output.Glyphs {
			r := rune(' ')
			if idx := g.TextIndex(); idx >= 0 && idx < len(runes) {
				r = runes[idx]
			}

			glyphs = append(glyphs, finish(brush.PositionedGlyph{
				Rune: r,
				Position: [2]float32{
					startX + advance + fixedToFloat32(g.XOffset),
					-fixedToFloat32(g.YOffset),
				},
			}))
			advance += fixedToFloat32(g.Advance)
		}
	}

	return glyphs, advance
}

// metrics returns the ascent and descent in pixels at the given size.
func (f *shaperFont) metrics(scale float32) (ascent, descent float32, err error) {
	face, err := opentype.NewFace(f.ot, &opentype.FaceOptions{
		Size:    float64(scale),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("shape: failed to create metrics face: %w", err)
	}
	m := face.Metrics()
	return fixedToFloat32(m.Ascent), fixedToFloat32(m.Descent), nil
}

// sanitizeRunes converts content to runes, folding line breaks to spaces.
// Shaping is single-line; callers place lines as separate sections.
func sanitizeRunes(content string) []rune {
	runes := []rune(content)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			runes[i] = ' '
		}
	}
	return runes
}

// detectScript returns the script of the first non-space rune, defaulting
// to Latin. Mixed-script runs should be split before shaping; the bidi
// segmentation here splits by direction only.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat32(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
