package brush

import "golang.org/x/image/math/fixed"

// SingleLineLayout places glyphs left to right on one baseline.
// The baseline sits one ascent below the section position, so the section
// position is the top-left corner of the laid-out text.
//
// Newlines are treated as spaces; sections needing paragraph layout should
// use a custom [Layout] or pre-positioned glyphs.
type SingleLineLayout struct{}

// DefaultLayout returns the layout used when none is given explicitly.
func DefaultLayout() Layout { return SingleLineLayout{} }

// LayoutGlyphs implements Layout.
func (SingleLineLayout) LayoutGlyphs(fonts []*Font, section *Section) []PositionedGlyph {
	glyphs := make([]PositionedGlyph, 0, sectionRuneCount(section))

	penX := fixed.I(0)
	for _, run := range section.Text {
		if int(run.Font) < 0 || int(run.Font) >= len(fonts) {
			continue
		}
		f := fonts[run.Font]

		scaleKey := quantizeScale(run.Scale)
		face, err := f.face(scaleKey)
		if err != nil {
			continue
		}
		ascent := face.Metrics().Ascent
		scale := float32(scaleKey) / 4

		prev := rune(-1)
		for _, r := range run.Content {
			if r == '\n' {
				r = ' '
			}
			advance, ok := face.GlyphAdvance(r)
			if !ok {
				prev = -1
				continue
			}
			if prev >= 0 {
				penX += face.Kern(prev, r)
			}

			glyphs = append(glyphs, PositionedGlyph{
				Font: run.Font,
				Rune: r,
				Position: [2]float32{
					section.Position[0] + fixedToFloat32(penX),
					section.Position[1] + fixedToFloat32(ascent),
				},
				Scale: scale,
				Color: run.Color,
				Depth: section.Depth,
			})

			penX += advance
			prev = r
		}
	}
	return glyphs
}

func sectionRuneCount(section *Section) int {
	n := 0
	for _, run := range section.Text {
		n += len(run.Content)
	}
	return n
}

// fixedToFloat32 converts fixed.Int26_6 to float32 pixels.
func fixedToFloat32(x fixed.Int26_6) float32 {
	return float32(x) / 64
}
