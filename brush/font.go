package brush

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// defaultScale is used when a Text run leaves Scale at zero.
const defaultScale = 16

// Font is a parsed font ready for layout and rasterization.
// Fonts are safe for concurrent use.
type Font struct {
	ot   *opentype.Font
	name string

	mu    sync.Mutex
	faces map[int32]font.Face
}

// ParseFont parses OpenType/TrueType font data.
func ParseFont(data []byte) (*Font, error) {
	ot, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("brush: failed to parse font: %w", err)
	}
	f := &Font{
		ot:    ot,
		faces: make(map[int32]font.Face),
	}
	if name, err := ot.Name(nil, sfnt.NameIDFamily); err == nil {
		f.name = name
	}
	return f, nil
}

// NewFont wraps an already-parsed opentype font.
func NewFont(ot *opentype.Font) *Font {
	return &Font{ot: ot, faces: make(map[int32]font.Face)}
}

// Name returns the font family name, if the font carries one.
func (f *Font) Name() string { return f.name }

// quantizeScale snaps a pixel size to quarter-pixel steps so that face and
// glyph cache keys stay stable across tiny float differences.
func quantizeScale(scale float32) int32 {
	if scale <= 0 {
		scale = defaultScale
	}
	k := int32(scale*4 + 0.5)
	if k < 1 {
		k = 1
	}
	return k
}

// face returns a rasterization face for the given quantized scale,
// creating and caching it on first use.
func (f *Font) face(scaleKey int32) (font.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if face, ok := f.faces[scaleKey]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(f.ot, &opentype.FaceOptions{
		Size:    float64(scaleKey) / 4,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("brush: failed to create face: %w", err)
	}
	f.faces[scaleKey] = face
	return face, nil
}
