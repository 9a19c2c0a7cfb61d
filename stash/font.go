package stash

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// glyphKey identifies a cached glyph within one font.
// Size is stored in tenths of a pixel.
type glyphKey struct {
	codePoint rune
	size      int16
	blur      int16
}

// glyph is a rasterized glyph and its place in the atlas.
type glyph struct {
	codePoint rune
	size      int16
	blur      int16

	// Atlas cell, padding included.
	x0, y0, x1, y1 int

	// Pen advance in pixels.
	xAdv float32

	// Offset of the cell's top-left corner from the pen position.
	xOff, yOff int
}

// fontEntry is a parsed font plus its per-size faces and glyph cache.
type fontEntry struct {
	name string
	data []byte
	font *opentype.Font

	// Vertical metrics normalized so that ascender-descender == 1.
	ascender  float32
	descender float32
	lineh     float32

	faces  map[int16]font.Face
	glyphs map[glyphKey]*glyph
}

func newFontEntry(name string, data []byte) (*fontEntry, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("stash: failed to parse font %q: %w", name, err)
	}

	var buf sfnt.Buffer
	upem := fixed.I(int(f.UnitsPerEm()))
	m, err := f.Metrics(&buf, upem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("stash: failed to read metrics of %q: %w", name, err)
	}

	ascent := fixedToFloat32(m.Ascent)
	descent := fixedToFloat32(m.Descent)
	fh := ascent + descent
	if fh <= 0 {
		fh = fixedToFloat32(upem)
	}
	lineh := fixedToFloat32(m.Height)
	if lineh <= 0 {
		lineh = fh
	}

	return &fontEntry{
		name:      name,
		data:      data,
		font:      f,
		ascender:  ascent / fh,
		descender: -descent / fh,
		lineh:     lineh / fh,
		faces:     make(map[int16]font.Face),
		glyphs:    make(map[glyphKey]*glyph),
	}, nil
}

// face returns the face for isize (tenths of a pixel), creating it on first use.
func (f *fontEntry) face(isize int16) (font.Face, error) {
	if fc, ok := f.faces[isize]; ok {
		return fc, nil
	}
	fc, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(isize) / 10,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("stash: failed to create face for %q: %w", f.name, err)
	}
	f.faces[isize] = fc
	return fc, nil
}

// kern returns the kerning adjustment in pixels between two runes.
func (f *fontEntry) kern(isize int16, r0, r1 rune) float32 {
	fc, err := f.face(isize)
	if err != nil {
		return 0
	}
	return fixedToFloat32(fc.Kern(r0, r1))
}

// resetGlyphs drops every cached glyph. Faces are kept.
func (f *fontEntry) resetGlyphs() {
	f.glyphs = make(map[glyphKey]*glyph)
}

func (f *fontEntry) close() {
	for _, fc := range f.faces {
		_ = fc.Close()
	}
	f.faces = nil
}

func fixedToFloat32(x fixed.Int26_6) float32 {
	return float32(x) / 64
}
