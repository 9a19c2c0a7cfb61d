package stash

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer receives the engine's atlas events.
//
// All methods are called synchronously from inside Stash operations and
// return true on success.
type Renderer interface {
	// Create is called once, before the first glyph is rasterized.
	Create(width, height int) bool

	// Resize is called when the atlas is grown or reset.
	Resize(width, height int) bool

	// Expand is called when a glyph does not fit. The renderer decides
	// whether and how to grow, typically via Stash.ExpandAtlas.
	Expand() bool

	// Update reports freshly rasterized pixels in rect [x0, y0, x1, y1).
	// data is the full atlas bitmap.
	Update(rect [4]int, data []byte) bool
}

// Align controls text alignment relative to the pen position.
type Align int

// Alignment flags. Combine one horizontal and one vertical flag.
const (
	AlignLeft   Align = 1 << 0
	AlignCenter Align = 1 << 1
	AlignRight  Align = 1 << 2

	AlignTop      Align = 1 << 3
	AlignMiddle   Align = 1 << 4
	AlignBottom   Align = 1 << 5
	AlignBaseline Align = 1 << 6
)

// InvalidFont is returned by font lookups that fail.
const InvalidFont = -1

const (
	maxStates = 20
	maxBlur   = 20
)

// Params configures a Stash.
type Params struct {
	// Width and Height are the initial atlas dimensions.
	Width  int
	Height int

	// Renderer receives atlas events. May be nil for measurement only.
	Renderer Renderer
}

type state struct {
	font    int
	align   Align
	size    float32
	blur    float32
	spacing float32
}

func defaultState() state {
	return state{
		font:  0,
		align: AlignLeft | AlignBaseline,
		size:  12,
	}
}

// Stash rasterizes glyphs into a single-channel atlas bitmap.
type Stash struct {
	params   Params
	itw, ith float32

	data    []byte
	dirty   [4]int
	created bool

	atlas  *Atlas
	fonts  []*fontEntry
	states []state

	errFunc func(code ErrorCode, val int)
}

// New creates a Stash. The renderer's Create callback is deferred until
// the first glyph is rasterized.
func New(p Params) (*Stash, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, p.Width, p.Height)
	}
	s := &Stash{
		params: p,
		atlas:  NewAtlas(p.Width, p.Height),
		fonts:  make([]*fontEntry, 0, 4),
		states: []state{defaultState()},
	}
	s.resetBitmap(p.Width, p.Height)
	return s, nil
}

// resetBitmap allocates a cleared bitmap of the given size and reserves
// the white rectangle at the origin.
func (s *Stash) resetBitmap(width, height int) {
	s.data = make([]byte, width*height)
	s.params.Width = width
	s.params.Height = height
	s.itw = 1 / float32(width)
	s.ith = 1 / float32(height)
	s.clearDirty()
	s.addWhiteRect(2, 2)
}

// SetErrorFunc installs the callback for engine error codes.
func (s *Stash) SetErrorFunc(fn func(code ErrorCode, val int)) {
	s.errFunc = fn
}

func (s *Stash) reportError(code ErrorCode, val int) {
	if s.errFunc != nil {
		s.errFunc(code, val)
	}
}

// AddFont loads a font file and returns its index.
func (s *Stash) AddFont(name, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return InvalidFont, fmt.Errorf("stash: failed to read font: %w", err)
	}
	return s.AddFontFromMemory(name, data)
}

// AddFontFromMemory parses TrueType/OpenType data and returns its index.
func (s *Stash) AddFontFromMemory(name string, data []byte) (int, error) {
	f, err := newFontEntry(name, data)
	if err != nil {
		return InvalidFont, err
	}
	s.fonts = append(s.fonts, f)
	return len(s.fonts) - 1, nil
}

// FontByName returns the index of the named font.
func (s *Stash) FontByName(name string) (int, error) {
	for i, f := range s.fonts {
		if f.name == name {
			return i, nil
		}
	}
	return InvalidFont, fmt.Errorf("%w: %q", ErrFontNotFound, name)
}

// Close releases the faces of every loaded font.
func (s *Stash) Close() {
	for _, f := range s.fonts {
		f.close()
	}
	s.fonts = nil
}

// --------------------------------------------------------------------------
// State

func (s *Stash) state() *state {
	return &s.states[len(s.states)-1]
}

// PushState saves the current font state.
func (s *Stash) PushState() {
	if len(s.states) >= maxStates {
		s.reportError(ErrorStatesOverflow, 0)
		return
	}
	s.states = append(s.states, *s.state())
}

// PopState restores the previously pushed state.
func (s *Stash) PopState() {
	if len(s.states) <= 1 {
		s.reportError(ErrorStatesUnderflow, 0)
		return
	}
	s.states = s.states[:len(s.states)-1]
}

// ClearState resets the current state to defaults.
func (s *Stash) ClearState() {
	*s.state() = defaultState()
}

// SetFont selects the current font by index.
func (s *Stash) SetFont(font int) { s.state().font = font }

// SetSize sets the font size in pixels per em.
func (s *Stash) SetSize(size float32) { s.state().size = size }

// SetSpacing sets extra spacing between glyphs in pixels.
func (s *Stash) SetSpacing(spacing float32) { s.state().spacing = spacing }

// SetBlur sets the blur radius applied to newly rasterized glyphs.
func (s *Stash) SetBlur(blur float32) { s.state().blur = blur }

// SetAlign sets the text alignment.
func (s *Stash) SetAlign(align Align) { s.state().align = align }

// Size returns the current font size.
func (s *Stash) Size() float32 { return s.state().size }

// --------------------------------------------------------------------------
// Atlas bitmap

// Pixels returns the current coverage bitmap and its dimensions.
// The slice is owned by the Stash and valid until the next atlas change.
func (s *Stash) Pixels() ([]byte, int, int) {
	return s.data, s.params.Width, s.params.Height
}

// AtlasSize returns the current atlas dimensions.
func (s *Stash) AtlasSize() (int, int) {
	return s.params.Width, s.params.Height
}

// ExpandAtlas grows the atlas to width x height, keeping every rasterized
// glyph in place. Dimensions smaller than the current ones are clamped, so
// the atlas never shrinks. Once the atlas was created, the renderer's
// Resize callback is called before the bitmap changes; if it fails the
// atlas is left untouched.
func (s *Stash) ExpandAtlas(width, height int) error {
	width = max(width, s.params.Width)
	height = max(height, s.params.Height)
	if width == s.params.Width && height == s.params.Height {
		return nil
	}

	s.flush()

	if s.created && s.params.Renderer != nil && !s.params.Renderer.Resize(width, height) {
		return fmt.Errorf("%w: %dx%d", ErrRendererRejected, width, height)
	}

	oldW, oldH := s.params.Width, s.params.Height
	data := make([]byte, width*height)
	for y := 0; y < oldH; y++ {
		copy(data[y*width:y*width+oldW], s.data[y*oldW:(y+1)*oldW])
	}
	s.atlas.Expand(width, height)

	s.data = data
	s.params.Width = width
	s.params.Height = height
	s.itw = 1 / float32(width)
	s.ith = 1 / float32(height)

	// The whole occupied area moved in memory.
	s.dirty = [4]int{0, 0, oldW, s.atlas.MaxY()}
	return nil
}

// ResetAtlas clears every rasterized glyph and sets a new atlas size.
// The renderer's Resize callback is called if the atlas was created.
func (s *Stash) ResetAtlas(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	s.flush()

	if s.created && s.params.Renderer != nil && !s.params.Renderer.Resize(width, height) {
		return fmt.Errorf("%w: %dx%d", ErrRendererRejected, width, height)
	}

	s.atlas.Reset(width, height)
	for _, f := range s.fonts {
		f.resetGlyphs()
	}
	s.resetBitmap(width, height)
	return nil
}

// ensureCreated fires the renderer's Create callback once.
func (s *Stash) ensureCreated() {
	if s.created || s.params.Renderer == nil {
		return
	}
	s.created = s.params.Renderer.Create(s.params.Width, s.params.Height)
}

func (s *Stash) clearDirty() {
	s.dirty = [4]int{s.params.Width, s.params.Height, 0, 0}
}

func (s *Stash) markDirty(x0, y0, x1, y1 int) {
	s.dirty[0] = min(s.dirty[0], x0)
	s.dirty[1] = min(s.dirty[1], y0)
	s.dirty[2] = max(s.dirty[2], x1)
	s.dirty[3] = max(s.dirty[3], y1)
}

// DirtyRect returns the pending dirty rectangle, if any.
func (s *Stash) DirtyRect() ([4]int, bool) {
	d := s.dirty
	return d, d[0] < d[2] && d[1] < d[3]
}

// flush reports the pending dirty rectangle to the renderer.
func (s *Stash) flush() {
	rect, ok := s.DirtyRect()
	if !ok {
		return
	}
	if s.created && s.params.Renderer != nil {
		s.params.Renderer.Update(rect, s.data)
	}
	s.clearDirty()
}

// alpha views the bitmap as an image.
func (s *Stash) alpha() *image.Alpha {
	return &image.Alpha{
		Pix:    s.data,
		Stride: s.params.Width,
		Rect:   image.Rect(0, 0, s.params.Width, s.params.Height),
	}
}

// addWhiteRect reserves a fully covered w x h cell used for solid fills.
func (s *Stash) addWhiteRect(w, h int) {
	gx, gy, ok := s.atlas.AddRect(w, h)
	if !ok {
		return
	}
	r := image.Rect(gx, gy, gx+w, gy+h)
	draw.Draw(s.alpha(), r, image.Opaque, image.Point{}, draw.Src)
	s.markDirty(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// --------------------------------------------------------------------------
// Glyphs

// getGlyph returns the cached glyph or rasterizes it into the atlas.
// Returns nil if the glyph cannot be packed.
func (s *Stash) getGlyph(f *fontEntry, codePoint rune, isize, iblur int16) *glyph {
	if isize <= 0 {
		return nil
	}
	iblur = min(iblur, maxBlur)
	key := glyphKey{codePoint: codePoint, size: isize, blur: iblur}
	if g, ok := f.glyphs[key]; ok {
		return g
	}

	face, err := f.face(isize)
	if err != nil {
		return nil
	}
	bounds, advance, ok := face.GlyphBounds(codePoint)
	if !ok {
		return nil
	}

	s.ensureCreated()

	pad := int(iblur) + 2
	x0, y0 := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	x1, y1 := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	gw := x1 - x0 + pad*2
	gh := y1 - y0 + pad*2

	gx, gy, ok := s.atlas.AddRect(gw, gh)
	if !ok && s.params.Renderer != nil && s.params.Renderer.Expand() {
		gx, gy, ok = s.atlas.AddRect(gw, gh)
	}
	if !ok {
		s.reportError(ErrorAtlasFull, 0)
		return nil
	}

	g := &glyph{
		codePoint: codePoint,
		size:      isize,
		blur:      iblur,
		x0:        gx,
		y0:        gy,
		x1:        gx + gw,
		y1:        gy + gh,
		xAdv:      fixedToFloat32(advance),
		xOff:      x0 - pad,
		yOff:      y0 - pad,
	}
	f.glyphs[key] = g

	// Rasterize into the cell interior; the sub-image clips the glyph.
	cell := image.Rect(gx+pad, gy+pad, gx+pad+x1-x0, gy+pad+y1-y0)
	d := font.Drawer{
		Dst:  s.alpha().SubImage(cell).(*image.Alpha),
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(gx+pad-x0, gy+pad-y0),
	}
	d.DrawString(string(codePoint))

	if iblur > 0 {
		s.blur(gx, gy, gw, gh, int(iblur))
	}

	s.markDirty(g.x0, g.y0, g.x1, g.y1)
	s.flush()
	return g
}
