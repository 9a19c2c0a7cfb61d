package stash

// Quad is a screen rectangle and its texture coordinates in the atlas.
type Quad struct {
	X0, Y0, S0, T0 float32
	X1, Y1, S1, T1 float32
}

func (s *Stash) currentFont() *fontEntry {
	i := s.state().font
	if i < 0 || i >= len(s.fonts) {
		return nil
	}
	return s.fonts[i]
}

// isize converts a pixel size to the tenths used as cache keys.
func isize(size float32) int16 {
	return int16(size * 10)
}

// verticalAlign returns the y offset that moves the pen onto the baseline.
// Coordinates grow downwards.
func verticalAlign(f *fontEntry, align Align, size float32) float32 {
	switch {
	case align&AlignBaseline != 0:
		return 0
	case align&AlignTop != 0:
		return f.ascender * size
	case align&AlignMiddle != 0:
		return (f.ascender + f.descender) / 2 * size
	case align&AlignBottom != 0:
		return f.descender * size
	default:
		return 0
	}
}

// quad computes the quad for g at pen (x, y) and returns the advanced pen x.
// prev is the previous rune or -1.
func (s *Stash) quad(f *fontEntry, prev rune, g *glyph, spacing, x, y float32) (Quad, float32) {
	if prev >= 0 {
		adv := f.kern(g.size, prev, g.codePoint)
		x += float32(int(adv + spacing + 0.5))
	}

	// Inset by one pixel to skip the empty border around each cell.
	xOff := float32(g.xOff + 1)
	yOff := float32(g.yOff + 1)
	x0 := float32(g.x0 + 1)
	y0 := float32(g.y0 + 1)
	x1 := float32(g.x1 - 1)
	y1 := float32(g.y1 - 1)

	rx := float32(int(x + xOff))
	ry := float32(int(y + yOff))
	q := Quad{
		X0: rx,
		Y0: ry,
		X1: rx + x1 - x0,
		Y1: ry + y1 - y0,
		S0: x0 * s.itw,
		T0: y0 * s.ith,
		S1: x1 * s.itw,
		T1: y1 * s.ith,
	}
	return q, x + float32(int(g.xAdv+0.5))
}

// TextBounds measures str drawn at (x, y) with the current state,
// rasterizing any glyph not yet in the atlas. It returns the horizontal
// advance and the bounds [minX, minY, maxX, maxY].
func (s *Stash) TextBounds(x, y float32, str string) (float32, [4]float32) {
	st := *s.state()
	f := s.currentFont()
	if f == nil {
		return 0, [4]float32{}
	}
	is := isize(st.size)
	ib := int16(st.blur)

	y += verticalAlign(f, st.align, st.size)

	minX, maxX := x, x
	minY, maxY := y, y
	startX := x
	prev := rune(-1)

	for _, r := range str {
		g := s.getGlyph(f, r, is, ib)
		if g == nil {
			prev = -1
			continue
		}
		var q Quad
		q, x = s.quad(f, prev, g, st.spacing, x, y)
		minX = min(minX, q.X0)
		maxX = max(maxX, q.X1)
		minY = min(minY, q.Y0)
		maxY = max(maxY, q.Y1)
		prev = r
	}

	advance := x - startX
	switch {
	case st.align&AlignRight != 0:
		minX -= advance
		maxX -= advance
	case st.align&AlignCenter != 0:
		minX -= advance * 0.5
		maxX -= advance * 0.5
	}
	return advance, [4]float32{minX, minY, maxX, maxY}
}

// TextSize returns the width and height of the bounds of str.
func (s *Stash) TextSize(str string) [2]float32 {
	_, b := s.TextBounds(0, 0, str)
	return [2]float32{b[2] - b[0], b[3] - b[1]}
}

// VerticalMetrics returns ascender, descender and line height of the
// current font at the current size. ok is false without a valid font.
func (s *Stash) VerticalMetrics() (ascender, descender, lineh float32, ok bool) {
	f := s.currentFont()
	if f == nil {
		return 0, 0, 0, false
	}
	size := s.state().size
	return f.ascender * size, f.descender * size, f.lineh * size, true
}

// LineBounds returns the vertical extent of a line whose pen is at y.
func (s *Stash) LineBounds(y float32) (minY, maxY float32) {
	st := s.state()
	f := s.currentFont()
	if f == nil {
		return 0, 0
	}
	y += verticalAlign(f, st.align, st.size)
	minY = y - f.ascender*st.size
	maxY = minY + f.lineh*st.size
	return minY, maxY
}

// TextIterator walks the quads of a string.
type TextIterator struct {
	stash   *Stash
	font    *fontEntry
	runes   []rune
	next    int
	prev    rune
	size    int16
	blur    int16
	spacing float32

	// X and Y are the pen position of the current rune.
	X, Y float32
	// NextX and NextY are the pen position after the current rune.
	NextX, NextY float32
	// CodePoint is the current rune.
	CodePoint rune
}

// TextIter starts iterating str at (x, y) with the current state.
// Returns nil without a valid font.
func (s *Stash) TextIter(x, y float32, str string) *TextIterator {
	st := *s.state()
	f := s.currentFont()
	if f == nil {
		return nil
	}

	switch {
	case st.align&AlignRight != 0:
		w, _ := s.TextBounds(x, y, str)
		x -= w
	case st.align&AlignCenter != 0:
		w, _ := s.TextBounds(x, y, str)
		x -= w * 0.5
	}
	y += verticalAlign(f, st.align, st.size)

	return &TextIterator{
		stash:   s,
		font:    f,
		runes:   []rune(str),
		prev:    -1,
		size:    isize(st.size),
		blur:    int16(st.blur),
		spacing: st.spacing,
		X:       x,
		Y:       y,
		NextX:   x,
		NextY:   y,
	}
}

// Next returns the quad of the next rune. ok is false at the end.
// Runes whose glyph could not be rasterized yield a zero Quad.
func (it *TextIterator) Next() (q Quad, ok bool) {
	if it.next >= len(it.runes) {
		return Quad{}, false
	}
	r := it.runes[it.next]
	it.next++

	it.CodePoint = r
	it.X, it.Y = it.NextX, it.NextY
	g := it.stash.getGlyph(it.font, r, it.size, it.blur)
	if g == nil {
		it.prev = -1
		return Quad{}, true
	}
	q, it.NextX = it.stash.quad(it.font, it.prev, g, it.spacing, it.NextX, it.NextY)
	it.prev = r
	return q, true
}
