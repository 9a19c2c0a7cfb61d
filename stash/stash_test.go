package stash

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// recordingRenderer records every callback the engine makes.
type recordingRenderer struct {
	creates, resizes, expands, updates int

	width, height int
	rects         [][4]int

	rejectResize bool
	onExpand     func() bool
}

func (r *recordingRenderer) Create(w, h int) bool {
	r.creates++
	r.width, r.height = w, h
	return true
}

func (r *recordingRenderer) Resize(w, h int) bool {
	r.resizes++
	if r.rejectResize {
		return false
	}
	r.width, r.height = w, h
	return true
}

func (r *recordingRenderer) Expand() bool {
	r.expands++
	if r.onExpand != nil {
		return r.onExpand()
	}
	return false
}

func (r *recordingRenderer) Update(rect [4]int, _ []byte) bool {
	r.updates++
	r.rects = append(r.rects, rect)
	return true
}

func newTestStash(t *testing.T, w, h int, r Renderer) *Stash {
	t.Helper()
	s, err := New(Params{Width: w, Height: h, Renderer: r})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	font, err := s.AddFontFromMemory("sans", goregular.TTF)
	if err != nil {
		t.Fatalf("AddFontFromMemory() error = %v", err)
	}
	s.SetFont(font)
	s.SetSize(16)
	t.Cleanup(s.Close)
	return s
}

func TestNewInvalidSize(t *testing.T) {
	for _, p := range []Params{{Width: 0, Height: 10}, {Width: 10, Height: -1}} {
		if _, err := New(p); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%dx%d) error = %v, want ErrInvalidSize", p.Width, p.Height, err)
		}
	}
}

func TestAddFontInvalidData(t *testing.T) {
	s, err := New(Params{Width: 64, Height: 64})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddFontFromMemory("bad", []byte("not a font")); err == nil {
		t.Error("AddFontFromMemory() accepted garbage")
	}
	if _, err := s.AddFont("missing", "/nonexistent/font.ttf"); err == nil {
		t.Error("AddFont() accepted a missing file")
	}
}

func TestFontByName(t *testing.T) {
	s := newTestStash(t, 64, 64, nil)
	if i, err := s.FontByName("sans"); err != nil || i != 0 {
		t.Errorf("FontByName(sans) = %d, %v; want 0, nil", i, err)
	}
	if _, err := s.FontByName("serif"); !errors.Is(err, ErrFontNotFound) {
		t.Errorf("FontByName(serif) error = %v, want ErrFontNotFound", err)
	}
}

func TestCreateIsLazy(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 256, 256, r)

	if r.creates != 0 {
		t.Fatalf("Create called %d times before any glyph", r.creates)
	}

	s.TextBounds(0, 0, "A")
	if r.creates != 1 {
		t.Fatalf("Create called %d times, want 1", r.creates)
	}
	if r.width != 256 || r.height != 256 {
		t.Errorf("Create(%d, %d), want (256, 256)", r.width, r.height)
	}
	if r.updates == 0 {
		t.Error("no Update after rasterizing a glyph")
	}

	s.TextBounds(0, 0, "AB")
	if r.creates != 1 {
		t.Errorf("Create called again: %d", r.creates)
	}
}

func TestCachedGlyphNoUpdate(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 256, 256, r)

	s.TextBounds(0, 0, "Hello")
	before := r.updates
	s.TextBounds(10, 10, "Hello")
	if r.updates != before {
		t.Errorf("cached text caused %d updates", r.updates-before)
	}
}

func TestUpdateRectInBounds(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 256, 256, r)
	s.TextBounds(0, 0, "The quick brown fox")

	for _, rect := range r.rects {
		if rect[0] < 0 || rect[1] < 0 || rect[2] > 256 || rect[3] > 256 || rect[0] >= rect[2] || rect[1] >= rect[3] {
			t.Errorf("bad dirty rect %v", rect)
		}
	}
	if _, pending := s.DirtyRect(); pending {
		t.Error("dirty rect still pending after text operation")
	}
}

func TestPixelsCoverage(t *testing.T) {
	s := newTestStash(t, 128, 128, &recordingRenderer{})

	data, w, h := s.Pixels()
	if w != 128 || h != 128 || len(data) != 128*128 {
		t.Fatalf("Pixels() = %d bytes %dx%d", len(data), w, h)
	}
	if data[0] != 0xff || data[1+128] != 0xff {
		t.Error("white rect missing at origin")
	}

	s.TextBounds(0, 0, "W")
	data, _, _ = s.Pixels()
	covered := 0
	for _, v := range data {
		if v != 0 {
			covered++
		}
	}
	if covered <= 4 {
		t.Errorf("only %d covered pixels after rasterizing a glyph", covered)
	}
}

func TestTextBoundsAdvance(t *testing.T) {
	s := newTestStash(t, 256, 256, nil)
	adv1, b1 := s.TextBounds(0, 0, "a")
	adv2, b2 := s.TextBounds(0, 0, "aaaa")

	if adv1 <= 0 {
		t.Fatalf("advance of %q = %v", "a", adv1)
	}
	if adv2 <= adv1 {
		t.Errorf("advance did not grow: %v <= %v", adv2, adv1)
	}
	if b2[2] <= b1[2] {
		t.Errorf("bounds did not grow: %v <= %v", b2[2], b1[2])
	}
	if b1[1] >= 0 {
		t.Errorf("glyph top %v should be above the baseline", b1[1])
	}
}

func TestTextBoundsAlignment(t *testing.T) {
	s := newTestStash(t, 256, 256, nil)
	adv, left := s.TextBounds(100, 0, "abc")

	s.SetAlign(AlignRight | AlignBaseline)
	_, right := s.TextBounds(100, 0, "abc")
	if got, want := right[0], left[0]-adv; got != want {
		t.Errorf("right aligned minX = %v, want %v", got, want)
	}

	s.SetAlign(AlignCenter | AlignBaseline)
	_, center := s.TextBounds(100, 0, "abc")
	if got, want := center[0], left[0]-adv*0.5; got != want {
		t.Errorf("centered minX = %v, want %v", got, want)
	}
}

func TestTextSize(t *testing.T) {
	s := newTestStash(t, 256, 256, nil)
	sz := s.TextSize("Hello")
	if sz[0] <= 0 || sz[1] <= 0 {
		t.Errorf("TextSize() = %v", sz)
	}
}

func TestTextBoundsNoFont(t *testing.T) {
	s, err := New(Params{Width: 64, Height: 64})
	if err != nil {
		t.Fatal(err)
	}
	if adv, b := s.TextBounds(0, 0, "x"); adv != 0 || b != ([4]float32{}) {
		t.Errorf("TextBounds without font = %v, %v", adv, b)
	}
	if it := s.TextIter(0, 0, "x"); it != nil {
		t.Error("TextIter without font returned an iterator")
	}
}

func TestTextIter(t *testing.T) {
	s := newTestStash(t, 256, 256, nil)
	it := s.TextIter(0, 0, "abc")
	if it == nil {
		t.Fatal("TextIter() = nil")
	}

	n := 0
	lastX := float32(-1e9)
	for {
		q, ok := it.Next()
		if !ok {
			break
		}
		n++
		if q.X0 < lastX {
			t.Errorf("quad %d starts at %v, before previous start %v", n, q.X0, lastX)
		}
		lastX = q.X0
		if q.S0 < 0 || q.S1 > 1 || q.T0 < 0 || q.T1 > 1 || q.S0 >= q.S1 {
			t.Errorf("quad %d has bad texcoords %+v", n, q)
		}
	}
	if n != 3 {
		t.Errorf("iterated %d quads, want 3", n)
	}

	adv, _ := s.TextBounds(0, 0, "abc")
	if it.NextX != adv {
		t.Errorf("iterator pen = %v, want advance %v", it.NextX, adv)
	}
}

func TestVerticalMetrics(t *testing.T) {
	s := newTestStash(t, 64, 64, nil)
	asc, desc, lineh, ok := s.VerticalMetrics()
	if !ok {
		t.Fatal("VerticalMetrics() not ok")
	}
	if asc <= 0 || desc >= 0 || lineh < (asc-desc)*0.99 {
		t.Errorf("VerticalMetrics() = %v, %v, %v", asc, desc, lineh)
	}

	minY, maxY := s.LineBounds(0)
	if minY >= 0 || maxY <= minY {
		t.Errorf("LineBounds(0) = %v, %v", minY, maxY)
	}
}

func TestAtlasFullReported(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 32, 32, r)
	s.SetSize(48)

	var codes []ErrorCode
	s.SetErrorFunc(func(code ErrorCode, _ int) { codes = append(codes, code) })

	s.TextBounds(0, 0, "W")
	if r.expands == 0 {
		t.Error("Expand not called for an oversized glyph")
	}
	if len(codes) == 0 || codes[0] != ErrorAtlasFull {
		t.Errorf("error codes = %v, want [atlas full]", codes)
	}
}

func TestExpandCallbackGrowsAtlas(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 64, 64, r)
	r.onExpand = func() bool {
		w, h := s.AtlasSize()
		return s.ExpandAtlas(w*2, h*2) == nil
	}
	s.SetSize(40)

	s.TextBounds(0, 0, "WMQ@#&")
	if r.expands == 0 {
		t.Fatal("Expand never called")
	}
	w, h := s.AtlasSize()
	if w <= 64 || h <= 64 {
		t.Errorf("atlas size = %dx%d, want growth", w, h)
	}
	if r.width != w || r.height != h {
		t.Errorf("renderer saw %dx%d, atlas is %dx%d", r.width, r.height, w, h)
	}
}

func TestExpandAtlasPreservesContent(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 64, 64, r)
	s.TextBounds(0, 0, "Ag")

	before, _, _ := s.Pixels()
	old := append([]byte(nil), before...)

	if err := s.ExpandAtlas(128, 128); err != nil {
		t.Fatalf("ExpandAtlas() error = %v", err)
	}
	if r.resizes != 1 || r.width != 128 || r.height != 128 {
		t.Errorf("Resize calls = %d with %dx%d", r.resizes, r.width, r.height)
	}

	after, w, h := s.Pixels()
	if w != 128 || h != 128 || len(after) != 128*128 {
		t.Fatalf("Pixels() after expand = %d bytes %dx%d", len(after), w, h)
	}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if after[y*128+x] != old[y*64+x] {
				t.Fatalf("pixel (%d,%d) changed: %d -> %d", x, y, old[y*64+x], after[y*128+x])
			}
		}
	}
	if _, pending := s.DirtyRect(); !pending {
		t.Error("expanded atlas should be dirty")
	}
}

func TestExpandAtlasRejected(t *testing.T) {
	r := &recordingRenderer{rejectResize: true}
	s := newTestStash(t, 64, 64, r)
	s.TextBounds(0, 0, "A")

	err := s.ExpandAtlas(128, 128)
	if !errors.Is(err, ErrRendererRejected) {
		t.Fatalf("ExpandAtlas() error = %v, want ErrRendererRejected", err)
	}
	if w, h := s.AtlasSize(); w != 64 || h != 64 {
		t.Errorf("atlas size = %dx%d after rejected expand", w, h)
	}
}

func TestExpandAtlasClamps(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 64, 64, r)
	s.TextBounds(0, 0, "A")

	if err := s.ExpandAtlas(32, 32); err != nil {
		t.Fatalf("ExpandAtlas(32, 32) error = %v", err)
	}
	if r.resizes != 0 {
		t.Errorf("Resize called %d times for a no-op expand", r.resizes)
	}
}

func TestResetAtlas(t *testing.T) {
	r := &recordingRenderer{}
	s := newTestStash(t, 64, 64, r)
	s.TextBounds(0, 0, "A")

	if err := s.ResetAtlas(128, 128); err != nil {
		t.Fatalf("ResetAtlas() error = %v", err)
	}
	if r.resizes != 1 {
		t.Errorf("Resize calls = %d, want 1", r.resizes)
	}
	if w, h := s.AtlasSize(); w != 128 || h != 128 {
		t.Errorf("AtlasSize() = %dx%d, want 128x128", w, h)
	}

	before := r.updates
	s.TextBounds(0, 0, "A")
	if r.updates == before {
		t.Error("glyph not re-rasterized after reset")
	}

	if err := s.ResetAtlas(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("ResetAtlas(0, 10) error = %v, want ErrInvalidSize", err)
	}
}

func TestStateStack(t *testing.T) {
	s := newTestStash(t, 64, 64, nil)
	var codes []ErrorCode
	s.SetErrorFunc(func(code ErrorCode, _ int) { codes = append(codes, code) })

	s.PushState()
	s.SetSize(30)
	s.PopState()
	if s.Size() != 16 {
		t.Errorf("Size() after pop = %v, want 16", s.Size())
	}

	s.PopState()
	if len(codes) != 1 || codes[0] != ErrorStatesUnderflow {
		t.Errorf("codes = %v, want [states underflow]", codes)
	}

	codes = nil
	for i := 0; i < maxStates+1; i++ {
		s.PushState()
	}
	if len(codes) == 0 || codes[len(codes)-1] != ErrorStatesOverflow {
		t.Errorf("codes = %v, want states overflow", codes)
	}

	s.ClearState()
	if s.Size() != 12 {
		t.Errorf("Size() after ClearState = %v, want 12", s.Size())
	}
}

func TestBlurredGlyph(t *testing.T) {
	s := newTestStash(t, 256, 256, nil)
	s.SetBlur(4)
	_, b := s.TextBounds(0, 0, "o")
	if b[2] <= b[0] {
		t.Errorf("blurred glyph bounds = %v", b)
	}
}

func TestErrorCodeString(t *testing.T) {
	if got := ErrorAtlasFull.String(); got != "atlas full" {
		t.Errorf("ErrorAtlasFull.String() = %q", got)
	}
	if got := ErrorCode(99).String(); got != "ErrorCode(99)" {
		t.Errorf("ErrorCode(99).String() = %q", got)
	}
}
