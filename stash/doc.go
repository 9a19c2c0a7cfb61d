// Package stash is a fontstash-style glyph rasterization engine.
//
// A [Stash] owns a single-channel coverage bitmap (one byte per pixel) into
// which glyphs are rasterized on demand and packed with a skyline bin
// packer. It never talks to the GPU. Instead it reports every change of its
// bitmap through a narrow [Renderer] callback contract:
//
//   - Create(w, h) when the bitmap is first needed
//   - Resize(w, h) when the bitmap is grown or reset
//   - Expand() when a glyph does not fit and the atlas should grow
//   - Update(rect, data) when new pixels were rasterized
//
// The renderer pulls the full bitmap via [Stash.Pixels] whenever it wants
// to upload it.
//
// # Usage
//
//	s, err := stash.New(stash.Params{Width: 256, Height: 256, Renderer: r})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	font, err := s.AddFontFromMemory("sans", goregular.TTF)
//	...
//	s.SetFont(font)
//	s.SetSize(18)
//	advance, bounds := s.TextBounds(0, 0, "Hello")
//
// Glyph outlines are parsed and rasterized with golang.org/x/image/font.
//
// Stash is not safe for concurrent use. Renderer callbacks run synchronously
// on the goroutine that triggered rasterization and may re-enter the Stash
// (Expand typically calls [Stash.ExpandAtlas]).
package stash
