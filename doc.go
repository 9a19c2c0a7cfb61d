// Package fons keeps a GPU texture in sync with a dynamic glyph atlas.
//
// # Overview
//
// A glyph rasterizer (package stash) packs glyphs into a single-channel
// coverage bitmap and grows it on demand. fons mirrors that bitmap into an
// RGBA8 GPU texture: every pixel is uploaded as white with the coverage in
// the alpha channel, ready for alpha-blended text drawing.
//
// # Quick Start
//
//	ft, err := fons.New(dev, fons.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer ft.Close()
//
//	font, _ := ft.Stash().AddFontFromMemory("sans", goregular.TTF)
//	ft.Stash().SetFont(font)
//
//	// Every frame:
//	iter := ft.Stash().TextIter(x, y, "Hello")
//	for q, ok := iter.Next(); ok; q, ok = iter.Next() {
//	    // append q to the vertex buffer
//	}
//	if err := ft.Sync(); err != nil {
//	    return err
//	}
//	// draw with ft.TextureID()
//
// # Frame Model
//
// Rasterizer callbacks only record that the atlas changed. Sync uploads
// the whole atlas at most once per frame and does nothing when the atlas
// is clean. The texture ID changes whenever the atlas grows, so fetch it
// after Sync every frame.
//
// # Errors
//
// A failed texture allocation is fatal and reported by Err and Sync as an
// *AllocationError. A failed atlas expansion only logs a warning; glyphs
// that do not fit are skipped. Callbacks arriving out of order are logged
// as contract violations and ignored.
//
// # Logging
//
// fons is silent by default. Call SetLogger to route its log/slog output.
package fons
