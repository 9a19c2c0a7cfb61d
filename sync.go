package fons

import "fmt"

// Sync uploads the atlas to the GPU if it changed since the last call.
// Call it exactly once per rendered frame, after the frame's text layout
// and before the texture is sampled.
//
// However many updates arrived since the last Sync, at most one upload
// happens. A clean atlas issues no GPU call at all. Sync returns the fatal
// allocation error once one occurred.
func (b *Bridge) Sync() error {
	if b.err != nil {
		return b.err
	}
	if b.closed {
		return ErrClosed
	}
	if !b.tex.dirty {
		return nil
	}
	if b.src == nil {
		return fmt.Errorf("%w: bridge has no atlas source", ErrContractViolation)
	}

	pixels, w, h := b.src.Pixels()
	if w != b.tex.Width() || h != b.tex.Height() || len(pixels) < w*h {
		return fmt.Errorf("%w: atlas is %dx%d (%d bytes), texture is %dx%d",
			ErrContractViolation, w, h, len(pixels), b.tex.Width(), b.tex.Height())
	}

	b.tex.staging = ExpandCoverage(b.tex.staging, pixels[:w*h])
	if err := b.dev.WriteTexture(b.tex.ID(), b.tex.staging); err != nil {
		return fmt.Errorf("fons: atlas upload failed: %w", err)
	}

	b.tex.dirty = false
	b.uploads++
	Logger().Debug("fons: uploaded atlas texture", "id", uint64(b.tex.ID()),
		"width", w, "height", h, "bytes", len(b.tex.staging))
	return nil
}

// DebugSnapshot returns the RGBA staging buffer and the atlas size.
// The buffer is owned by the bridge and must not be modified. While the
// atlas is dirty it still holds the previous upload.
func (b *Bridge) DebugSnapshot() ([]byte, int, int) {
	return b.tex.staging, b.tex.Width(), b.tex.Height()
}
