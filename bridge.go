package fons

import (
	"fmt"

	"github.com/gogpu/fons/gpucore"
	"github.com/gogpu/fons/stash"
)

// AtlasSource is the part of the rasterization engine the bridge reads
// from: the current coverage bitmap and the ability to grow it.
// *stash.Stash implements it.
type AtlasSource interface {
	// Pixels returns the full single-channel bitmap and its dimensions.
	Pixels() ([]byte, int, int)

	// ExpandAtlas grows the bitmap, preserving rasterized glyphs.
	ExpandAtlas(width, height int) error
}

var _ stash.Renderer = (*Bridge)(nil)

// Bridge receives the rasterizer's create/resize/expand/update callbacks
// and keeps an AtlasTexture consistent with the rasterizer's atlas.
//
// Callbacks only record state. The pixels reach the GPU in Sync, which the
// host calls once per frame.
//
// Bridge is not safe for concurrent use. The rasterizer invokes callbacks
// synchronously on the goroutine that drives text layout, and may nest
// them (expand triggers resize).
type Bridge struct {
	dev gpucore.Device
	src AtlasSource
	cfg Config

	tex     AtlasTexture
	created bool
	closed  bool

	// err is the sticky fatal allocation error.
	err error

	uploads int
}

// NewBridge creates a bridge that allocates atlas textures on dev and
// pulls pixels from src. The texture is unallocated until the first
// Create callback.
func NewBridge(dev gpucore.Device, src AtlasSource, cfg Config) *Bridge {
	return &Bridge{
		dev: dev,
		src: src,
		cfg: cfg,
	}
}

// Create allocates a width x height texture, destroying a previous one.
// Returns false if the allocation fails; the failure is fatal and reported
// through Err and Sync. After a fatal failure Create never touches the
// device again.
func (b *Bridge) Create(width, height int) bool {
	if b.closed {
		b.violation("create")
		return false
	}
	if b.err != nil {
		return false
	}

	Logger().Debug("fons: create atlas texture", "width", width, "height", height,
		"replaces", uint64(b.tex.ID()))

	err := b.tex.allocate(b.dev, gpucore.TextureDesc{
		Width:  width,
		Height: height,
		Format: gpucore.TextureFormatRGBA8Unorm,
		Usage:  b.cfg.Usage,
		Label:  b.cfg.Label,
	})
	if err != nil {
		b.err = &AllocationError{Width: width, Height: height, Err: err}
		Logger().Error("fons: atlas texture allocation failed", "error", b.err)
		return false
	}

	b.created = true
	b.tex.dirty = true
	return true
}

// Resize recreates the texture at the new size. It is a full rebuild:
// no texture content survives, the next Sync uploads everything.
func (b *Bridge) Resize(width, height int) bool {
	if !b.created || b.closed {
		b.violation("resize")
		return false
	}
	Logger().Debug("fons: resize atlas texture", "width", width, "height", height)
	return b.Create(width, height)
}

// Expand asks the rasterizer to double its atlas. The rasterizer reports
// the new size back through Resize. On failure the current texture and
// atlas stay valid; this is logged as a warning.
func (b *Bridge) Expand() bool {
	if !b.created || b.closed || b.src == nil {
		b.violation("expand")
		return false
	}
	if b.err != nil {
		return false
	}

	w, h := b.tex.Width()*2, b.tex.Height()*2
	if w > b.cfg.MaxWidth || h > b.cfg.MaxHeight {
		Logger().Warn("fons: atlas expand failed", "error", ErrExpandAtlas,
			"width", w, "height", h, "maxWidth", b.cfg.MaxWidth, "maxHeight", b.cfg.MaxHeight)
		return false
	}
	if err := b.src.ExpandAtlas(w, h); err != nil {
		Logger().Warn("fons: atlas expand failed", "error", err, "width", w, "height", h)
		return false
	}
	return true
}

// Update marks the texture dirty. The dirty rectangle and data are not
// used: Sync always uploads the full atlas.
func (b *Bridge) Update(_ [4]int, _ []byte) bool {
	if !b.created || b.closed {
		b.violation("update")
		return false
	}
	b.tex.dirty = true
	return true
}

// violation logs a callback that arrived out of order.
func (b *Bridge) violation(op string) {
	Logger().Error("fons: callback contract violation", "error", ErrContractViolation,
		"op", op, "created", b.created, "closed", b.closed)
}

// Err returns the fatal allocation error, if one occurred.
func (b *Bridge) Err() error {
	return b.err
}

// Texture returns the atlas texture state for inspection.
func (b *Bridge) Texture() *AtlasTexture {
	return &b.tex
}

// TextureID returns the current GPU texture for binding. The ID changes
// whenever the atlas is recreated, so fetch it every frame.
func (b *Bridge) TextureID() gpucore.TextureID {
	return b.tex.ID()
}

// Uploads returns the number of GPU uploads performed so far.
func (b *Bridge) Uploads() int {
	return b.uploads
}

// Close destroys the GPU texture. Later callbacks are contract violations.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	Logger().Debug("fons: destroy atlas texture", "id", uint64(b.tex.ID()))
	b.tex.release(b.dev)
	b.closed = true
}

// String returns a string representation of the bridge.
func (b *Bridge) String() string {
	status := "active"
	switch {
	case b.closed:
		status = "closed"
	case b.err != nil:
		status = "failed"
	case !b.created:
		status = "unallocated"
	}
	return fmt.Sprintf("Bridge[%dx%d tex=%d dirty=%v uploads=%d %s]",
		b.tex.Width(), b.tex.Height(), uint64(b.tex.ID()), b.tex.Dirty(), b.uploads, status)
}
