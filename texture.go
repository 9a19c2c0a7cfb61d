package fons

import (
	"errors"

	"github.com/gogpu/fons/gpucore"
)

var errInvalidTextureID = errors.New("device returned an invalid texture id")

// AtlasTexture is the GPU-side state of the glyph atlas.
//
// It is owned by exactly one Bridge. Width and Height always equal the
// rasterizer's atlas size as of the last create or resize the bridge saw.
// At most one GPU texture is live at a time: the old texture is destroyed
// before a new one is allocated.
type AtlasTexture struct {
	width  int
	height int

	// id is gpucore.InvalidID until the first successful create.
	id gpucore.TextureID

	// staging is the RGBA upload buffer. Its length is 4*width*height right
	// after a sync and may reflect the previous size while dirty.
	staging []byte

	// dirty is set by callbacks and cleared only by a successful sync.
	dirty bool
}

// Width returns the atlas width in pixels.
func (t *AtlasTexture) Width() int { return t.width }

// Height returns the atlas height in pixels.
func (t *AtlasTexture) Height() int { return t.height }

// ID returns the GPU texture, or gpucore.InvalidID when unallocated.
func (t *AtlasTexture) ID() gpucore.TextureID { return t.id }

// Allocated reports whether a GPU texture is live.
func (t *AtlasTexture) Allocated() bool { return t.id.IsValid() }

// Dirty reports whether content changed since the last upload.
func (t *AtlasTexture) Dirty() bool { return t.dirty }

// allocate replaces the GPU texture with a new one of the given size.
// On failure the texture is left unallocated with zero size.
func (t *AtlasTexture) allocate(dev gpucore.Device, desc gpucore.TextureDesc) error {
	t.release(dev)

	id, err := dev.CreateTexture(desc)
	if err == nil && !id.IsValid() {
		err = errInvalidTextureID
	}
	if err != nil {
		return err
	}

	t.id = id
	t.width = desc.Width
	t.height = desc.Height
	return nil
}

// release destroys the live GPU texture, if any.
func (t *AtlasTexture) release(dev gpucore.Device) {
	if t.id.IsValid() {
		dev.DestroyTexture(t.id)
	}
	t.id = gpucore.InvalidID
	t.width = 0
	t.height = 0
}
