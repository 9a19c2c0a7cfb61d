package fons

import (
	"fmt"

	"github.com/gogpu/fons/gpucore"
	"github.com/gogpu/fons/internal/handle"
	"github.com/gogpu/fons/stash"
)

// bridges holds every attached bridge. The rasterizer refers to its bridge
// only through the handle, never through a pointer.
var bridges = handle.NewTable[*Bridge]()

// dispatcher is the Renderer handed to the rasterizer. Every callback
// resolves the handle, so a callback arriving after Close reaches nothing.
type dispatcher handle.Handle

var _ stash.Renderer = dispatcher(0)

func (d dispatcher) bridge(op string) (*Bridge, bool) {
	b, ok := bridges.Lookup(handle.Handle(d))
	if !ok {
		Logger().Error("fons: callback on detached atlas", "error", ErrContractViolation,
			"op", op, "handle", uint64(d))
	}
	return b, ok
}

func (d dispatcher) Create(width, height int) bool {
	b, ok := d.bridge("create")
	return ok && b.Create(width, height)
}

func (d dispatcher) Resize(width, height int) bool {
	b, ok := d.bridge("resize")
	return ok && b.Resize(width, height)
}

func (d dispatcher) Expand() bool {
	b, ok := d.bridge("expand")
	return ok && b.Expand()
}

func (d dispatcher) Update(rect [4]int, data []byte) bool {
	b, ok := d.bridge("update")
	return ok && b.Update(rect, data)
}

// FontTexture couples a stash.Stash to a GPU texture.
//
// Set the alignment, font and size on Stash() to lay out text the way you
// want, call Sync once per frame, then bind TextureID() for drawing.
type FontTexture struct {
	stash  *stash.Stash
	bridge *Bridge
	handle handle.Handle
}

// New creates a font texture on dev. The GPU texture is allocated lazily,
// when the first glyph is rasterized.
func New(dev gpucore.Device, cfg Config) (*FontTexture, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := NewBridge(dev, nil, cfg)
	h := bridges.Register(b)

	st, err := stash.New(stash.Params{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Renderer: dispatcher(h),
	})
	if err != nil {
		bridges.Unregister(h)
		return nil, fmt.Errorf("fons: failed to create rasterizer: %w", err)
	}
	b.src = st

	st.SetErrorFunc(func(code stash.ErrorCode, val int) {
		Logger().Warn("fons: rasterizer error", "code", code.String(), "value", val)
	})

	return &FontTexture{
		stash:  st,
		bridge: b,
		handle: h,
	}, nil
}

// Stash returns the rasterization engine for font and layout settings.
func (ft *FontTexture) Stash() *stash.Stash {
	return ft.stash
}

// Bridge returns the callback bridge.
func (ft *FontTexture) Bridge() *Bridge {
	return ft.bridge
}

// Sync uploads the atlas if it changed. Call it once per frame.
func (ft *FontTexture) Sync() error {
	return ft.bridge.Sync()
}

// TextureID returns the GPU texture to bind for the current frame.
func (ft *FontTexture) TextureID() gpucore.TextureID {
	return ft.bridge.TextureID()
}

// DebugSnapshot returns the RGBA staging buffer and the atlas size.
func (ft *FontTexture) DebugSnapshot() ([]byte, int, int) {
	return ft.bridge.DebugSnapshot()
}

// Err returns the fatal allocation error, if one occurred.
func (ft *FontTexture) Err() error {
	return ft.bridge.Err()
}

// Close detaches the rasterizer and releases the GPU texture.
// The font texture must not be used afterwards.
func (ft *FontTexture) Close() {
	if !bridges.Unregister(ft.handle) {
		return
	}
	ft.bridge.Close()
	ft.stash.Close()
}
