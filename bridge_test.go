package fons

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/fons/gpucore"
)

// captureLogs routes fons logging into a buffer for the test's duration.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := Logger()
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(orig) })
	return &buf
}

func TestBridgeStartsUnallocated(t *testing.T) {
	b, dev, _ := newTestBridge(t, 256, 256)

	if b.TextureID().IsValid() {
		t.Errorf("TextureID() = %d before create, want invalid", b.TextureID())
	}
	if tex := b.Texture(); tex.Allocated() || tex.Width() != 0 || tex.Height() != 0 || tex.Dirty() {
		t.Errorf("texture = %+v, want unallocated and clean", *tex)
	}
	if err := b.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
	if len(dev.writes) != 0 || dev.creates != 0 {
		t.Errorf("device used before create: creates=%d writes=%d", dev.creates, len(dev.writes))
	}
}

func TestBridgeCreate(t *testing.T) {
	b, dev, _ := newTestBridge(t, 256, 256)

	if !b.Create(256, 256) {
		t.Fatal("Create() = false")
	}
	tex := b.Texture()
	if !tex.Allocated() || tex.Width() != 256 || tex.Height() != 256 || !tex.Dirty() {
		t.Errorf("texture = %dx%d allocated=%v dirty=%v", tex.Width(), tex.Height(), tex.Allocated(), tex.Dirty())
	}

	desc := dev.live[b.TextureID()]
	if desc.Format != gpucore.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8", desc.Format)
	}
	if desc.Usage != gpucore.UsageDynamic {
		t.Errorf("Usage = %v, want dynamic", desc.Usage)
	}
	if desc.Label != "fons_atlas" {
		t.Errorf("Label = %q", desc.Label)
	}
}

// A second create destroys the first texture before allocating.
func TestBridgeCreateReplacesTexture(t *testing.T) {
	b, dev, _ := newTestBridge(t, 64, 64)

	b.Create(64, 64)
	first := b.TextureID()
	b.Create(128, 128)

	if b.TextureID() == first {
		t.Error("TextureID() unchanged after re-create")
	}
	if _, ok := dev.live[first]; ok {
		t.Error("previous texture still live")
	}
	if len(dev.live) != 1 {
		t.Errorf("live textures = %d, want 1", len(dev.live))
	}
	if dev.destroys != 1 {
		t.Errorf("destroys = %d, want 1", dev.destroys)
	}
}

func TestBridgeCreateFailureIsFatal(t *testing.T) {
	logs := captureLogs(t)
	b, dev, _ := newTestBridge(t, 64, 64)
	dev.failCreate = true

	if b.Create(64, 64) {
		t.Fatal("Create() = true on device failure")
	}
	err := b.Err()
	if !errors.Is(err, ErrAllocation) || !errors.Is(err, errOutOfMemory) {
		t.Errorf("Err() = %v, want allocation error wrapping device error", err)
	}
	var aerr *AllocationError
	if errors.As(err, &aerr) && (aerr.Width != 64 || aerr.Height != 64) {
		t.Errorf("AllocationError size = %dx%d", aerr.Width, aerr.Height)
	}
	if err := b.Sync(); !errors.Is(err, ErrAllocation) {
		t.Errorf("Sync() = %v, want ErrAllocation", err)
	}
	if b.TextureID().IsValid() {
		t.Error("TextureID() valid after failed allocation")
	}
	if !strings.Contains(logs.String(), "level=ERROR") {
		t.Errorf("allocation failure not logged at error level:\n%s", logs)
	}
}

func TestBridgeResizeFailureDestroysOld(t *testing.T) {
	b, dev, _ := newTestBridge(t, 64, 64)
	b.Create(64, 64)

	dev.failCreate = true
	if b.Resize(128, 128) {
		t.Fatal("Resize() = true on device failure")
	}
	if len(dev.live) != 0 {
		t.Errorf("live textures = %d, want 0", len(dev.live))
	}
	if !errors.Is(b.Err(), ErrAllocation) {
		t.Errorf("Err() = %v", b.Err())
	}
}

func TestBridgeUpdateBeforeCreate(t *testing.T) {
	logs := captureLogs(t)
	b, _, _ := newTestBridge(t, 64, 64)

	if b.Update([4]int{0, 0, 1, 1}, nil) {
		t.Error("Update() before create = true")
	}
	if b.Texture().Dirty() {
		t.Error("Update() before create marked the texture dirty")
	}
	if !strings.Contains(logs.String(), "op=update") {
		t.Errorf("violation not logged:\n%s", logs)
	}
}

func TestBridgeNoAllocationAfterFailure(t *testing.T) {
	b, dev, _ := newTestBridge(t, 64, 64)
	b.Create(64, 64)
	dev.failCreate = true
	if b.Resize(128, 128) {
		t.Fatal("Resize() = true on device failure")
	}

	dev.failCreate = false
	creates := dev.creates
	if b.Create(64, 64) {
		t.Error("Create() after fatal failure = true")
	}
	if b.Resize(128, 128) {
		t.Error("Resize() after fatal failure = true")
	}
	if b.Expand() {
		t.Error("Expand() after fatal failure = true")
	}
	if dev.creates != creates || len(dev.live) != 0 {
		t.Errorf("creates = %d (was %d), live = %d; device used after fatal failure",
			dev.creates, creates, len(dev.live))
	}
	if !errors.Is(b.Sync(), ErrAllocation) {
		t.Errorf("Sync() = %v, want ErrAllocation", b.Sync())
	}
}

func TestBridgeResizeBeforeCreate(t *testing.T) {
	b, dev, _ := newTestBridge(t, 64, 64)

	if b.Resize(128, 128) {
		t.Error("Resize() before create = true")
	}
	if dev.creates != 0 {
		t.Errorf("creates = %d, want 0", dev.creates)
	}
}

// Expand doubles the atlas and the next sync uploads it whole.
func TestBridgeExpand(t *testing.T) {
	b, dev, src := newTestBridge(t, 256, 256)
	b.Create(256, 256)
	if err := b.Sync(); err != nil {
		t.Fatal(err)
	}
	old := b.TextureID()

	if !b.Expand() {
		t.Fatal("Expand() = false")
	}
	tex := b.Texture()
	if tex.Width() != 512 || tex.Height() != 512 {
		t.Errorf("size = %dx%d, want 512x512", tex.Width(), tex.Height())
	}
	if _, ok := dev.live[old]; ok {
		t.Error("256x256 texture still live")
	}
	if !tex.Dirty() {
		t.Error("texture not dirty after expand")
	}
	if src.width != 512 {
		t.Errorf("source width = %d", src.width)
	}

	if err := b.Sync(); err != nil {
		t.Fatal(err)
	}
	if got := len(dev.writes[len(dev.writes)-1]); got != 1048576 {
		t.Errorf("upload = %d bytes, want 1048576", got)
	}
}

// A failed expand keeps the current texture and dirty state.
func TestBridgeExpandFailure(t *testing.T) {
	for _, dirty := range []bool{false, true} {
		logs := captureLogs(t)
		b, dev, src := newTestBridge(t, 256, 256)
		b.Create(256, 256)
		if !dirty {
			if err := b.Sync(); err != nil {
				t.Fatal(err)
			}
		}
		id := b.TextureID()
		src.failExpand = true

		if b.Expand() {
			t.Fatal("Expand() = true")
		}
		tex := b.Texture()
		if tex.ID() != id || tex.Width() != 256 || tex.Height() != 256 {
			t.Errorf("texture changed: id=%d size=%dx%d", tex.ID(), tex.Width(), tex.Height())
		}
		if tex.Dirty() != dirty {
			t.Errorf("Dirty() = %v, want %v", tex.Dirty(), dirty)
		}
		if dev.creates != 1 {
			t.Errorf("creates = %d, want 1", dev.creates)
		}
		if b.Err() != nil {
			t.Errorf("Err() = %v, expand failure must not be fatal", b.Err())
		}
		if !strings.Contains(logs.String(), "level=WARN") {
			t.Errorf("expand failure not logged as warning:\n%s", logs)
		}
	}
}

func TestBridgeExpandAtMaxSize(t *testing.T) {
	dev := newFakeDevice()
	src := newFakeSource(256, 256)
	cfg := DefaultConfig()
	cfg.MaxWidth, cfg.MaxHeight = 256, 256
	b := NewBridge(dev, src, cfg)
	src.bridge = b
	b.Create(256, 256)

	if b.Expand() {
		t.Error("Expand() beyond max size = true")
	}
	if src.expands != 0 {
		t.Errorf("source asked to expand %d times", src.expands)
	}
}

func TestBridgeClose(t *testing.T) {
	b, dev, _ := newTestBridge(t, 64, 64)
	b.Create(64, 64)

	b.Close()
	b.Close()
	if len(dev.live) != 0 || dev.destroys != 1 {
		t.Errorf("live=%d destroys=%d, want 0 and 1", len(dev.live), dev.destroys)
	}
	if b.TextureID().IsValid() {
		t.Error("TextureID() valid after Close")
	}
	if err := b.Sync(); !errors.Is(err, ErrClosed) {
		t.Errorf("Sync() = %v, want ErrClosed", err)
	}
	if b.Create(64, 64) || b.Update([4]int{}, nil) || b.Expand() {
		t.Error("callback after Close succeeded")
	}
	if dev.creates != 1 {
		t.Errorf("creates = %d after Close, want 1", dev.creates)
	}
}

func TestBridgeString(t *testing.T) {
	b, dev, _ := newTestBridge(t, 64, 64)
	if s := b.String(); !strings.Contains(s, "unallocated") {
		t.Errorf("String() = %q", s)
	}
	b.Create(64, 64)
	if s := b.String(); !strings.Contains(s, "64x64") || !strings.Contains(s, "active") {
		t.Errorf("String() = %q", s)
	}
	dev.failCreate = true
	b.Create(64, 64)
	if s := b.String(); !strings.Contains(s, "failed") {
		t.Errorf("String() = %q", s)
	}
	b.Close()
	if s := b.String(); !strings.Contains(s, "closed") {
		t.Errorf("String() = %q", s)
	}
}
