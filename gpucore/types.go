package gpucore

import (
	"errors"
	"fmt"
)

// Resource IDs
//
// Texture IDs are opaque handles. Each Device implementation maintains a
// mapping between IDs and actual backend resources.

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID TextureID = 0

// IsValid reports whether the ID refers to a resource.
func (id TextureID) IsValid() bool {
	return id != InvalidID
}

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	// This is the format of the glyph atlas texture.
	TextureFormatRGBA8Unorm TextureFormat = iota + 1

	// TextureFormatR8Unorm is 8-bit red channel only, normalized unsigned integer.
	TextureFormatR8Unorm
)

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

// String returns a human-readable name for the format.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatR8Unorm:
		return "R8Unorm"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint32(f))
	}
}

// TextureUsage describes how often the content of a texture changes.
type TextureUsage uint8

// Texture usage modes.
const (
	// UsageImmutable textures are written once, right after creation.
	UsageImmutable TextureUsage = iota

	// UsageDynamic textures change repeatedly but not necessarily every frame.
	UsageDynamic

	// UsageStream textures are rewritten every frame.
	UsageStream
)

// String returns a human-readable name for the usage.
func (u TextureUsage) String() string {
	switch u {
	case UsageImmutable:
		return "immutable"
	case UsageDynamic:
		return "dynamic"
	case UsageStream:
		return "stream"
	default:
		return fmt.Sprintf("TextureUsage(%d)", uint8(u))
	}
}

// Writable reports whether the texture content may be replaced after the
// initial upload.
func (u TextureUsage) Writable() bool {
	return u == UsageDynamic || u == UsageStream
}

// Errors returned by Device implementations.
var (
	// ErrInvalidDimensions is returned for non-positive texture sizes.
	ErrInvalidDimensions = errors.New("gpucore: texture dimensions must be positive")

	// ErrUnknownTexture is returned when an ID does not name a live texture.
	ErrUnknownTexture = errors.New("gpucore: unknown texture")

	// ErrDataSize is returned when upload data does not cover the texture exactly.
	ErrDataSize = errors.New("gpucore: upload size does not match texture")

	// ErrImmutable is returned when rewriting an immutable texture.
	ErrImmutable = errors.New("gpucore: texture is immutable")
)

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	// Width is the texture width in pixels.
	Width int

	// Height is the texture height in pixels.
	Height int

	// Format is the pixel format. Zero means TextureFormatRGBA8Unorm.
	Format TextureFormat

	// Usage describes how the content changes over time.
	Usage TextureUsage

	// Label is an optional debug label.
	Label string
}

// Validate checks the descriptor.
func (d TextureDesc) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, d.Width, d.Height)
	}
	return nil
}

// PixelFormat returns the effective format, substituting the default for zero.
func (d TextureDesc) PixelFormat() TextureFormat {
	if d.Format == 0 {
		return TextureFormatRGBA8Unorm
	}
	return d.Format
}

// ByteSize returns the number of bytes a full upload must carry.
func (d TextureDesc) ByteSize() int {
	return d.Width * d.Height * d.PixelFormat().BytesPerPixel()
}
