package stash

import (
	"errors"
	"fmt"
)

// Sentinel errors for the stash package.
var (
	// ErrInvalidSize is returned for non-positive atlas dimensions.
	ErrInvalidSize = errors.New("stash: atlas dimensions must be positive")

	// ErrRendererRejected is returned when the renderer refuses a new atlas size.
	ErrRendererRejected = errors.New("stash: renderer rejected atlas size")

	// ErrFontNotFound is returned when a font lookup fails.
	ErrFontNotFound = errors.New("stash: font not found")
)

// ErrorCode identifies an engine condition reported through the error callback.
type ErrorCode int

// Error codes passed to the function installed with SetErrorFunc.
const (
	// ErrorAtlasFull means a glyph could not be packed even after asking the
	// renderer to expand the atlas. The glyph is dropped.
	ErrorAtlasFull ErrorCode = iota + 1

	// ErrorStatesOverflow means PushState was called too many times.
	ErrorStatesOverflow

	// ErrorStatesUnderflow means PopState was called on the last state.
	ErrorStatesUnderflow
)

// String returns a human-readable name for the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorAtlasFull:
		return "atlas full"
	case ErrorStatesOverflow:
		return "states overflow"
	case ErrorStatesUnderflow:
		return "states underflow"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}
