package fons

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fons package.
var (
	// ErrAllocation matches every *AllocationError.
	ErrAllocation = errors.New("fons: atlas texture allocation failed")

	// ErrExpandAtlas is reported when the atlas cannot grow further.
	// It is recoverable: the existing texture stays valid.
	ErrExpandAtlas = errors.New("fons: atlas cannot grow further")

	// ErrContractViolation marks a callback invoked out of order, such as an
	// update before any create or a callback after Close.
	ErrContractViolation = errors.New("fons: rasterizer callback contract violation")

	// ErrClosed is returned when using a closed bridge or font texture.
	ErrClosed = errors.New("fons: atlas texture is closed")
)

// AllocationError reports a failed GPU texture allocation inside the
// create or resize callback. It is fatal: without a backing texture no
// text can be rendered from the atlas.
type AllocationError struct {
	Width  int
	Height int
	Err    error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("fons: failed to allocate %dx%d atlas texture: %v", e.Width, e.Height, e.Err)
}

// Unwrap returns the device error.
func (e *AllocationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAllocation) true for every AllocationError.
func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "fons: invalid config." + e.Field + ": " + e.Reason
}
