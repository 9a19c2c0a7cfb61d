package fons

import "github.com/gogpu/fons/gpucore"

// Default atlas settings.
const (
	// DefaultAtlasSize is the initial atlas dimension (256x256).
	DefaultAtlasSize = 256

	// DefaultMaxAtlasSize bounds atlas growth (4096x4096).
	DefaultMaxAtlasSize = 4096
)

// Config holds the configuration of a glyph atlas texture.
type Config struct {
	// Width and Height are the initial atlas dimensions.
	Width  int
	Height int

	// MaxWidth and MaxHeight bound how far Expand may grow the atlas.
	MaxWidth  int
	MaxHeight int

	// Usage is the GPU usage of the atlas texture. Default: dynamic.
	Usage gpucore.TextureUsage

	// Label is an optional debug label for the GPU texture.
	Label string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Width:     DefaultAtlasSize,
		Height:    DefaultAtlasSize,
		MaxWidth:  DefaultMaxAtlasSize,
		MaxHeight: DefaultMaxAtlasSize,
		Usage:     gpucore.UsageDynamic,
		Label:     "fons_atlas",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Width <= 0 {
		return &ConfigError{Field: "Width", Reason: "must be positive"}
	}
	if c.Height <= 0 {
		return &ConfigError{Field: "Height", Reason: "must be positive"}
	}
	if c.MaxWidth < c.Width {
		return &ConfigError{Field: "MaxWidth", Reason: "must be at least Width"}
	}
	if c.MaxHeight < c.Height {
		return &ConfigError{Field: "MaxHeight", Reason: "must be at least Height"}
	}
	if !c.Usage.Writable() {
		return &ConfigError{Field: "Usage", Reason: "atlas texture must be writable"}
	}
	return nil
}
