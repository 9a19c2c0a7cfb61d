package gpucore

// Device is the GPU resource capability the glyph atlas consumes.
//
// Resource lifecycle:
//   - Textures are created via CreateTexture
//   - Textures must be explicitly destroyed via DestroyTexture
//   - IDs become invalid after destruction and must not be reused
//
// WriteTexture replaces the full texture content. Callers upload each
// texture at most once per rendered frame.
type Device interface {
	// CreateTexture allocates a 2D texture.
	// Returns the texture ID or an error if allocation fails.
	CreateTexture(desc TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)

	// WriteTexture uploads the full content of a texture.
	// The data must match the texture format and dimensions.
	WriteTexture(id TextureID, data []byte) error
}
