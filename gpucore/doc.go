// Package gpucore defines the GPU resource contract used by the fons glyph
// atlas.
//
// The contract is narrow: the atlas only ever allocates one 2D
// texture, replaces its full content, and destroys it. The [Device]
// interface captures exactly that, so the same synchronization code works
// with:
//   - gogpu/wgpu HAL devices (see backend/native)
//   - test doubles that record every call
//
// # Resource IDs
//
// [TextureID] is an opaque uint64. [InvalidID] (zero) never names a live
// texture, so a zero ID always means "unallocated".
//
// # Usage
//
// [TextureUsage] mirrors the classic immutable/dynamic/stream split. The
// glyph atlas is [UsageDynamic]: it changes whenever new glyphs are
// rasterized, which is often but not every frame.
package gpucore
