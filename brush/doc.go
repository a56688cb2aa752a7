// Package brush queues text sections, rasterizes the glyphs they need into a
// pixel cache, and reports per-frame draw data as textured quads.
//
// The package is the CPU side of glyph rendering: it owns no GPU resources.
// Cache texture writes are handed to the caller through the patch callback of
// [Brush.ProcessQueued], and the caller owns the texture those patches target.
// When the cache texture is too small for a frame's glyphs, ProcessQueued
// fails with [TextureTooSmallError] and the caller is expected to grow the
// texture (see the driver in the parent package) and retry.
package brush
