// Package gpu defines the device interface consumed by the glyph pipelines.
//
// The package contains interfaces and descriptor structs only; it performs no
// GPU work itself. Host applications provide an implementation, typically
// the hal-backed one in glyph/backend/native, or supply their own to integrate
// glyph rendering with an existing GPU abstraction.
//
// Key principle: glyph RECEIVES the device from the host, it does NOT create
// one. Descriptor enums are shared with the rest of the gogpu ecosystem via
// github.com/gogpu/gputypes.
package gpu
