package pipeline

import _ "embed"

// WGSL shader sources, embedded at build time.
var (
	//go:embed shaders/glyph_modern.wgsl
	modernShaderWGSL string

	//go:embed shaders/glyph_legacy.wgsl
	legacyShaderWGSL string
)
