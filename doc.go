// Package glyph renders text with cached glyph quads on gogpu-style GPU
// contexts.
//
// A [Renderer] pairs a glyph cache engine (package brush) with one of two
// GPU pipeline variants (package pipeline), selected from the device's API
// version at build time: version 3 and later uses the modern instanced
// pipeline, older devices fall back to the legacy vertex-buffer pipeline.
// Both behave identically from the caller's point of view.
//
// Typical usage:
//
//	font, _ := brush.ParseFont(fontBytes)
//	renderer, _ := glyph.NewBuilder(font).Build(ctx)
//	defer renderer.Release()
//
//	renderer.Queue(brush.Section{
//	    Position: [2]float32{30, 30},
//	    Text:     []brush.Text{{Content: "Hello glyph!", Scale: 40}},
//	})
//	renderer.DrawQueued(pass, width, height)
//
// The glyph cache texture starts small and grows on demand; queue the same
// text every frame and the renderer reuses the previous frame's vertices
// without touching the GPU.
package glyph
