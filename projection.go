package glyph

// Orthographic returns the column-major projection that maps pixel
// coordinates with the origin at the top left of a width x height target
// onto clip space.
func Orthographic(width, height uint32) [16]float32 {
	return [16]float32{
		2 / float32(width), 0, 0, 0,
		0, -2 / float32(height), 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}
