package pipeline

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/glyph/brush"
)

// GPU byte layouts. The strides must match the WGSL shader structs and the
// vertex buffer layout declared at pipeline creation.
const (
	// instanceStride is one Modern instance: pos rect (5 floats including z),
	// uv rect (4 floats), color (4 floats).
	instanceStride = 52

	// vertexStride is one Legacy vertex: position (2), z (1), uv (2), color (4).
	vertexStride = 36

	verticesPerQuad = 4
	indicesPerQuad  = 6

	// maxQuadsPerDraw bounds a single indexed draw by uint16 vertex
	// addressing; larger batches are drawn in chunks with a base vertex.
	maxQuadsPerDraw = 65536 / verticesPerQuad
)

// putF32 writes a little-endian float32 and returns the advanced offset.
func putF32(buf []byte, off int, v float32) int {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	return off + 4
}

// encodeInstances packs quads as Modern instance records.
func encodeInstances(quads []brush.Quad) []byte {
	buf := make([]byte, len(quads)*instanceStride)
	off := 0
	for _, q := range quads {
		off = putF32(buf, off, q.PixelCoords.MinX)
		off = putF32(buf, off, q.PixelCoords.MinY)
		off = putF32(buf, off, q.Depth)
		off = putF32(buf, off, q.PixelCoords.MaxX)
		off = putF32(buf, off, q.PixelCoords.MaxY)
		off = putF32(buf, off, q.TexCoords.MinX)
		off = putF32(buf, off, q.TexCoords.MinY)
		off = putF32(buf, off, q.TexCoords.MaxX)
		off = putF32(buf, off, q.TexCoords.MaxY)
		for _, c := range q.Color {
			off = putF32(buf, off, c)
		}
	}
	return buf
}

// encodeQuadVertices expands quads to four Legacy vertices each, in
// left-top, right-top, right-bottom, left-bottom order.
func encodeQuadVertices(quads []brush.Quad) []byte {
	buf := make([]byte, len(quads)*verticesPerQuad*vertexStride)
	off := 0
	for _, q := range quads {
		corners := [verticesPerQuad][4]float32{
			{q.PixelCoords.MinX, q.PixelCoords.MinY, q.TexCoords.MinX, q.TexCoords.MinY},
			{q.PixelCoords.MaxX, q.PixelCoords.MinY, q.TexCoords.MaxX, q.TexCoords.MinY},
			{q.PixelCoords.MaxX, q.PixelCoords.MaxY, q.TexCoords.MaxX, q.TexCoords.MaxY},
			{q.PixelCoords.MinX, q.PixelCoords.MaxY, q.TexCoords.MinX, q.TexCoords.MaxY},
		}
		for _, c := range corners {
			off = putF32(buf, off, c[0])
			off = putF32(buf, off, c[1])
			off = putF32(buf, off, q.Depth)
			off = putF32(buf, off, c[2])
			off = putF32(buf, off, c[3])
			for _, ch := range q.Color {
				off = putF32(buf, off, ch)
			}
		}
	}
	return buf
}

// quadIndexData generates uint16 indices for quadCount quads: two triangles
// (0,1,2)(2,3,0) per quad.
func quadIndexData(quadCount int) []byte {
	if quadCount > maxQuadsPerDraw {
		quadCount = maxQuadsPerDraw
	}
	buf := make([]byte, quadCount*indicesPerQuad*2)
	off := 0
	for q := 0; q < quadCount; q++ {
		base := uint16(q * verticesPerQuad)
		for _, i := range [indicesPerQuad]uint16{0, 1, 2, 2, 3, 0} {
			binary.LittleEndian.PutUint16(buf[off:], base+i)
			off += 2
		}
	}
	return buf
}

// encodeTransform packs a column-major matrix as uniform data.
func encodeTransform(transform [16]float32) []byte {
	buf := make([]byte, 64)
	off := 0
	for _, v := range transform {
		off = putF32(buf, off, v)
	}
	return buf
}
