package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glyph/gpu"
)

// queue implements gpu.Queue over a hal.Queue.
type queue struct {
	hal hal.Queue
}

var _ gpu.Queue = (*queue)(nil)

func (q *queue) WriteTexture(dst *gpu.TextureCopyView, data []byte, layout *gpu.TextureDataLayout, size *gpu.Extent) error {
	wrapped, ok := dst.Texture.(*texture)
	if !ok {
		return fmt.Errorf("native: texture is %T, not a native texture", dst.Texture)
	}

	depth := size.DepthOrArrayLayers
	if depth == 0 {
		depth = 1
	}

	q.hal.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  wrapped.hal,
			MipLevel: dst.MipLevel,
			Origin: hal.Origin3D{
				X: dst.Origin.X,
				Y: dst.Origin.Y,
				Z: dst.Origin.Z,
			},
			Aspect: gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&hal.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: depth,
		},
	)
	return nil
}

func (q *queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	wrapped, ok := buf.(*buffer)
	if !ok {
		return fmt.Errorf("native: buffer is %T, not a native buffer", buf)
	}
	q.hal.WriteBuffer(wrapped.hal, offset, data)
	return nil
}
