package segmentation

import "github.com/menta2k/object-extractor/pkg/types"

// Extract copies the component's pixels out of composite into a new buffer
// the size of its bounding box. Copied pixels are forced opaque; everything
// else in the box stays transparent. composite is only read, so Extract may
// run concurrently for different components of the same image.
func Extract(c types.Component, composite []uint8, width int) types.ExtractedObject {
	b := c.Bounds
	ow, oh := b.Width(), b.Height()
	out := make([]uint8, ow*oh*4)

	for _, pos := range c.Pixels {
		x, y := pos%width, pos/width
		src := pos * 4
		dst := ((y-b.MinY)*ow + (x - b.MinX)) * 4
		out[dst+0] = composite[src+0]
		out[dst+1] = composite[src+1]
		out[dst+2] = composite[src+2]
		out[dst+3] = 255
	}

	return types.ExtractedObject{Width: ow, Height: oh, RGBA: out}
}
