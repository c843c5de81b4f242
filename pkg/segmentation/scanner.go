package segmentation

import "github.com/menta2k/object-extractor/pkg/types"

// seedStride is the spacing of the seed grid in both axes.
const seedStride = 2

// Scan walks the even-coordinate seed grid in row-major order and flood fills
// every unvisited foreground seed. Components with minPixels or fewer pixels
// are discarded; their pixels stay visited.
func (r *Run) Scan(minPixels int) []types.Component {
	var comps []types.Component
	w, h := r.img.Width, r.img.Height

	for y := 0; y < h; y += seedStride {
		for x := 0; x < w; x += seedStride {
			pos := y*w + x
			if r.visited[pos] || !r.foreground(pos) {
				continue
			}
			comp := r.FloodFill(types.Point{X: x, Y: y})
			if comp.Size() > minPixels {
				comps = append(comps, comp)
			}
		}
	}

	return comps
}

// Scan segments img in a fresh Run and returns the retained components.
func Scan(img *types.WorkingImage, threshold uint8, minPixels int) ([]types.Component, error) {
	run, err := NewRun(img, threshold)
	if err != nil {
		return nil, err
	}
	return run.Scan(minPixels), nil
}
