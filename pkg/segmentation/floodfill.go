package segmentation

import "github.com/menta2k/object-extractor/pkg/types"

// neighbors are pushed right, left, down, up; the last one pushed is explored first.
var neighbors = [4]types.Point{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// FloodFill collects the 4-connected foreground region reachable from seed.
// Pixels already visited by an earlier fill are never revisited. The returned
// component is empty when seed itself is out of bounds, visited or background.
func (r *Run) FloodFill(seed types.Point) types.Component {
	w := r.img.Width
	comp := types.Component{
		Bounds: types.Bounds{MinX: seed.X, MinY: seed.Y, MaxX: seed.X, MaxY: seed.Y},
	}

	r.work.push(seed)
	for !r.work.empty() {
		p := r.work.pop()
		if !r.inBounds(p.X, p.Y) {
			continue
		}
		pos := p.Y*w + p.X
		if r.visited[pos] || !r.foreground(pos) {
			continue
		}

		r.visited[pos] = true
		comp.Pixels = append(comp.Pixels, pos)
		growBounds(&comp.Bounds, p)

		if !r.work.room(len(neighbors)) {
			r.Truncations++
			continue
		}
		for _, d := range neighbors {
			r.work.push(types.Point{X: p.X + d.X, Y: p.Y + d.Y})
		}
	}

	return comp
}

func growBounds(b *types.Bounds, p types.Point) {
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
}
