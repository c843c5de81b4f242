package segmentation

import (
	"errors"
	"fmt"

	"github.com/menta2k/object-extractor/pkg/types"
)

// ErrBufferSize indicates mask or composite lengths disagree with the dimensions.
var ErrBufferSize = errors.New("segmentation: buffer size does not match dimensions")

// Run is the scratch state for segmenting one working image.
// It is not safe for concurrent use.
type Run struct {
	img       *types.WorkingImage
	threshold uint8
	visited   []bool
	work      workList

	// Truncations counts pixels whose neighbors were dropped because the
	// work list was near capacity.
	Truncations int
}

// NewRun validates img and allocates the visited set and work list.
func NewRun(img *types.WorkingImage, threshold uint8) (*Run, error) {
	if img == nil {
		return nil, types.ErrNoImage
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, &types.InvalidImageError{Width: img.Width, Height: img.Height}
	}
	n := img.Len()
	if len(img.Mask) != n {
		return nil, fmt.Errorf("mask has %d bytes, want %d: %w", len(img.Mask), n, ErrBufferSize)
	}
	if img.Composite != nil && len(img.Composite) != n*4 {
		return nil, fmt.Errorf("composite has %d bytes, want %d: %w", len(img.Composite), n*4, ErrBufferSize)
	}
	return &Run{
		img:       img,
		threshold: threshold,
		visited:   make([]bool, n),
		work:      newWorkList(n),
	}, nil
}

// Visited reports whether the pixel at (x, y) has been claimed by a component.
func (r *Run) Visited(x, y int) bool {
	if !r.inBounds(x, y) {
		return false
	}
	return r.visited[y*r.img.Width+x]
}

func (r *Run) inBounds(x, y int) bool {
	return x >= 0 && x < r.img.Width && y >= 0 && y < r.img.Height
}

func (r *Run) foreground(pos int) bool {
	return r.img.Mask[pos] < r.threshold
}

// workList is a LIFO stack of coordinates with a fixed capacity.
type workList struct {
	items []types.Point
}

func newWorkList(capacity int) workList {
	return workList{items: make([]types.Point, 0, capacity)}
}

func (w *workList) push(p types.Point) {
	w.items = append(w.items, p)
}

func (w *workList) pop() types.Point {
	last := len(w.items) - 1
	p := w.items[last]
	w.items = w.items[:last]
	return p
}

func (w *workList) empty() bool {
	return len(w.items) == 0
}

// room reports whether n more items fit strictly below capacity.
func (w *workList) room(n int) bool {
	return len(w.items)+n < cap(w.items)
}
