package segmentation

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/object-extractor/pkg/types"
)

const testThreshold = 240

// maskFromRows builds a working image from rows of '#' (foreground) and '.' (background).
func maskFromRows(rows ...string) *types.WorkingImage {
	h := len(rows)
	w := len(rows[0])
	img := &types.WorkingImage{
		Width:     w,
		Height:    h,
		Mask:      make([]uint8, w*h),
		Composite: make([]uint8, w*h*4),
		Scale:     1,
	}
	for y, row := range rows {
		for x, c := range row {
			pos := y*w + x
			if c == '#' {
				img.Mask[pos] = 0
			} else {
				img.Mask[pos] = 255
			}
			img.Composite[pos*4+0] = uint8(x * 10)
			img.Composite[pos*4+1] = uint8(y * 10)
			img.Composite[pos*4+2] = 77
			img.Composite[pos*4+3] = 128
		}
	}
	return img
}

// randomMask builds a w×h image with roughly density foreground pixels.
func randomMask(w, h int, density float64, seed int64) *types.WorkingImage {
	rng := rand.New(rand.NewSource(seed))
	img := &types.WorkingImage{
		Width:     w,
		Height:    h,
		Mask:      make([]uint8, w*h),
		Composite: make([]uint8, w*h*4),
		Scale:     1,
	}
	for i := range img.Mask {
		if rng.Float64() < density {
			img.Mask[i] = 0
		} else {
			img.Mask[i] = 255
		}
	}
	rng.Read(img.Composite)
	return img
}

func TestNewRun_Errors(t *testing.T) {
	_, err := NewRun(nil, testThreshold)
	require.ErrorIs(t, err, types.ErrNoImage)

	_, err = NewRun(&types.WorkingImage{Width: 0, Height: 4}, testThreshold)
	var invalid *types.InvalidImageError
	require.True(t, errors.As(err, &invalid), "zero width must be InvalidImageError")

	_, err = NewRun(&types.WorkingImage{Width: 2, Height: 2, Mask: make([]uint8, 3)}, testThreshold)
	require.ErrorIs(t, err, ErrBufferSize)

	_, err = NewRun(&types.WorkingImage{Width: 2, Height: 2, Mask: make([]uint8, 4), Composite: make([]uint8, 4)}, testThreshold)
	require.ErrorIs(t, err, ErrBufferSize)
}

func TestScan_AllForeground4x4(t *testing.T) {
	img := maskFromRows(
		"####",
		"####",
		"####",
		"####",
	)

	comps, err := Scan(img, testThreshold, 0)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, 16, comps[0].Size())
	assert.Equal(t, types.Bounds{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3}, comps[0].Bounds)
}

func TestScan_NoForeground(t *testing.T) {
	img := maskFromRows(
		"......",
		"......",
		"......",
	)

	comps, err := Scan(img, testThreshold, 0)
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func twoSquares() *types.WorkingImage {
	return maskFromRows(
		"###.....",
		"###.....",
		"###.....",
		"........",
		"....###.",
		"....###.",
		"....###.",
		"........",
	)
}

func TestScan_TwoSquares(t *testing.T) {
	comps, err := Scan(twoSquares(), testThreshold, 5)
	require.NoError(t, err)
	require.Len(t, comps, 2)

	assert.Equal(t, 9, comps[0].Size())
	assert.Equal(t, types.Bounds{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2}, comps[0].Bounds)
	assert.Equal(t, 9, comps[1].Size())
	assert.Equal(t, types.Bounds{MinX: 4, MinY: 4, MaxX: 6, MaxY: 6}, comps[1].Bounds)
}

func TestScan_MinPixelsIsStrict(t *testing.T) {
	comps, err := Scan(twoSquares(), testThreshold, 9)
	require.NoError(t, err)
	assert.Empty(t, comps, "a 9 pixel component must not pass minPixels=9")

	comps, err = Scan(twoSquares(), testThreshold, 8)
	require.NoError(t, err)
	assert.Len(t, comps, 2)
}

func TestScan_OddPixelIsMissed(t *testing.T) {
	img := maskFromRows(
		"....",
		".#..",
		"....",
		"....",
	)

	comps, err := Scan(img, testThreshold, 0)
	require.NoError(t, err)
	assert.Empty(t, comps, "seed grid only samples even coordinates")
}

func TestScan_DiagonalIsNotConnected(t *testing.T) {
	img := maskFromRows(
		"##..",
		"##..",
		"..##",
		"..##",
	)

	comps, err := Scan(img, testThreshold, 0)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, 4, comps[0].Size())
	assert.Equal(t, 4, comps[1].Size())
}

func TestScan_ThresholdIsStrict(t *testing.T) {
	img := maskFromRows("####", "####")
	for i := range img.Mask {
		img.Mask[i] = 100
	}

	comps, err := Scan(img, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, comps, "mask value equal to threshold is background")

	comps, err = Scan(img, 101, 0)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, 8, comps[0].Size())
}

func TestScan_DroppedComponentStaysVisited(t *testing.T) {
	img := maskFromRows(
		"##..",
		"##..",
		"....",
		"....",
	)
	run, err := NewRun(img, testThreshold)
	require.NoError(t, err)

	assert.Empty(t, run.Scan(10))
	assert.True(t, run.Visited(1, 1))
	assert.False(t, run.Visited(3, 3))
	assert.Empty(t, run.Scan(0), "visited pixels are never seeded again")
}

func TestFloodFill_InvalidSeeds(t *testing.T) {
	img := maskFromRows(
		"#.",
		"..",
	)
	run, err := NewRun(img, testThreshold)
	require.NoError(t, err)

	assert.Zero(t, run.FloodFill(types.Point{X: -1, Y: 0}).Size())
	assert.Zero(t, run.FloodFill(types.Point{X: 1, Y: 1}).Size())
	assert.Equal(t, 1, run.FloodFill(types.Point{X: 0, Y: 0}).Size())
	assert.Zero(t, run.FloodFill(types.Point{X: 0, Y: 0}).Size(), "second fill of a visited seed is empty")
}

func TestFloodFill_TruncatesNearCapacity(t *testing.T) {
	// A 2x2 image has a work list of capacity 4, so the seed cannot push its
	// four neighbors (0+4 is not below 4) and the fill stops at one pixel.
	img := maskFromRows("##", "##")
	run, err := NewRun(img, testThreshold)
	require.NoError(t, err)

	comp := run.FloodFill(types.Point{X: 0, Y: 0})
	assert.Equal(t, 1, comp.Size())
	assert.Equal(t, 1, run.Truncations)
	assert.False(t, run.Visited(1, 0))
}

func TestScan_Properties(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		img := randomMask(64, 48, 0.55, seed)
		const minPixels = 3

		comps, err := Scan(img, testThreshold, minPixels)
		require.NoError(t, err)

		seen := make(map[int]bool)
		for _, c := range comps {
			require.Greater(t, c.Size(), minPixels)

			want := types.Bounds{MinX: img.Width, MinY: img.Height, MaxX: -1, MaxY: -1}
			for _, pos := range c.Pixels {
				require.False(t, seen[pos], "pixel %d belongs to two components", pos)
				seen[pos] = true
				require.Less(t, img.Mask[pos], uint8(testThreshold))

				x, y := pos%img.Width, pos/img.Width
				want.MinX = min(want.MinX, x)
				want.MinY = min(want.MinY, y)
				want.MaxX = max(want.MaxX, x)
				want.MaxY = max(want.MaxY, y)
			}
			require.Equal(t, want, c.Bounds, "bounds must be the exact pixel extent")
			require.Less(t, c.Bounds.MaxX, img.Width)
			require.Less(t, c.Bounds.MaxY, img.Height)
		}
	}
}

func TestScan_Deterministic(t *testing.T) {
	img := randomMask(40, 40, 0.6, 42)

	first, err := Scan(img, testThreshold, 2)
	require.NoError(t, err)
	second, err := Scan(img, testThreshold, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtract_MaskedCutout(t *testing.T) {
	img := maskFromRows(
		"......",
		".##...",
		".#....",
		"......",
	)
	run, err := NewRun(img, testThreshold)
	require.NoError(t, err)
	comp := run.FloodFill(types.Point{X: 1, Y: 1})
	require.Equal(t, 3, comp.Size())

	obj := Extract(comp, img.Composite, img.Width)
	require.Equal(t, comp.Bounds.Width(), obj.Width)
	require.Equal(t, comp.Bounds.Height(), obj.Height)
	require.Len(t, obj.RGBA, 2*2*4)

	// (1,1) -> (0,0): copied color, forced opaque
	assert.Equal(t, []uint8{10, 10, 77, 255}, obj.RGBA[0:4])
	// (2,1) -> (1,0)
	assert.Equal(t, []uint8{20, 10, 77, 255}, obj.RGBA[4:8])
	// (1,2) -> (0,1)
	assert.Equal(t, []uint8{10, 20, 77, 255}, obj.RGBA[8:12])
	// (2,2) is background inside the box
	assert.Equal(t, []uint8{0, 0, 0, 0}, obj.RGBA[12:16])
}

func TestExtract_DoesNotAliasComposite(t *testing.T) {
	img := maskFromRows("###", "###", "###")
	comps, err := Scan(img, testThreshold, 0)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	require.Equal(t, 9, comps[0].Size())

	obj := Extract(comps[0], img.Composite, img.Width)
	img.Composite[0] = 99
	assert.Equal(t, uint8(0), obj.RGBA[0])

	nrgba := obj.Image()
	assert.Equal(t, 3, nrgba.Bounds().Dx())
	assert.Equal(t, 3, nrgba.Bounds().Dy())
}

func BenchmarkScan(b *testing.B) {
	img := randomMask(1000, 1000, 0.5, 7)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Scan(img, testThreshold, 150); err != nil {
			b.Fatal(err)
		}
	}
}
