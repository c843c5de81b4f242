package vision

import (
	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/object-extractor/pkg/types"
)

// ObjectDescriber summarizes extracted objects for the run manifest
type ObjectDescriber struct {
	config DescribeConfig
}

// DescribeConfig holds configuration for object description
type DescribeConfig struct {
	// DominantColor enables k-means dominant color search, the costly part.
	DominantColor bool
}

// New creates a new ObjectDescriber with default configuration
func New() *ObjectDescriber {
	return &ObjectDescriber{
		config: DescribeConfig{DominantColor: true},
	}
}

// NewWithConfig creates a new ObjectDescriber with custom configuration
func NewWithConfig(config DescribeConfig) *ObjectDescriber {
	return &ObjectDescriber{config: config}
}

// Describe builds the manifest record for one component and its cutout.
// width is the working image width the component's indices refer to.
func (d *ObjectDescriber) Describe(index int, c types.Component, obj types.ExtractedObject, width int) types.ObjectRecord {
	rec := types.ObjectRecord{
		Index:    index,
		Bounds:   c.Bounds,
		Pixels:   c.Size(),
		Width:    obj.Width,
		Height:   obj.Height,
		Centroid: Centroid(c, width),
		Color:    types.Color{Mean: MeanColor(obj)},
	}
	if d.config.DominantColor {
		rec.Color.Dominant = DominantColor(obj)
	}
	return rec
}

// Centroid returns the mean pixel position of c and its standard deviation per axis
func Centroid(c types.Component, width int) types.Centroid {
	if c.Size() == 0 || width <= 0 {
		return types.Centroid{}
	}
	xs := make([]float64, len(c.Pixels))
	ys := make([]float64, len(c.Pixels))
	for i, pos := range c.Pixels {
		xs[i] = float64(pos % width)
		ys[i] = float64(pos / width)
	}

	var cen types.Centroid
	if len(xs) == 1 {
		cen.X, cen.Y = xs[0], ys[0]
		return cen
	}
	cen.X, cen.StdDevX = stat.MeanStdDev(xs, nil)
	cen.Y, cen.StdDevY = stat.MeanStdDev(ys, nil)
	return cen
}

// MeanColor averages the opaque pixels of obj in linear RGB and returns a hex string
func MeanColor(obj types.ExtractedObject) string {
	var r, g, b float64
	n := 0
	for i := 0; i+3 < len(obj.RGBA); i += 4 {
		if obj.RGBA[i+3] == 0 {
			continue
		}
		c := colorful.Color{
			R: float64(obj.RGBA[i]) / 255,
			G: float64(obj.RGBA[i+1]) / 255,
			B: float64(obj.RGBA[i+2]) / 255,
		}
		lr, lg, lb := c.LinearRgb()
		r += lr
		g += lg
		b += lb
		n++
	}
	if n == 0 {
		return ""
	}
	return colorful.LinearRgb(r/float64(n), g/float64(n), b/float64(n)).Clamped().Hex()
}

// DominantColor returns the most prominent color of obj as a hex string
func DominantColor(obj types.ExtractedObject) string {
	if obj.Width == 0 || obj.Height == 0 {
		return ""
	}
	return dominantcolor.Hex(dominantcolor.Find(obj.Image()))
}
