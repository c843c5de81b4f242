package types

import "image"

// WorkingImage holds the buffers one segmentation run operates on.
// Mask has one byte per pixel, Composite four (RGBA, non-premultiplied).
type WorkingImage struct {
	Width     int
	Height    int
	Mask      []uint8
	Composite []uint8
	// Scale is the factor applied to the source dimensions (1 when unscaled).
	Scale float64
}

// Len returns the number of pixels in the working image.
func (w *WorkingImage) Len() int {
	return w.Width * w.Height
}

// Point is a pixel coordinate in the working image
type Point struct {
	X int
	Y int
}

// Bounds is an inclusive pixel bounding box
type Bounds struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns the number of columns covered by the box
func (b Bounds) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns the number of rows covered by the box
func (b Bounds) Height() int {
	return b.MaxY - b.MinY + 1
}

// Rect converts the inclusive box into a half-open image.Rectangle
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

// Component is one connected foreground region.
// Pixels are row-major linear indices into the working image.
type Component struct {
	Pixels []int
	Bounds Bounds
}

// Size returns the pixel count of the component
func (c Component) Size() int {
	return len(c.Pixels)
}

// ExtractedObject is a cropped RGBA cutout of one component.
// Pixels outside the component are fully transparent.
type ExtractedObject struct {
	Width  int
	Height int
	RGBA   []uint8
}

// Image wraps the object's buffer as an *image.NRGBA without copying.
func (o ExtractedObject) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    o.RGBA,
		Stride: o.Width * 4,
		Rect:   image.Rect(0, 0, o.Width, o.Height),
	}
}

// Options controls preprocessing and component filtering
type Options struct {
	Threshold    uint8
	MinPixels    int
	MaxDimension int
}

// OutputOptions controls how extracted objects are written
type OutputOptions struct {
	Dir      string
	Format   string
	Prefix   string
	Quality  int
	Lossless bool
	Manifest bool
	Workers  int
	DryRun   bool
}

// Color describes an object's color in a few forms
type Color struct {
	Dominant string `json:"dominant"`
	Mean     string `json:"mean"`
}

// Centroid is the mean pixel position of a component plus its spread
type Centroid struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	StdDevX float64 `json:"stddev_x"`
	StdDevY float64 `json:"stddev_y"`
}

// ObjectRecord describes one written object in the manifest
type ObjectRecord struct {
	Index    int      `json:"index"`
	File     string   `json:"file,omitempty"`
	Bounds   Bounds   `json:"bounds"`
	Pixels   int      `json:"pixels"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Centroid Centroid `json:"centroid"`
	Color    Color    `json:"color"`
}

// Manifest summarizes one extraction run
type Manifest struct {
	RunID               string         `json:"run_id"`
	Source              string         `json:"source"`
	Width               int            `json:"width"`
	Height              int            `json:"height"`
	Scale               float64        `json:"scale"`
	Threshold           uint8          `json:"threshold"`
	MinPixels           int            `json:"min_pixels"`
	TruncatedExpansions int            `json:"truncated_expansions"`
	Objects             []ObjectRecord `json:"objects"`
}
