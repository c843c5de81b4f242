package analyzer

import (
	"image"
	"math"

	"github.com/menta2k/object-extractor/pkg/types"
)

// ImageAnalyzer inspects source images before segmentation
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	MaxDimension int
}

// DefaultMaxDimension is the working-size cap used by New
const DefaultMaxDimension = 2000

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			MaxDimension: DefaultMaxDimension,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata plus the working size it maps to
type ImageInfo struct {
	Width         int
	Height        int
	AspectRatio   float64
	Area          int
	Scale         float64
	WorkingWidth  int
	WorkingHeight int
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
		Scale:  1,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	if width > 0 && height > 0 {
		info.Scale = ScaleFactor(width, height, a.config.MaxDimension)
		info.WorkingWidth, info.WorkingHeight = ScaledSize(width, height, info.Scale)
	}

	return info
}

// ValidateImage checks that an image has usable dimensions
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	if img == nil {
		return types.ErrNoImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return &types.InvalidImageError{Width: bounds.Dx(), Height: bounds.Dy()}
	}
	return nil
}

// ScaleFactor returns maxDim / max(width, height) when the larger side
// exceeds maxDim, and 1 otherwise. A non-positive maxDim disables scaling.
func ScaleFactor(width, height, maxDim int) float64 {
	larger := max(width, height)
	if maxDim <= 0 || larger <= maxDim {
		return 1
	}
	return float64(maxDim) / float64(larger)
}

// ScaledSize multiplies both dimensions by scale and rounds each to the
// nearest integer on its own, never going below one pixel.
func ScaledSize(width, height int, scale float64) (int, int) {
	if scale == 1 {
		return width, height
	}
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}
