package processing

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/object-extractor/pkg/types"
)

// EncodeOptions selects the output codec
type EncodeOptions struct {
	Format   string
	Quality  int
	Lossless bool
}

// Extension returns the file extension for format, defaulting to png
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "jpg"
	case "webp":
		return "webp"
	default:
		return "png"
	}
}

// SupportedFormat reports whether format can be written
func SupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case "png", "jpg", "jpeg", "webp":
		return true
	}
	return false
}

// Encode writes img to w. JPEG has no alpha channel, so transparent
// background is flattened onto black.
func (p *Processor) Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	switch strings.ToLower(opts.Format) {
	case "webp":
		if opts.Lossless {
			return nativewebp.Encode(w, img, nil)
		}
		return webp.Encode(w, img, &webp.Options{Quality: float32(opts.Quality)})
	case "jpg", "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	case "png", "":
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		return enc.Encode(w, img)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

// EncodePNG encodes an extracted object as PNG bytes
func (p *Processor) EncodePNG(obj types.ExtractedObject) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf, obj.Image(), EncodeOptions{Format: "png"}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveImage encodes img to path. Failures are reported as *types.EncodeError.
func (p *Processor) SaveImage(img image.Image, path string, opts EncodeOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &types.EncodeError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &types.EncodeError{Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriter(f)
	if err := p.Encode(bw, img, opts); err != nil {
		return &types.EncodeError{Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &types.EncodeError{Path: path, Err: err}
	}
	return nil
}
