package processing

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/object-extractor/pkg/analyzer"
	"github.com/menta2k/object-extractor/pkg/types"
)

// Processor is the image codec used around segmentation: it loads and
// orients source images, derives the working buffers and encodes results.
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadImageFromURL downloads and decodes an image from a URL
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)}
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "Object-Extractor/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("failed to download image: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)}
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.DecodeError{Source: imageURL, Err: fmt.Errorf("failed to read image data: %w", err)}
	}

	img, err := p.DecodeBytes(imageData)
	if err != nil {
		return nil, &types.DecodeError{Source: imageURL, Err: err}
	}
	return img, nil
}

// LoadImage decodes an image file and applies its EXIF orientation
func (p *Processor) LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.DecodeError{Source: path, Err: err}
	}
	img, err := p.DecodeBytes(data)
	if err != nil {
		return nil, &types.DecodeError{Source: path, Err: err}
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// DecodeBytes decodes image data with orientation correction, falling back
// to the libwebp decoder for WebP variants the registered decoder rejects.
func (p *Processor) DecodeBytes(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if webpImg, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
		return webpImg, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format: %w", err)
}

// Resample resizes img to exactly width x height
func (p *Processor) Resample(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// DeriveMask converts img to grayscale and thresholds it: pixels darker than
// threshold become 0, all others 255. One byte per pixel, row-major.
func (p *Processor) DeriveMask(img image.Image, threshold uint8) []uint8 {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	mask := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4] < threshold {
				mask[y*w+x] = 0
			} else {
				mask[y*w+x] = 255
			}
		}
	}
	return mask
}

// DeriveComposite returns non-premultiplied RGBA bytes for img.
// Sources without an alpha channel come out fully opaque.
func (p *Processor) DeriveComposite(img image.Image) []uint8 {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if nrgba.Stride == w*4 {
		return nrgba.Pix[:w*h*4]
	}

	out := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		copy(out[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return out
}

// Prepare builds the working image for segmentation. The larger side is
// capped at opts.MaxDimension; smaller images are used as-is.
func (p *Processor) Prepare(img image.Image, opts types.Options) (*types.WorkingImage, error) {
	if img == nil {
		return nil, types.ErrNoImage
	}
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, &types.InvalidImageError{Width: srcW, Height: srcH}
	}

	scale := analyzer.ScaleFactor(srcW, srcH, opts.MaxDimension)
	w, h := analyzer.ScaledSize(srcW, srcH, scale)
	if scale != 1 {
		img = p.Resample(img, w, h)
	}

	return &types.WorkingImage{
		Width:     w,
		Height:    h,
		Mask:      p.DeriveMask(img, opts.Threshold),
		Composite: p.DeriveComposite(img),
		Scale:     scale,
	}, nil
}
