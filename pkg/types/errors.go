package types

import (
	"errors"
	"fmt"
)

// ErrNoImage indicates a nil image was handed to the pipeline.
var ErrNoImage = errors.New("object-extractor: no image")

// InvalidImageError reports a source image without usable dimensions.
type InvalidImageError struct {
	Width  int
	Height int
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image: dimensions %dx%d", e.Width, e.Height)
}

// DecodeError reports a failure to read or decode the source image.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a failure to encode or write one extracted object.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
