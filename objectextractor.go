// Package objectextractor cuts visually distinct foreground objects out of a
// single raster image and writes each one as its own transparent image.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		objectextractor "github.com/menta2k/object-extractor"
//	)
//
//	func main() {
//		extractor := objectextractor.New()
//
//		result, err := extractor.ProcessImageFile("sheet.png", "./output")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("extracted %d objects\n", result.Count)
//	}
//
// The pipeline runs in four stages:
//
// 1. Processing (pkg/processing): decode, orient and downscale the source, then
// derive a thresholded grayscale mask and an RGBA composite.
// 2. Segmentation (pkg/segmentation): flood fill 4-connected foreground regions
// seeded from an even-coordinate grid, dropping regions of minPixels or fewer.
// 3. Extraction (pkg/export): crop each region to its bounding box as an
// opaque cutout on a transparent canvas, in parallel.
// 4. Output: object_0.png, object_1.png, ... in scan order plus manifest.json.
//
// A pixel is foreground when its grayscale value is below the threshold, so
// with the default threshold of 240 anything darker than near-white counts.
package objectextractor

import (
	"fmt"
	"image"

	"github.com/menta2k/object-extractor/pkg/analyzer"
	"github.com/menta2k/object-extractor/pkg/export"
	"github.com/menta2k/object-extractor/pkg/processing"
	"github.com/menta2k/object-extractor/pkg/segmentation"
	"github.com/menta2k/object-extractor/pkg/types"
	"github.com/menta2k/object-extractor/pkg/vision"
)

// Version of the object extractor library
const Version = "1.0.0"

// DefaultOptions returns the segmentation defaults used by New
func DefaultOptions() types.Options {
	return types.Options{
		Threshold:    240,
		MinPixels:    150,
		MaxDimension: analyzer.DefaultMaxDimension,
	}
}

// DefaultOutputOptions returns the output defaults used by New
func DefaultOutputOptions() types.OutputOptions {
	return types.OutputOptions{
		Dir:      "./output",
		Format:   "png",
		Prefix:   "object_",
		Quality:  90,
		Manifest: true,
	}
}

// ObjectExtractor provides a high-level interface for object extraction
type ObjectExtractor struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	describer *vision.ObjectDescriber
	options   types.Options
	output    types.OutputOptions
	progress  func(done, total int, path string)
}

// New creates a new ObjectExtractor with default configuration
func New() *ObjectExtractor {
	return NewWithConfig(DefaultOptions(), DefaultOutputOptions())
}

// NewWithConfig creates a new ObjectExtractor with custom configuration
func NewWithConfig(options types.Options, output types.OutputOptions) *ObjectExtractor {
	return &ObjectExtractor{
		analyzer:  analyzer.NewWithConfig(analyzer.Config{MaxDimension: options.MaxDimension}),
		processor: processing.NewProcessor(),
		describer: vision.New(),
		options:   options,
		output:    output,
	}
}

// SetProgress installs a callback invoked after each object is written.
// It may be called concurrently from export workers.
func (oe *ObjectExtractor) SetProgress(fn func(done, total int, path string)) {
	oe.progress = fn
}

// Segmentation is the result of scanning one image
type Segmentation struct {
	Image       *types.WorkingImage
	Components  []types.Component
	Truncations int
}

// Result summarizes one completed extraction run
type Result struct {
	Count        int
	Paths        []string
	ManifestPath string
	Manifest     types.Manifest
}

// LoadImage loads an image from a file path or http(s) URL
func (oe *ObjectExtractor) LoadImage(source string) (image.Image, error) {
	return oe.processor.LoadImageSmart(source)
}

// GetImageInfo returns basic information about an image and its working size
func (oe *ObjectExtractor) GetImageInfo(img image.Image) analyzer.ImageInfo {
	return oe.analyzer.GetImageInfo(img)
}

// ValidateImage checks that an image has usable dimensions
func (oe *ObjectExtractor) ValidateImage(img image.Image) error {
	return oe.analyzer.ValidateImage(img)
}

// Segment preprocesses img and finds every retained component
func (oe *ObjectExtractor) Segment(img image.Image) (*Segmentation, error) {
	if err := oe.ValidateImage(img); err != nil {
		return nil, err
	}

	working, err := oe.processor.Prepare(img, oe.options)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}

	run, err := segmentation.NewRun(working, oe.options.Threshold)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	comps := run.Scan(oe.options.MinPixels)

	return &Segmentation{
		Image:       working,
		Components:  comps,
		Truncations: run.Truncations,
	}, nil
}

// ExtractAll cuts out every component of seg, in scan order
func (oe *ObjectExtractor) ExtractAll(seg *Segmentation) []types.ExtractedObject {
	objects := make([]types.ExtractedObject, len(seg.Components))
	for i, c := range seg.Components {
		objects[i] = segmentation.Extract(c, seg.Image.Composite, seg.Image.Width)
	}
	return objects
}

// ProcessImage segments img and writes every object into outputDir.
// source is only recorded in the manifest.
func (oe *ObjectExtractor) ProcessImage(img image.Image, source, outputDir string) (Result, error) {
	seg, err := oe.Segment(img)
	if err != nil {
		return Result{}, err
	}

	out := oe.output
	if outputDir != "" {
		out.Dir = outputDir
	}
	exporter := export.New(oe.processor, oe.describer, out)
	exporter.Progress = oe.progress

	exported, err := exporter.Export(seg.Image, seg.Components)
	if err != nil {
		return Result{}, fmt.Errorf("export failed: %w", err)
	}

	manifest := exported.Manifest
	manifest.Source = source
	manifest.Threshold = oe.options.Threshold
	manifest.MinPixels = oe.options.MinPixels
	manifest.TruncatedExpansions = seg.Truncations

	result := Result{
		Count:    exported.Count,
		Paths:    exported.Paths,
		Manifest: manifest,
	}

	if out.Manifest && !out.DryRun {
		path, err := export.WriteManifest(out.Dir, manifest)
		if err != nil {
			return Result{}, err
		}
		result.ManifestPath = path
	}

	return result, nil
}

// ProcessImageFile is a convenience function that loads, segments and
// extracts an image, writing one file per object into outputDir
func (oe *ObjectExtractor) ProcessImageFile(inputPath, outputDir string) (Result, error) {
	img, err := oe.LoadImage(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load image: %w", err)
	}
	return oe.ProcessImage(img, inputPath, outputDir)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
