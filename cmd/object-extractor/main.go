package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	objectextractor "github.com/menta2k/object-extractor"
	"github.com/menta2k/object-extractor/internal/config"
	"github.com/menta2k/object-extractor/internal/utils"
	"github.com/menta2k/object-extractor/pkg/types"
)

func main() {
	var configPath, saveConfig, format string
	var threshold, maxDim, quality, workers int
	var lossless, noManifest, dryRun, quiet bool

	flag.StringVar(&configPath, "config", "", "path to JSON config file")
	flag.StringVar(&saveConfig, "save-config", "", "write the resolved configuration to this path and exit")
	flag.IntVar(&threshold, "threshold", 0, "grayscale threshold 0-255; darker pixels are foreground (default 240)")
	flag.IntVar(&maxDim, "maxdim", 0, "max working width/height in px; larger images are downscaled (default 2000)")
	flag.StringVar(&format, "ext", "", "output format: png|jpg|webp (default png)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP quality 1-100 (default 90)")
	flag.BoolVar(&lossless, "lossless", false, "lossless WebP output")
	flag.IntVar(&workers, "workers", 0, "parallel export workers (default NumCPU)")
	flag.BoolVar(&noManifest, "no-manifest", false, "do not write manifest.json")
	flag.BoolVar(&dryRun, "dry-run", false, "segment and report without writing files")
	flag.BoolVar(&quiet, "quiet", false, "suppress progress output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <inputPath> [outputDir] [minPixels]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if quiet {
		log.SetOutput(io.Discard)
	}

	cfg := config.Default()
	if path := config.ResolvePath(configPath); path != "" {
		var err error
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		log.Printf("using config %s", path)
	}

	flags := config.Flags{
		OutputDir:    flag.Arg(1),
		MaxDimension: maxDim,
		Format:       format,
		Quality:      quality,
		Lossless:     lossless,
		NoManifest:   noManifest,
		Workers:      workers,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			flags.Threshold = &threshold
		}
	})
	// Missing, non-numeric or non-positive minPixels keeps the configured value.
	if n, ok := config.ParseMinPixels(flag.Arg(2)); ok {
		flags.MinPixels = n
	} else if flag.Arg(2) != "" {
		log.Printf("minPixels %q is not a positive number, using %d", flag.Arg(2), cfg.Segmentation.MinPixels)
	}
	cfg.Resolve(flags)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if saveConfig != "" {
		if err := cfg.SaveToFile(saveConfig); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", saveConfig)
		return
	}

	input := flag.Arg(0)
	isURL := strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
	if !isURL && !utils.IsImageFile(input) {
		log.Printf("warning: %s does not have a known image extension", input)
	}

	opts := types.Options{
		Threshold:    uint8(cfg.Segmentation.Threshold),
		MinPixels:    cfg.Segmentation.MinPixels,
		MaxDimension: cfg.Segmentation.MaxDimension,
	}
	out := types.OutputOptions{
		Dir:      cfg.Output.Dir,
		Format:   cfg.Output.Format,
		Prefix:   cfg.Output.Prefix,
		Quality:  cfg.Output.Quality,
		Lossless: cfg.Output.Lossless,
		Manifest: cfg.Output.Manifest,
		Workers:  cfg.Workers,
		DryRun:   dryRun,
	}

	extractor := objectextractor.NewWithConfig(opts, out)
	extractor.SetProgress(func(done, total int, path string) {
		log.Printf("[%d/%d] wrote %s", done, total, path)
	})

	img, err := extractor.LoadImage(input)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}
	info := extractor.GetImageInfo(img)
	log.Printf("loaded %s: %dx%d, working size %dx%d (scale %.3f)",
		input, info.Width, info.Height, info.WorkingWidth, info.WorkingHeight, info.Scale)
	log.Printf("threshold=%d minPixels=%d", opts.Threshold, opts.MinPixels)

	result, err := extractor.ProcessImage(img, input, out.Dir)
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	if result.Manifest.TruncatedExpansions > 0 {
		log.Printf("work list reached capacity %d times; some objects may be incomplete", result.Manifest.TruncatedExpansions)
	}
	if result.ManifestPath != "" {
		log.Printf("wrote %s", result.ManifestPath)
	}
	if dryRun {
		log.Printf("found %d objects (dry run, nothing written)", result.Count)
		return
	}
	log.Printf("extracted %d objects to %s", result.Count, out.Dir)
}
