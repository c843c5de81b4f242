package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/menta2k/object-extractor/internal/utils"
	"github.com/menta2k/object-extractor/pkg/processing"
	"github.com/menta2k/object-extractor/pkg/segmentation"
	"github.com/menta2k/object-extractor/pkg/types"
	"github.com/menta2k/object-extractor/pkg/vision"
)

// ManifestName is the file the run summary is written to in the output directory
const ManifestName = "manifest.json"

// Exporter extracts components in parallel and writes one file per object.
type Exporter struct {
	processor *processing.Processor
	describer *vision.ObjectDescriber
	opts      types.OutputOptions

	// Progress, when set, is called after each object is written. It may be
	// called from several goroutines at once.
	Progress func(done, total int, path string)
}

// New creates an Exporter writing with opts
func New(processor *processing.Processor, describer *vision.ObjectDescriber, opts types.OutputOptions) *Exporter {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Prefix == "" {
		opts.Prefix = "object_"
	}
	return &Exporter{processor: processor, describer: describer, opts: opts}
}

// Result is the outcome of exporting every component of one image
type Result struct {
	Count    int
	Paths    []string
	Manifest types.Manifest
}

// Export extracts and writes every component of img. Objects are numbered by
// their position in comps. The first failure aborts the run; objects already
// written are left in place.
func (e *Exporter) Export(img *types.WorkingImage, comps []types.Component) (Result, error) {
	total := len(comps)
	ext := processing.Extension(e.opts.Format)
	enc := processing.EncodeOptions{Format: ext, Quality: e.opts.Quality, Lossless: e.opts.Lossless}

	if !e.opts.DryRun {
		if err := utils.EnsureDir(e.opts.Dir); err != nil {
			return Result{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	records := make([]types.ObjectRecord, total)
	paths := make([]string, total)
	errs := make([]error, total)
	var processed atomic.Int64
	var failed atomic.Bool

	jobs := make(chan int, e.opts.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < e.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if failed.Load() {
					continue
				}
				rec, path, err := e.exportOne(img, comps[idx], idx, ext, enc)
				if err != nil {
					errs[idx] = err
					failed.Store(true)
					continue
				}
				records[idx] = rec
				paths[idx] = path
				done := processed.Add(1)
				if e.Progress != nil {
					e.Progress(int(done), total, path)
				}
			}
		}()
	}

	for i := range comps {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Count: total,
		Paths: paths,
		Manifest: types.Manifest{
			RunID:   uuid.New().String(),
			Width:   img.Width,
			Height:  img.Height,
			Scale:   img.Scale,
			Objects: records,
		},
	}, nil
}

func (e *Exporter) exportOne(img *types.WorkingImage, c types.Component, idx int, ext string, enc processing.EncodeOptions) (types.ObjectRecord, string, error) {
	obj := segmentation.Extract(c, img.Composite, img.Width)

	var rec types.ObjectRecord
	if e.describer != nil {
		rec = e.describer.Describe(idx, c, obj, img.Width)
	} else {
		rec = types.ObjectRecord{Index: idx, Bounds: c.Bounds, Pixels: c.Size(), Width: obj.Width, Height: obj.Height}
	}

	if e.opts.DryRun {
		return rec, "", nil
	}

	path := utils.ObjectFilename(e.opts.Dir, e.opts.Prefix, idx, ext)
	if err := e.processor.SaveImage(obj.Image(), path, enc); err != nil {
		return types.ObjectRecord{}, "", err
	}
	rec.File = filepath.Base(path)
	return rec, path, nil
}

// WriteManifest writes m as indented JSON into dir
func WriteManifest(dir string, m types.Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
