// Package pipeline runs the full examination analysis: locate the grid
// in each photograph, classify cells, calibrate sizes over the batch,
// merge per hand, and score against the disease catalogue.
//
// Per-image classification is independent and runs concurrently across
// the batch; merging and scoring start only once every image has been
// classified or skipped. Because the merge is a median, classification
// order cannot affect the result.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"shoulder-grid/internal/calibrate"
	"shoulder-grid/internal/cell"
	"shoulder-grid/internal/disease"
	"shoulder-grid/internal/grid"
	"shoulder-grid/internal/locate"
	"shoulder-grid/internal/merge"
	"shoulder-grid/internal/meta"

	"gocv.io/x/gocv"
)

// ErrNoUsableImages indicates no image in the batch yielded a grid.
var ErrNoUsableImages = errors.New("no usable images in batch")

// Input is one photograph of an examination, with the metadata record
// the external extraction collaborator produced for it (may be nil).
// The metadata is carried through untouched; this core never reprocesses it.
type Input struct {
	Name  string
	Image image.Image
	Meta  *meta.Record
}

// Options holds the tuning parameters threaded through the pipeline.
type Options struct {
	Locate locate.Params
	Cell   cell.Params
}

// DefaultOptions returns the parameters calibrated for rehab-app screenshots.
func DefaultOptions() Options {
	return Options{
		Locate: locate.DefaultParams(),
		Cell:   cell.DefaultParams(),
	}
}

// ImageResult records the outcome for one input image. A grid-location
// failure is recoverable: the image is excluded and Err says why.
type ImageResult struct {
	Name   string
	Meta   *meta.Record
	Parsed *grid.ParsedGrid
	Err    error
}

// Report is the full result of one examination batch.
type Report struct {
	Images      []ImageResult
	Calibration calibrate.Calibration
	Merged      map[grid.HandColor]*grid.MergedGrid
	Hands       []disease.HandResult
}

// Analyze processes one examination batch of decoded images.
// Returns ErrNoUsableImages when every image failed grid location.
func Analyze(inputs []Input, cat *disease.Catalog, opts Options) (*Report, error) {
	results := make([]ImageResult, len(inputs))

	// Classify images concurrently; each goroutine owns its Mats and
	// writes only its own slot.
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = classifyOne(inputs[idx], opts)
		}(i)
	}
	wg.Wait()

	return assemble(results, cat)
}

// AnalyzeFiles reads image files with OpenCV and analyzes them as one
// examination batch. Unreadable files are excluded the same way as
// images with no locatable grid.
func AnalyzeFiles(paths []string, cat *disease.Catalog, opts Options) (*Report, error) {
	results := make([]ImageResult, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(idx int, p string) {
			defer wg.Done()
			res := ImageResult{Name: filepath.Base(p)}

			mat := gocv.IMRead(p, gocv.IMReadColor)
			if mat.Empty() {
				res.Err = fmt.Errorf("%s: could not read image", p)
				results[idx] = res
				return
			}
			defer mat.Close()

			res.Parsed, res.Err = classifyMat(mat, res.Name, opts)
			results[idx] = res
		}(i, path)
	}
	wg.Wait()

	return assemble(results, cat)
}

// classifyOne locates and classifies a single image.
func classifyOne(in Input, opts Options) ImageResult {
	res := ImageResult{Name: in.Name, Meta: in.Meta}

	mat, err := imageToMat(in.Image)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", in.Name, err)
		return res
	}
	defer mat.Close()

	res.Parsed, res.Err = classifyMat(mat, in.Name, opts)
	return res
}

// classifyMat runs locate + classify on one BGR Mat.
func classifyMat(mat gocv.Mat, name string, opts Options) (*grid.ParsedGrid, error) {
	geom, err := locate.Locate(mat, opts.Locate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	parsed := cell.ClassifyGrid(mat, geom, opts.Cell)
	parsed.Source = name
	return parsed, nil
}

// assemble runs the batch-level stages over the per-image results.
func assemble(results []ImageResult, cat *disease.Catalog) (*Report, error) {
	var parsed []*grid.ParsedGrid
	for _, r := range results {
		if r.Parsed != nil {
			parsed = append(parsed, r.Parsed)
		}
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%d images: %w", len(results), ErrNoUsableImages)
	}

	// Size classes are relative to this batch; never reuse thresholds
	// across examinations.
	cal := calibrate.Compute(calibrate.CollectRatios(parsed))
	for _, p := range parsed {
		cal.Apply(p)
	}

	merged := merge.Grids(parsed)

	report := &Report{
		Images:      results,
		Calibration: cal,
		Merged:      merged,
	}
	for _, hand := range []grid.HandColor{grid.HandLeft, grid.HandRight} {
		if m, ok := merged[hand]; ok {
			report.Hands = append(report.Hands, cat.Score(m))
		}
	}
	return report, nil
}

// imageToMat converts a Go image.Image to a BGR OpenCV Mat.
func imageToMat(srcImg image.Image) (gocv.Mat, error) {
	if srcImg == nil {
		return gocv.Mat{}, fmt.Errorf("nil image")
	}
	bounds := srcImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := srcImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit to 8-bit, BGR order for OpenCV
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
