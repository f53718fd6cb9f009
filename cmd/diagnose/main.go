// Command diagnose analyzes one examination's training-result photos
// and prints the ranked per-hand diagnoses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"shoulder-grid/internal/annotate"
	"shoulder-grid/internal/config"
	"shoulder-grid/internal/disease"
	"shoulder-grid/internal/meta"
	"shoulder-grid/internal/pipeline"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to disease catalogue JSON (default from DISEASES_PATH)")
	withMeta := flag.Bool("meta", false, "Extract title/date metadata per image")
	annotateDir := flag.String("annotate", "", "Directory to write detection overlays into")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Println("Usage: diagnose [-catalog diseases.json] [-meta] [-annotate dir] image...")
		os.Exit(1)
	}

	cfg := config.Load()
	if *catalogPath == "" {
		*catalogPath = cfg.DiseasesPath
	}

	cat, err := disease.Load(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load disease catalogue: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded catalogue: %d diseases from %s\n", cat.Len(), *catalogPath)

	inputs, err := loadInputs(paths, *withMeta, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	report, err := pipeline.Analyze(inputs, cat, pipeline.DefaultOptions())
	if err != nil {
		if errors.Is(err, pipeline.ErrNoUsableImages) {
			fmt.Fprintf(os.Stderr, "No usable images: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		}
		os.Exit(1)
	}

	printImageResults(report)
	if *annotateDir != "" {
		writeOverlays(report, paths, *annotateDir)
	}
	printDiagnoses(report)
}

// loadInputs decodes every image and optionally attaches extracted metadata.
func loadInputs(paths []string, withMeta bool, cfg *config.Config) ([]pipeline.Input, error) {
	var extractor meta.Extractor
	if withMeta {
		var err error
		extractor, err = newExtractor(cfg)
		if err != nil {
			return nil, fmt.Errorf("metadata extractor unavailable: %w", err)
		}
	}

	inputs := make([]pipeline.Input, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		img, format, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		in := pipeline.Input{Name: filepath.Base(path), Image: img}
		if extractor != nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			mime := meta.MIMETypeForExt(strings.ToLower(filepath.Ext(path)))
			rec, err := extractor.Extract(context.Background(), data, mime)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  metadata %s: %v\n", in.Name, err)
			} else {
				in.Meta = rec
			}
		}

		fmt.Printf("Loaded %s image: %s\n", format, in.Name)
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// newExtractor prefers Gemini when a key is configured, otherwise OCR.
func newExtractor(cfg *config.Config) (meta.Extractor, error) {
	if cfg.GeminiAPIKey != "" {
		return meta.NewGeminiExtractor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return meta.NewOCRExtractor()
}

func printImageResults(report *pipeline.Report) {
	fmt.Printf("\nImages:\n")
	for _, r := range report.Images {
		switch {
		case r.Err != nil:
			fmt.Printf("  SKIP %s: %v\n", r.Name, r.Err)
		default:
			fmt.Printf("  OK   %s: %d marked cells\n", r.Name, len(r.Parsed.MarkedCells()))
		}
		if r.Meta != nil {
			fmt.Printf("       title=%q date=%q actions=%d elapsed=%s\n",
				r.Meta.Title, r.Meta.Date, r.Meta.ActionCounts, r.Meta.ElapseTime)
		}
	}

	cal := report.Calibration
	if cal.Degenerate {
		fmt.Printf("\nCalibration: degenerate batch, all sizes -> class 3\n")
	} else {
		fmt.Printf("\nCalibration thresholds: %.3f / %.3f / %.3f / %.3f\n",
			cal.T1, cal.T2, cal.T3, cal.T4)
	}
}

// writeOverlays renders detection overlays for the usable images.
// Image results keep the input order, so result i came from paths[i];
// pairing by index keeps two inputs with the same basename apart.
func writeOverlays(report *pipeline.Report, paths []string, dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", dir, err)
		return
	}

	for i, r := range report.Images {
		if r.Parsed == nil {
			continue
		}
		mat := gocv.IMRead(paths[i], gocv.IMReadColor)
		if mat.Empty() {
			continue
		}
		overlay := annotate.Detection(mat, r.Parsed)
		out := overlayPath(dir, i, r.Name)
		gocv.IMWrite(out, overlay)
		overlay.Close()
		mat.Close()
		fmt.Printf("  wrote %s\n", out)
	}
}

// overlayPath names the overlay for input i; the index keeps outputs
// distinct when inputs share a basename.
func overlayPath(dir string, i int, name string) string {
	return filepath.Join(dir, fmt.Sprintf("overlay_%02d_%s.png", i, name))
}

func printDiagnoses(report *pipeline.Report) {
	for _, hand := range report.Hands {
		merged := report.Merged[hand.Hand]
		fmt.Printf("\n%s hand (%d marked positions):\n", hand.Hand, merged.MarkedCount())
		fmt.Printf("  %-4s %-32s %8s %-8s %s\n", "Rank", "Disease", "Score", "Severity", "Report")
		for _, s := range hand.Scores {
			designation := ""
			for _, rep := range hand.Reported {
				if rep.Disease.ID == s.Disease.ID {
					designation = rep.Designation.String()
				}
			}
			fmt.Printf("  %-4d %-32s %8d %-8s %s\n",
				s.Rank, s.Disease.NameEN, s.RawScore, s.Severity, designation)
		}
	}
	if len(report.Hands) == 0 {
		fmt.Printf("\nNo hand markers detected in any image.\n")
	}
}
