// Command sizecal surveys marker diameter ratios across a directory of
// test images and prints a histogram with suggested size thresholds.
// Useful when checking how a new device's screenshots calibrate.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shoulder-grid/internal/calibrate"
	"shoulder-grid/internal/cell"
	"shoulder-grid/internal/grid"
	"shoulder-grid/internal/locate"

	"gocv.io/x/gocv"
)

type measurement struct {
	file  string
	index int
	mark  grid.MarkColor
	ratio float64
}

func main() {
	dir := flag.String("dir", "", "Directory of test images (jpeg/jpg/png)")
	flag.Parse()

	if *dir == "" {
		fmt.Println("Usage: sizecal -dir <test images>")
		os.Exit(1)
	}

	paths, err := imagePaths(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "No images found in %s\n", *dir)
		os.Exit(1)
	}
	fmt.Printf("Found %d images\n", len(paths))

	locateParams := locate.DefaultParams()
	cellParams := cell.DefaultParams()

	var measurements []measurement
	for _, path := range paths {
		name := filepath.Base(path)

		img := gocv.IMRead(path, gocv.IMReadColor)
		if img.Empty() {
			fmt.Printf("  SKIP %s: could not load\n", name)
			continue
		}

		geom, err := locate.Locate(img, locateParams)
		if err != nil {
			fmt.Printf("  SKIP %s: %v\n", name, err)
			img.Close()
			continue
		}

		parsed := cell.ClassifyGrid(img, geom, cellParams)
		img.Close()

		for _, c := range parsed.MarkedCells() {
			measurements = append(measurements, measurement{
				file: name, index: c.Index(), mark: c.Mark, ratio: c.SizeRatio,
			})
		}
		fmt.Printf("  OK   %s: cell %.1fx%.1f px\n", name, geom.CellWidth, geom.CellHeight)
	}

	if len(measurements) == 0 {
		fmt.Println("\nNo marked cells found in any image.")
		return
	}

	fmt.Printf("\n%-28s | %-5s | %-7s | %s\n", "image_file", "cell", "color", "diameter_ratio")
	fmt.Println(strings.Repeat("-", 60))
	for _, m := range measurements {
		fmt.Printf("%-28s | %5d | %-7s | %.4f\n", m.file, m.index, m.mark, m.ratio)
	}

	ratios := make([]float64, len(measurements))
	for i, m := range measurements {
		ratios[i] = m.ratio
	}
	sort.Float64s(ratios)

	n := len(ratios)
	fmt.Printf("\nSummary (%d circles):\n", n)
	fmt.Printf("  Min diameter_ratio: %.4f\n", ratios[0])
	fmt.Printf("  Max diameter_ratio: %.4f\n", ratios[n-1])
	fmt.Printf("  Median:             %.4f\n", ratios[n/2])

	cal := calibrate.Compute(ratios)
	if cal.Degenerate {
		fmt.Println("\nDegenerate distribution; every marker maps to class 3.")
		return
	}
	fmt.Println("\nSuggested 5-level thresholds (quintile):")
	fmt.Printf("  Size 1: < %.4f\n", cal.T1)
	fmt.Printf("  Size 2: %.4f - %.4f\n", cal.T1, cal.T2)
	fmt.Printf("  Size 3: %.4f - %.4f\n", cal.T2, cal.T3)
	fmt.Printf("  Size 4: %.4f - %.4f\n", cal.T3, cal.T4)
	fmt.Printf("  Size 5: > %.4f\n", cal.T4)

	printHistogram(ratios)
}

// imagePaths lists the jpeg/jpg/png files in dir, sorted.
func imagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpeg", ".jpg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// printHistogram buckets ratios into fixed bins with a # bar per count.
func printHistogram(ratios []float64) {
	bins := []float64{0, 0.20, 0.40, 0.60, 0.80, 1.00, 1.20, 1.40, 1.60, 1.80, 2.00, 2.50}

	fmt.Println("\nDistribution:")
	for i := 0; i < len(bins)-1; i++ {
		count := 0
		for _, r := range ratios {
			if r >= bins[i] && r < bins[i+1] {
				count++
			}
		}
		fmt.Printf("  %.2f-%.2f: %3d %s\n", bins[i], bins[i+1], count, strings.Repeat("#", count))
	}
}
