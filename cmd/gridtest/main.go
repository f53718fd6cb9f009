// Command gridtest runs grid location and cell classification on a
// single image and dumps the result for inspection.
package main

import (
	"flag"
	"fmt"
	"os"

	"shoulder-grid/internal/annotate"
	"shoulder-grid/internal/calibrate"
	"shoulder-grid/internal/cell"
	"shoulder-grid/internal/grid"
	"shoulder-grid/internal/locate"

	"gocv.io/x/gocv"
)

func main() {
	imagePath := flag.String("image", "", "Path to a training-result photo")
	outPath := flag.String("out", "", "Write detection overlay PNG to this path")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: gridtest -image <path> [-out overlay.png]")
		os.Exit(1)
	}

	img := gocv.IMRead(*imagePath, gocv.IMReadColor)
	if img.Empty() {
		fmt.Fprintf(os.Stderr, "Failed to read image: %s\n", *imagePath)
		os.Exit(1)
	}
	defer img.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Cols(), img.Rows())

	geom, err := locate.Locate(img, locate.DefaultParams())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Grid location failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Grid bounds: x=%d y=%d w=%d h=%d, cell %.1fx%.1f px\n",
		geom.Bounds.X, geom.Bounds.Y, geom.Bounds.Width, geom.Bounds.Height,
		geom.CellWidth, geom.CellHeight)

	parsed := cell.ClassifyGrid(img, geom, cell.DefaultParams())

	// Single-image batch: calibrate from just this grid
	cal := calibrate.Compute(calibrate.CollectRatios([]*grid.ParsedGrid{parsed}))
	cal.Apply(parsed)
	if cal.Degenerate {
		fmt.Printf("Calibration: degenerate, all sizes -> class 3\n")
	} else {
		fmt.Printf("Calibration thresholds: %.3f / %.3f / %.3f / %.3f\n",
			cal.T1, cal.T2, cal.T3, cal.T4)
	}

	marked := parsed.MarkedCells()
	fmt.Printf("\n%d marked cells:\n", len(marked))
	fmt.Printf("%-6s %-4s %-4s %-7s %-6s %-6s %s\n",
		"Index", "Row", "Col", "Color", "Hand", "Size", "Ratio")
	for _, c := range marked {
		fmt.Printf("%-6d %-4d %-4d %-7s %-6s %-6d %.4f\n",
			c.Index(), c.Row, c.Col, c.Mark, c.Hand, c.SizeClass, c.SizeRatio)
	}

	if *outPath != "" {
		overlay := annotate.Detection(img, parsed)
		defer overlay.Close()
		if ok := gocv.IMWrite(*outPath, overlay); !ok {
			fmt.Fprintf(os.Stderr, "Failed to write overlay: %s\n", *outPath)
			os.Exit(1)
		}
		fmt.Printf("\nWrote overlay to %s\n", *outPath)
	}
}
