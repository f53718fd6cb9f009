// Package colorutil provides shared color utilities for grid analysis and overlays.
package colorutil

import "image/color"

// Overlay colors used by the annotator and cmd tools.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Gray   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	Cyan   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	// GridLine is the green used to draw detected grid geometry.
	GridLine = color.RGBA{R: 0, G: 200, B: 0, A: 255}
)
