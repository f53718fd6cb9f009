package cell

import "shoulder-grid/internal/grid"

// hsvRange is one inclusive HSV box on the OpenCV scale (H 0-180).
type hsvRange struct {
	hMin, hMax float64
	sMin, sMax float64
	vMin, vMax float64
}

// band maps a marker color to its HSV ranges. Red needs two ranges
// because its hue wraps around 180.
type band struct {
	mark   grid.MarkColor
	ranges []hsvRange
}

// markerBands are the fixed detection bands, calibrated against the
// reference screenshot corpus. Cyan and green are the two hand-marker
// bands; the remaining colors are recognized so stray UI elements
// claim their own band instead of bleeding into a hand band.
var markerBands = []band{
	{grid.MarkGreen, []hsvRange{{35, 85, 50, 255, 50, 255}}},
	{grid.MarkCyan, []hsvRange{{80, 105, 50, 255, 50, 255}}},
	{grid.MarkBlue, []hsvRange{{100, 130, 50, 255, 50, 255}}},
	{grid.MarkRed, []hsvRange{
		{0, 10, 50, 255, 50, 255},
		{170, 180, 50, 255, 50, 255},
	}},
	{grid.MarkYellow, []hsvRange{{20, 35, 50, 255, 50, 255}}},
}
