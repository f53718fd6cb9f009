// Package annotate renders detection overlays for verification.
//
// The overlay is handed to an external rendering collaborator (report
// generation, verification pages); nothing here is interactive.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"shoulder-grid/internal/grid"
	"shoulder-grid/pkg/colorutil"

	"gocv.io/x/gocv"
)

// markOverlay maps detected mark colors to their overlay tint.
var markOverlay = map[grid.MarkColor]color.RGBA{
	grid.MarkGreen:  colorutil.Green,
	grid.MarkCyan:   colorutil.Cyan,
	grid.MarkBlue:   colorutil.Blue,
	grid.MarkRed:    colorutil.Red,
	grid.MarkYellow: colorutil.Yellow,
}

// Detection returns a copy of the source image with the located grid
// drawn over it: grid lines, a tint over every marked cell, and an
// "index:size" label per cell. The caller owns the returned Mat.
func Detection(img gocv.Mat, parsed *grid.ParsedGrid) gocv.Mat {
	result := img.Clone()
	geom := parsed.Geometry

	drawGridLines(&result, geom)

	for _, c := range parsed.Cells {
		rect := geom.CellRect(c.Row, c.Col)
		x1, y1 := int(rect.X), int(rect.Y)
		x2, y2 := int(rect.X+rect.Width), int(rect.Y+rect.Height)
		center := rect.Center()
		cx, cy := int(center.X), int(center.Y)

		if c.Hand == grid.HandNone && c.Mark == grid.MarkNone {
			drawLabel(&result, fmt.Sprintf("%d", c.Index()), cx, cy, 0.35, colorutil.Gray, false)
			continue
		}

		tint, ok := markOverlay[c.Mark]
		if !ok {
			tint = colorutil.Gray
		}

		// Semi-transparent fill over the cell
		overlay := result.Clone()
		gocv.Rectangle(&overlay, image.Rect(x1+2, y1+2, x2-2, y2-2), tint, -1)
		gocv.AddWeighted(overlay, 0.4, result, 0.6, 0, &result)
		overlay.Close()

		drawLabel(&result, fmt.Sprintf("%d:%d", c.Index(), c.SizeClass), cx, cy, 0.4, colorutil.White, true)
	}

	return result
}

// drawGridLines draws the 10+10 detected grid lines.
func drawGridLines(img *gocv.Mat, geom grid.Geometry) {
	left, right := int(geom.VLines[0]), int(geom.VLines[grid.Cols])
	top, bottom := int(geom.HLines[0]), int(geom.HLines[grid.Rows])

	for _, y := range geom.HLines {
		gocv.Line(img, image.Pt(left, int(y)), image.Pt(right, int(y)), colorutil.GridLine, 2)
	}
	for _, x := range geom.VLines {
		gocv.Line(img, image.Pt(int(x), top), image.Pt(int(x), bottom), colorutil.GridLine, 2)
	}
}

// drawLabel centers text at (cx, cy), optionally with a black outline
// so it stays readable over tinted cells.
func drawLabel(img *gocv.Mat, text string, cx, cy int, scale float64, c color.RGBA, outline bool) {
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, 1)
	org := image.Pt(cx-size.X/2, cy+size.Y/2)

	if outline {
		gocv.PutText(img, text, org, gocv.FontHersheySimplex, scale, colorutil.Black, 3)
	}
	gocv.PutText(img, text, org, gocv.FontHersheySimplex, scale, c, 1)
}
