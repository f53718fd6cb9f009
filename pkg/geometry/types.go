// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// AspectRatio returns min(w,h)/max(w,h), i.e. 1.0 for a square.
// A degenerate rectangle returns 0.
func (r Rect) AspectRatio() float64 {
	longer := math.Max(r.Width, r.Height)
	if longer <= 0 {
		return 0
	}
	return math.Min(r.Width, r.Height) / longer
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToFloat converts to Rect.
func (r RectInt) ToFloat() Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// AspectRatio returns min(w,h)/max(w,h), i.e. 1.0 for a square.
func (r RectInt) AspectRatio() float64 {
	return r.ToFloat().AspectRatio()
}

// Area returns the rectangle area.
func (r RectInt) Area() int {
	return r.Width * r.Height
}
