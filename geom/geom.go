// Package geom provides the small amount of 2D arithmetic the gesture
// pipeline needs: raw-unit points, millimetre conversion via per-axis
// resolution, centroids, and distances.
package geom

import "math"

// Axis resolutions for the Magic Mouse 2 touch surface, in raw units per
// millimetre.
const (
	ResolutionX = 26.0
	ResolutionY = 70.0
)

// Point is a raw-unit surface coordinate.
type Point struct {
	X, Y int
}

// NewPoint builds a Point.
func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// Center returns the midpoint of p1 and p2, truncated towards zero on each
// axis (integer division). Used to
// find the centroid position between two simultaneous touch contacts.
func Center(p1, p2 Point) Point {
	return Point{
		X: (p1.X + p2.X) / 2,
		Y: (p1.Y + p2.Y) / 2,
	}
}

// Sub returns p1 - p2.
func (p Point) Sub(p2 Point) Point {
	return Point{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// DistanceRaw returns the Euclidean distance between p1 and p2 in raw units.
func DistanceRaw(p1, p2 Point) float64 {
	dx := float64(p1.X - p2.X)
	dy := float64(p1.Y - p2.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceMM converts a raw-unit delta to millimetres using the per-axis
// resolution, then returns the Euclidean distance in millimetres.
func DistanceMM(p1, p2 Point) float64 {
	dx := float64(p1.X-p2.X) / ResolutionX
	dy := float64(p1.Y-p2.Y) / ResolutionY
	return math.Sqrt(dx*dx + dy*dy)
}

// Abs returns the absolute value of a.
func Abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// Min returns the smaller of x and y.
func Min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x and y.
func Max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
