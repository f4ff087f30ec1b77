// Package geometry provides the integer image-space primitives used by the
// annotation engine: points, rectangles, polygon rings and the distance,
// area and containment tests built on them.
package geometry

import (
	"fmt"
	"math"
)

// Point is a location in image pixel coordinates
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Corner indexes a rectangle corner. The order matches Rect.Corners.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// Opposite returns the diagonally opposite corner
func (c Corner) Opposite() Corner {
	return 3 - c
}

// Rect is an axis-aligned rectangle with a top-left origin.
// A normalised Rect has non-negative Width and Height.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NormalizeRect builds the rectangle spanned by two arbitrary corner points
func NormalizeRect(a, b Point) Rect {
	x0, x1 := minMax(a.X, b.X)
	y0, y1 := minMax(a.Y, b.Y)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Max returns the bottom-right corner
func (r Rect) Max() Point {
	return Point{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Min returns the top-left corner
func (r Rect) Min() Point {
	return Point{X: r.X, Y: r.Y}
}

// Area returns Width*Height
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Empty reports whether the rectangle has zero area
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the integer centre of r
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Corners returns the corners in TopLeft, TopRight, BottomLeft, BottomRight order
func (r Rect) Corners() [4]Point {
	x1, y1 := r.X+r.Width, r.Y+r.Height
	return [4]Point{
		{X: r.X, Y: r.Y},
		{X: x1, Y: r.Y},
		{X: r.X, Y: y1},
		{X: x1, Y: y1},
	}
}

// Corner returns a single corner of r
func (r Rect) Corner(c Corner) Point {
	return r.Corners()[c]
}

// Translate returns r moved by d
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Union returns the smallest rectangle containing both r and o
func (r Rect) Union(o Rect) Rect {
	x0 := minInt(r.X, o.X)
	y0 := minInt(r.Y, o.Y)
	x1 := maxInt(r.X+r.Width, o.X+o.Width)
	y1 := maxInt(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", r.X, r.Y, r.Width, r.Height)
}

// Distance returns the Euclidean distance between a and b
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
// A degenerate segment falls back to the point distance.
func DistanceToSegment(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	px := float64(a.X) + t*dx
	py := float64(a.Y) + t*dy
	return math.Hypot(float64(p.X)-px, float64(p.Y)-py)
}

// Helper functions
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
