// Package geometry holds the two coordinate spaces window coordination works in.
//
// Physical values are raw framebuffer pixels, the unit host windows, monitor
// enumeration and screenshots use. Logical values are points, the unit the
// automation bridge speaks when it moves another application's window:
// logical = floor(physical / scale). The two spaces are separate types so a
// value can only cross between them through an explicit conversion.
package geometry

import (
	"fmt"
	"math"
)

// Scale is the ratio between physical and logical pixels on one display.
type Scale float64

// Valid reports whether s can be used for conversions.
func (s Scale) Valid() bool {
	f := float64(s)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (s Scale) String() string {
	return fmt.Sprintf("%gx", float64(s))
}

// toLogical divides and floors. Never round here: rounding can open a one pixel
// gap between adjacent windows at fractional scales.
func toLogical(v int, s Scale) int {
	return int(math.Floor(float64(v) / float64(s)))
}

func toPhysical(v int, s Scale) int {
	return int(math.Floor(float64(v) * float64(s)))
}

// toPhysicalCeil is the smallest physical value that floors back to v when
// s >= 1.
func toPhysicalCeil(v int, s Scale) int {
	return int(math.Ceil(float64(v) * float64(s)))
}

// PhysicalPoint is a position in physical pixels.
type PhysicalPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LogicalPoint is a position in logical pixels.
type LogicalPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// IsZero reports whether p is the origin.
func (p LogicalPoint) IsZero() bool { return p.X == 0 && p.Y == 0 }

// PhysicalSize is a width/height pair in physical pixels.
type PhysicalSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LogicalSize is a width/height pair in logical pixels.
type LogicalSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PhysicalRect is a window or display rectangle in physical pixels.
type PhysicalRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LogicalRect is a window rectangle in logical pixels.
type LogicalRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (p PhysicalPoint) ToLogical(s Scale) LogicalPoint {
	return LogicalPoint{X: toLogical(p.X, s), Y: toLogical(p.Y, s)}
}

func (p LogicalPoint) ToPhysical(s Scale) PhysicalPoint {
	return PhysicalPoint{X: toPhysical(p.X, s), Y: toPhysical(p.Y, s)}
}

func (sz PhysicalSize) ToLogical(s Scale) LogicalSize {
	return LogicalSize{Width: toLogical(sz.Width, s), Height: toLogical(sz.Height, s)}
}

func (sz LogicalSize) ToPhysical(s Scale) PhysicalSize {
	return PhysicalSize{Width: toPhysical(sz.Width, s), Height: toPhysical(sz.Height, s)}
}

// ToLogical converts every field independently. Converting the far edge and
// subtracting would give a different width at fractional scales.
func (r PhysicalRect) ToLogical(s Scale) LogicalRect {
	return LogicalRect{
		X:      toLogical(r.X, s),
		Y:      toLogical(r.Y, s),
		Width:  toLogical(r.Width, s),
		Height: toLogical(r.Height, s),
	}
}

func (r LogicalRect) ToPhysical(s Scale) PhysicalRect {
	return PhysicalRect{
		X:      toPhysical(r.X, s),
		Y:      toPhysical(r.Y, s),
		Width:  toPhysical(r.Width, s),
		Height: toPhysical(r.Height, s),
	}
}

// ToPhysicalStable converts r so that ToLogical(s) of the result is r again
// for any s >= 1. Use it when a window is placed and later read back.
func (r LogicalRect) ToPhysicalStable(s Scale) PhysicalRect {
	return PhysicalRect{
		X:      toPhysicalCeil(r.X, s),
		Y:      toPhysicalCeil(r.Y, s),
		Width:  toPhysicalCeil(r.Width, s),
		Height: toPhysicalCeil(r.Height, s),
	}
}

func (r PhysicalRect) Position() PhysicalPoint { return PhysicalPoint{X: r.X, Y: r.Y} }
func (r PhysicalRect) Size() PhysicalSize      { return PhysicalSize{Width: r.Width, Height: r.Height} }

// Center returns the midpoint of r, rounded toward the origin.
func (r PhysicalRect) Center() PhysicalPoint {
	return PhysicalPoint{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r (right and bottom edges exclusive).
func (r PhysicalRect) Contains(p PhysicalPoint) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

func (r PhysicalRect) String() string {
	return fmt.Sprintf("%dx%d at %d,%d (physical)", r.Width, r.Height, r.X, r.Y)
}

func (r LogicalRect) Position() LogicalPoint { return LogicalPoint{X: r.X, Y: r.Y} }
func (r LogicalRect) Size() LogicalSize      { return LogicalSize{Width: r.Width, Height: r.Height} }

// Center returns the midpoint of r, rounded toward the origin.
func (r LogicalRect) Center() LogicalPoint {
	return LogicalPoint{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r (right and bottom edges exclusive).
func (r LogicalRect) Contains(p LogicalPoint) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r LogicalRect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r LogicalRect) String() string {
	return fmt.Sprintf("%dx%d at %d,%d (logical)", r.Width, r.Height, r.X, r.Y)
}
