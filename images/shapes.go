// Package images - Geometry for detection boxes in model input space.
package images

import (
	"image"

	"github.com/chewxy/math32"
)

// Rect is an axis-aligned box in pixel coordinates.
//
// X and Y are the top-left corner. Width and Height are expected to be
// non-negative; a box with zero (or negative) area is degenerate.
type Rect struct {
	X      float32 `json:"x" yaml:"x"`
	Y      float32 `json:"y" yaml:"y"`
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// MaxX returns the right edge of the box.
func (r Rect) MaxX() float32 {
	return r.X + r.Width
}

// MaxY returns the bottom edge of the box.
func (r Rect) MaxY() float32 {
	return r.Y + r.Height
}

// Area returns Width*Height. Degenerate boxes report a value <= 0.
func (r Rect) Area() float32 {
	return r.Width * r.Height
}

// Center returns the center point of the box.
func (r Rect) Center() (x, y float32) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Scale multiplies both the origin and the size by the given factors.
//
// This maps a box from the model's square input space onto a differently
// sized view, e.g. 416x416 onto a 4:3 preview.
//
// Arguments:
//   - sx: The horizontal scale factor.
//   - sy: The vertical scale factor.
//
// Returns:
//   - The scaled rectangle.
//
// Example:
//
// ```go
//
//	view := pred.Rect.Scale(640.0/416, 480.0/416)
//
// ```
func (r Rect) Scale(sx, sy float32) Rect {
	return Rect{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}

// Translate moves the box by (dx, dy) without changing its size.
func (r Rect) Translate(dx, dy float32) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// ToRectangle converts the box to an integral image.Rectangle.
//
// Fractional pixels are truncated toward the enclosing grid, so the result
// covers the original box.
func (r Rect) ToRectangle() image.Rectangle {
	return image.Rect(
		int(math32.Floor(r.X)),
		int(math32.Floor(r.Y)),
		int(math32.Ceil(r.MaxX())),
		int(math32.Ceil(r.MaxY())),
	).Canon()
}

// CalculateIoU returns the Intersection over Union of two boxes.
//
//	IoU = Area of Intersection / (Area(A) + Area(B) - Area of Intersection)
//
//	- 1.0 means the boxes are identical.
//	- 0.0 means they don't overlap at all, or they only touch along an edge.
//
// A box with non-positive area never matches anything, itself included, so
// either side being degenerate yields 0.
//
// The intersection extent on each axis is clamped to zero before the two are
// multiplied, so disjoint boxes produce an intersection of exactly 0 rather
// than a negative area.
//
// Arguments:
//   - a: The first rectangle.
//   - b: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
//	b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
//	iou := CalculateIoU(a, b) // 25 / (100 + 100 - 25) ≈ 0.142857
//
// ```
func CalculateIoU(a, b Rect) float32 {
	areaA := a.Area()
	if areaA <= 0 {
		return 0
	}
	areaB := b.Area()
	if areaB <= 0 {
		return 0
	}

	interW := max(min(a.MaxX(), b.MaxX())-max(a.X, b.X), 0)
	interH := max(min(a.MaxY(), b.MaxY())-max(a.Y, b.Y), 0)
	interArea := interW * interH

	return interArea / (areaA + areaB - interArea)
}
