// Package geometry provides primitives over axis-aligned bounding boxes in
// image pixel space.
package geometry

// Box is an axis-aligned bounding box with x1 < x2 and y1 < y2.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Point is a location in pixel space. Fractional coordinates are allowed
// because box centers fall between pixels.
type Point struct {
	X float64
	Y float64
}

// epsilon keeps IoU defined when both boxes are degenerate.
const epsilon = 1e-6

func (b Box) Width() int  { return b.X2 - b.X1 }
func (b Box) Height() int { return b.Y2 - b.Y1 }

func (b Box) Area() int {
	return b.Width() * b.Height()
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{
		X: float64(b.X1+b.X2) / 2,
		Y: float64(b.Y1+b.Y2) / 2,
	}
}

// Contains reports whether p lies inside b, boundary included.
func (b Box) Contains(p Point) bool {
	return float64(b.X1) <= p.X && p.X <= float64(b.X2) &&
		float64(b.Y1) <= p.Y && p.Y <= float64(b.Y2)
}

// IoU returns the intersection-over-union of two boxes. Disjoint boxes score
// 0; a zero-area box scores 0 against anything.
func IoU(a, b Box) float64 {
	interW := min(a.X2, b.X2) - max(a.X1, b.X1)
	interH := min(a.Y2, b.Y2) - max(a.Y1, b.Y1)
	if interW < 0 {
		interW = 0
	}
	if interH < 0 {
		interH = 0
	}
	inter := float64(interW * interH)
	union := float64(a.Area()+b.Area()) - inter + epsilon
	return inter / union
}

// HeadRegion returns the top topRatio fraction of a person box by height,
// full width. The helmet for a rider is expected to overlap this region.
func HeadRegion(person Box, topRatio float64) Box {
	return Box{
		X1: person.X1,
		Y1: person.Y1,
		X2: person.X2,
		Y2: person.Y1 + int(topRatio*float64(person.Height())),
	}
}
