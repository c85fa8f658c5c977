package processing

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Box is an axis-aligned rectangle in pixel-inclusive coordinates: a box
// spanning columns 0..15 has X1=0, X2=15 and a width of 16.
type Box struct {
	X1, Y1, X2, Y2 float32
}

func NewBox(x1, y1, x2, y2 float32) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (b Box) Width() float32 {
	return b.X2 - b.X1 + 1
}

func (b Box) Height() float32 {
	return b.Y2 - b.Y1 + 1
}

func (b Box) Area() float32 {
	if b.IsDegenerate() {
		return 0
	}
	return b.Width() * b.Height()
}

// Center returns the box center with the same +1 convention as Width.
func (b Box) Center() (float32, float32) {
	return b.X1 + 0.5*(b.Width()-1), b.Y1 + 0.5*(b.Height()-1)
}

// IsDegenerate reports a box with non-positive width or height.
func (b Box) IsDegenerate() bool {
	return !(b.Width() > 0) || !(b.Height() > 0)
}

func (b Box) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.X1, b.Y1, b.X2, b.Y2)
}

// IoU returns the intersection-over-union of a and b. Degenerate or disjoint
// boxes overlap by 0.
func IoU(a, b Box) float32 {
	if a.IsDegenerate() || b.IsDegenerate() {
		return 0
	}
	iw := math32.Min(a.X2, b.X2) - math32.Max(a.X1, b.X1) + 1
	if iw <= 0 {
		return 0
	}
	ih := math32.Min(a.Y2, b.Y2) - math32.Max(a.Y1, b.Y1) + 1
	if ih <= 0 {
		return 0
	}
	inter := iw * ih
	return inter / (a.Area() + b.Area() - inter)
}

func ScaleBoxes(boxes []Box, scale float32) []Box {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{X1: b.X1 * scale, Y1: b.Y1 * scale, X2: b.X2 * scale, Y2: b.Y2 * scale}
	}
	return out
}

// FlipBoxes mirrors boxes horizontally inside an image of the given width.
func FlipBoxes(boxes []Box, width int) []Box {
	w := float32(width - 1)
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{X1: w - b.X2, Y1: b.Y1, X2: w - b.X1, Y2: b.Y2}
	}
	return out
}
