// Package render draws star map frames onto an abstract Canvas.
package render

import (
	"image/color"
)

// Point is a position in canvas (world) pixels.
type Point struct {
	X, Y float64
}

// Stroke styles a path.
type Stroke struct {
	Width float64
	Color color.NRGBA
	Glow  float64 // Blur radius of a halo in the same colour; 0 for none
}

// Fill styles a filled shape.
type Fill struct {
	Color color.NRGBA // Alpha carries the shape's opacity
	Glow  float64
}

// Canvas is a 2D drawing surface with a save/restore transform stack.
// Coordinates passed to drawing calls are transformed by the current
// translate/scale state, as with an HTML canvas context.
type Canvas interface {
	Size() (width, height float64)
	Clear(bg color.Color)
	Save()
	Restore()
	Translate(dx, dy float64)
	Scale(s float64)
	// StrokePath strokes each sub-path independently; no edge joins the
	// last point of one sub-path to the first point of the next.
	StrokePath(subpaths [][]Point, style Stroke)
	FillCircle(cx, cy, r float64, fill Fill)
}

// Affine maps a drawing coordinate to device pixels: d = p*S + T.
type Affine struct {
	S      float64
	TX, TY float64
}

// Apply transforms a point.
func (a Affine) Apply(x, y float64) (float64, float64) {
	return x*a.S + a.TX, y*a.S + a.TY
}

// Stack implements the Save/Restore/Translate/Scale part of Canvas for
// backends. The zero value is the identity.
type Stack struct {
	cur   Affine
	saved []Affine
	init  bool
}

func (s *Stack) ensure() {
	if !s.init {
		s.cur = Affine{S: 1}
		s.init = true
	}
}

// Reset drops all saved states and returns to identity.
func (s *Stack) Reset() {
	s.cur = Affine{S: 1}
	s.saved = s.saved[:0]
	s.init = true
}

// Save pushes the current transform.
func (s *Stack) Save() {
	s.ensure()
	s.saved = append(s.saved, s.cur)
}

// Restore pops the last saved transform. An unmatched Restore is ignored.
func (s *Stack) Restore() {
	s.ensure()
	if n := len(s.saved); n > 0 {
		s.cur = s.saved[n-1]
		s.saved = s.saved[:n-1]
	}
}

// Translate moves the origin by (dx, dy) in current units.
func (s *Stack) Translate(dx, dy float64) {
	s.ensure()
	s.cur.TX += dx * s.cur.S
	s.cur.TY += dy * s.cur.S
}

// Scale multiplies the current scale.
func (s *Stack) Scale(k float64) {
	s.ensure()
	s.cur.S *= k
}

// Current returns the active transform.
func (s *Stack) Current() Affine {
	s.ensure()
	return s.cur
}

// Depth returns the number of saved states.
func (s *Stack) Depth() int {
	return len(s.saved)
}
