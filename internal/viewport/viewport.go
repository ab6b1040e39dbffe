// Package viewport converts between map (world) pixels and screen pixels
// for a zoomed, centered view.
package viewport

// Transform maps world coordinates, as produced by astro.Project for the
// full canvas size, onto the screen. The renderer and the hit-test path use
// the same Transform so hover always matches what is drawn.
type Transform struct {
	Zoom    float64
	CenterX float64 // World-space center, already clamped
	CenterY float64
	Width   float64 // Canvas size in pixels
	Height  float64
}

// Identity is the unzoomed view of a width x height canvas.
func Identity(width, height float64) Transform {
	return Transform{
		Zoom:    1,
		CenterX: width / 2,
		CenterY: height / 2,
		Width:   width,
		Height:  height,
	}
}

// New builds a transform, clamping the center so the zoomed view never
// shows space beyond the map edges. Zoom below 1 is treated as 1.
func New(zoom, centerX, centerY, width, height float64) Transform {
	if zoom < 1 {
		zoom = 1
	}
	return Transform{
		Zoom:    zoom,
		CenterX: ClampCenter(centerX, zoom, width),
		CenterY: ClampCenter(centerY, zoom, height),
		Width:   width,
		Height:  height,
	}
}

// ClampCenter clamps one axis of the view center into
// [half/zoom, extent-half/zoom], where half is half the viewport extent.
// An empty range collapses to the midpoint.
func ClampCenter(center, zoom, extent float64) float64 {
	half := extent / 2
	lo := half / zoom
	hi := extent - half/zoom
	if lo > hi {
		return extent / 2
	}
	if center < lo {
		return lo
	}
	if center > hi {
		return hi
	}
	return center
}

// Active reports whether the transform differs from identity.
func (t Transform) Active() bool {
	return t.Zoom > 1
}

// ToScreen maps a world point to screen pixels.
func (t Transform) ToScreen(x, y float64) (float64, float64) {
	if !t.Active() {
		return x, y
	}
	return (x-t.CenterX)*t.Zoom + t.Width/2, (y-t.CenterY)*t.Zoom + t.Height/2
}

// ToWorld maps a screen point back to world pixels.
func (t Transform) ToWorld(sx, sy float64) (float64, float64) {
	if !t.Active() {
		return sx, sy
	}
	return (sx-t.Width/2)/t.Zoom + t.CenterX, (sy-t.Height/2)/t.Zoom + t.CenterY
}
