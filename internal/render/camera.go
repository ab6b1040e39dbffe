package render

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/viewport"
)

// DefaultCameraDuration is how long a focus change takes to settle.
const DefaultCameraDuration = 450 * time.Millisecond

// camTarget is a view goal in canvas-fraction space, so it survives resizes.
type camTarget struct {
	zoom   float32
	fx, fy float32
}

type camAnim struct {
	zoom, fx, fy *gween.Tween
	done         [3]bool
}

// Camera eases the displayed zoom and center toward the view state. The
// state machine stays the source of truth; the camera only smooths the path.
// Zooming in and moving between selections animate; returning to the full
// map is immediate.
type Camera struct {
	duration float32 // Seconds
	cur      camTarget
	target   camTarget
	anim     *camAnim
}

// NewCamera creates a camera at the full-map view.
func NewCamera(duration time.Duration) *Camera {
	home := camTarget{zoom: 1, fx: 0.5, fy: 0.5}
	return &Camera{
		duration: float32(duration.Seconds()),
		cur:      home,
		target:   home,
	}
}

// Update advances the camera by dt toward v and returns the transform to
// draw and hit-test with.
func (c *Camera) Update(v state.View, width, height float64, dt time.Duration) viewport.Transform {
	if !v.IsSelected() || v.Zoom <= 1 {
		home := camTarget{zoom: 1, fx: 0.5, fy: 0.5}
		c.cur, c.target, c.anim = home, home, nil
		return viewport.Identity(width, height)
	}

	x, y := astro.Project(v.Focus.RAdeg, v.Focus.DecDeg, 1, 1)
	want := camTarget{zoom: float32(v.Zoom), fx: float32(x), fy: float32(y)}
	if want != c.target {
		c.target = want
		if c.duration <= 0 {
			c.cur = want
			c.anim = nil
		} else {
			c.anim = &camAnim{
				zoom: gween.New(c.cur.zoom, want.zoom, c.duration, ease.OutCubic),
				fx:   gween.New(c.cur.fx, want.fx, c.duration, ease.OutCubic),
				fy:   gween.New(c.cur.fy, want.fy, c.duration, ease.OutCubic),
			}
		}
	}

	if c.anim != nil {
		step := float32(dt.Seconds())
		tweens := [3]*gween.Tween{c.anim.zoom, c.anim.fx, c.anim.fy}
		vals := [3]*float32{&c.cur.zoom, &c.cur.fx, &c.cur.fy}
		for i, tw := range tweens {
			if c.anim.done[i] {
				continue
			}
			val, done := tw.Update(step)
			*vals[i] = val
			c.anim.done[i] = done
		}
		if c.anim.done[0] && c.anim.done[1] && c.anim.done[2] {
			c.cur = c.target
			c.anim = nil
		}
	}

	// Settled frames use the view's float64 values, not the float32 tweens.
	if c.anim == nil {
		return v.Transform(width, height)
	}
	return viewport.New(float64(c.cur.zoom),
		float64(c.cur.fx)*width, float64(c.cur.fy)*height, width, height)
}

// Settled reports whether no animation is in progress.
func (c *Camera) Settled() bool {
	return c.anim == nil
}
