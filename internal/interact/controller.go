// Package interact turns pointer input into hover state and view state
// transitions.
package interact

import (
	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/hittest"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/viewport"
)

// PointerEvent is a pointer position in client (window or terminal)
// coordinates, with the canvas origin in the same space.
type PointerEvent struct {
	ClientX, ClientY float64
	OriginX, OriginY float64
}

// Local returns the canvas-local position.
func (e PointerEvent) Local() (float64, float64) {
	return e.ClientX - e.OriginX, e.ClientY - e.OriginY
}

// Hover is the result of the last pointer move. The star and constellation
// fields are set independently; both may be present.
type Hover struct {
	Constellation string // Full name, "" when no segment is under the pointer
	Segment       hittest.SegmentHit
	Star          *catalog.Star
	StarIndex     int
	NearbyStars   []hittest.NearStar // Stars forming the hovered segment

	// Pointer position in canvas-local screen pixels.
	X, Y       float64
	HasPointer bool
}

// HasStar reports whether a star is hovered.
func (h Hover) HasStar() bool {
	return h.Star != nil
}

// HasConstellation reports whether a constellation segment is hovered.
func (h Hover) HasConstellation() bool {
	return h.Constellation != ""
}

// Sky returns the sky position under the pointer. tr must be the transform
// the hover was computed with.
func (h Hover) Sky(tr viewport.Transform) (astro.Equatorial, bool) {
	if !h.HasPointer || tr.Width <= 0 || tr.Height <= 0 {
		return astro.Equatorial{}, false
	}
	wx, wy := tr.ToWorld(h.X, h.Y)
	ra, dec := astro.Unproject(wx, wy, tr.Width, tr.Height)
	return astro.Equatorial{RAdeg: astro.NormalizeRA(ra), DecDeg: dec}, true
}

// Controller owns hover state and forwards clicks to the state machine.
// It is used from a single goroutine.
type Controller struct {
	cat     *catalog.Catalog
	machine *state.Machine
	cfg     hittest.Config
	log     *logging.Logger
	hover   Hover
}

// NewController creates a controller over a loaded catalog.
func NewController(cat *catalog.Catalog, machine *state.Machine, cfg hittest.Config, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{
		cat:     cat,
		machine: machine,
		cfg:     cfg,
		log:     log,
		hover:   Hover{StarIndex: -1},
	}
}

// Hover returns the current hover state.
func (c *Controller) Hover() Hover {
	return c.hover
}

// PointerMove runs both hit-tests at the pointer. tr must be the transform
// the last frame was drawn with, so the hover matches the picture.
func (c *Controller) PointerMove(ev PointerEvent, tr viewport.Transform) Hover {
	sx, sy := ev.Local()
	h := Hover{X: sx, Y: sy, HasPointer: true, StarIndex: -1}

	if c.cat == nil || tr.Width <= 0 || tr.Height <= 0 {
		c.hover = h
		return h
	}

	wx, wy := tr.ToWorld(sx, sy)
	cfg := c.cfg
	if tr.Active() {
		cfg = cfg.Scaled(tr.Zoom)
	}

	if hit, ok := hittest.NearestStar(c.cat.Stars, wx, wy, tr.Width, tr.Height, cfg); ok {
		star := hit.Star
		h.Star = &star
		h.StarIndex = hit.Index
	}

	if seg, ok := hittest.NearestSegment(c.cat.Lines, wx, wy, tr.Width, tr.Height, cfg); ok {
		h.Constellation = seg.Name
		h.Segment = seg
		h.NearbyStars = hittest.StarsNearSegment(c.cat.Stars, seg, tr.Width, tr.Height, cfg)
	}

	if h.Constellation != c.hover.Constellation || h.StarIndex != c.hover.StarIndex {
		c.log.Debug("hover: constellation=%q star=%d", h.Constellation, h.StarIndex)
	}
	c.hover = h
	return h
}

// PointerLeave clears hover and pointer state.
func (c *Controller) PointerLeave() {
	c.hover = Hover{StarIndex: -1}
}

// Click applies a click with the current hover. A returned request must be
// fetched by the caller and fed back through the state machine.
func (c *Controller) Click() (state.Request, bool) {
	return c.machine.Click(c.hover.Constellation)
}

// SelectConstellationByName selects by full name or IAU code.
func (c *Controller) SelectConstellationByName(name string) (state.Request, bool, error) {
	return c.machine.SelectByName(name)
}

// ShowAll returns to the full map.
func (c *Controller) ShowAll() {
	c.machine.ShowAll()
}

// Tooltip returns the tooltip for the current hover.
func (c *Controller) Tooltip() Tooltip {
	return TooltipFor(c.hover)
}
