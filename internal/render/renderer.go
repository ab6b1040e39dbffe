package render

import (
	"math"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/viewport"
)

// Overlays are optional markers drawn over the map.
type Overlays struct {
	Meridian bool    // Local meridian at the current sidereal time
	Sun      bool    // Sun's apparent position
	LonDeg   float64 // Observer longitude, east positive
	Time     time.Time
}

// Scene is everything a frame depends on besides time.
type Scene struct {
	Catalog   *catalog.Catalog
	Selected  string             // Full constellation name, "" for none
	Transform viewport.Transform // From the camera; applied when Selected is set
	Overlays  Overlays
}

// Stats describes the last frame drawn.
type Stats struct {
	Frames    uint64
	SubPaths  int
	Stars     int
	Zoomed    bool
	LastMilli float64
}

// Renderer draws frames.
type Renderer struct {
	stats Stats
}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Stats returns counters for the frames drawn so far.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// DrawFrame draws one frame at time ms (milliseconds) onto c.
func (r *Renderer) DrawFrame(c Canvas, ms float64, scene Scene) {
	w, h := c.Size()
	c.Clear(Background)

	r.stats.Frames++
	r.stats.LastMilli = ms
	r.stats.SubPaths = 0
	r.stats.Stars = 0

	if scene.Catalog == nil || w <= 0 || h <= 0 {
		return
	}

	tr := scene.Transform
	zoomed := scene.Selected != "" && tr.Active()
	r.stats.Zoomed = zoomed
	zoom := 1.0

	c.Save()
	if zoomed {
		zoom = tr.Zoom
		c.Translate(w/2, h/2)
		c.Scale(zoom)
		c.Translate(-tr.CenterX, -tr.CenterY)
	}

	r.drawLines(c, scene, w, h, zoom)
	r.drawStars(c, scene.Catalog.Stars, w, h, ms)
	r.drawOverlays(c, scene.Overlays, w, h, zoom)

	c.Restore()
}

func (r *Renderer) drawLines(c Canvas, scene Scene, w, h, zoom float64) {
	if scene.Selected != "" {
		f, ok := scene.Catalog.Feature(scene.Selected)
		if !ok {
			return
		}
		paths := FeaturePaths(f, w, h)
		r.stats.SubPaths += len(paths)
		c.StrokePath(paths, Stroke{
			Width: highlightWidth / zoom,
			Color: Highlight,
			Glow:  highlightGlow / zoom,
		})
		return
	}

	var all [][]Point
	for _, f := range scene.Catalog.Lines {
		all = append(all, FeaturePaths(f, w, h)...)
	}
	r.stats.SubPaths += len(all)
	c.StrokePath(all, Stroke{Width: lineWidth, Color: LineColor})
}

func (r *Renderer) drawStars(c Canvas, stars []catalog.Star, w, h, ms float64) {
	for i, s := range stars {
		x, y := s.Project(w, h)
		look := LookFor(s.Key(i), i, s.Mag, s.SpecType, ms)
		c.FillCircle(x, y, look.Radius, Fill{Color: look.Color, Glow: look.Glow})
		r.stats.Stars++
	}
}

func (r *Renderer) drawOverlays(c Canvas, o Overlays, w, h, zoom float64) {
	if o.Time.IsZero() {
		return
	}
	if o.Meridian {
		lst := astro.LocalSiderealTime(o.Time, o.LonDeg)
		x, _ := astro.Project(lst, 0, w, h)
		c.StrokePath([][]Point{{{x, 0}, {x, h}}}, Stroke{
			Width: meridianLineWidth / zoom,
			Color: Meridian,
		})
	}
	if o.Sun {
		sun := astro.SunPosition(o.Time)
		x, y := astro.Project(sun.RAdeg, sun.DecDeg, w, h)
		radius := sunMarkerRadius / math.Max(zoom, 1)
		c.FillCircle(x, y, radius, Fill{Color: SunColor, Glow: radius * sunMarkerGlowRatio})
	}
}

// FeaturePaths projects a feature's polylines into sub-paths, starting a new
// sub-path at each polyline and at every seam-crossing vertex pair.
func FeaturePaths(f catalog.LineFeature, w, h float64) [][]Point {
	var out [][]Point
	for _, line := range f.Lines {
		var cur []Point
		line.Walk(w, h, func(x, y float64, connect bool) {
			if !connect {
				if len(cur) > 1 {
					out = append(out, cur)
				}
				cur = nil
			}
			cur = append(cur, Point{x, y})
		})
		if len(cur) > 1 {
			out = append(out, cur)
		}
	}
	return out
}
