// Package hittest finds the star and constellation segment under a pointer.
//
// Both searches work in projected pixel space and are independent; a pointer
// can be over a star and a line at the same time.
package hittest

import (
	"math"
	"sort"

	"github.com/litescript/ls-skymap/internal/catalog"
)

// Config holds the pixel thresholds for both searches.
type Config struct {
	SegmentThreshold float64 // Max pointer-to-segment distance for a line hit
	StarMinSize      float64 // Smallest drawn star radius
	StarMaxSize      float64 // Radius of a magnitude-0 star
	StarMagScale     float64 // Radius lost per magnitude
	StarMargin       float64 // Added to the drawn radius for the hitbox
	StarMinHitbox    float64 // Hitbox floor for faint stars
	NearRadius       float64 // Star-to-endpoint distance for NearbyStars
	MaxNearStars     int
}

// DefaultConfig returns the thresholds used by the map.
func DefaultConfig() Config {
	return Config{
		SegmentThreshold: 8,
		StarMinSize:      1.1,
		StarMaxSize:      4.5,
		StarMagScale:     0.6,
		StarMargin:       3,
		StarMinHitbox:    6,
		NearRadius:       12,
		MaxNearStars:     4,
	}
}

// Scaled divides the line thresholds by zoom so they stay constant on
// screen when the view is magnified. Star sizes are drawn in world units
// and grow with the view, so their hitboxes are left alone.
func (c Config) Scaled(zoom float64) Config {
	if zoom <= 1 {
		return c
	}
	c.SegmentThreshold /= zoom
	c.NearRadius /= zoom
	return c
}

// DistanceToSegment returns the distance from (px, py) to the segment
// (x1, y1)-(x2, y2). A zero-length segment degrades to point distance.
func DistanceToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	a := px - x1
	b := py - y1
	c := x2 - x1
	d := y2 - y1

	dot := a*c + b*d
	lenSq := c*c + d*d
	param := -1.0
	if lenSq != 0 {
		param = dot / lenSq
	}

	var xx, yy float64
	switch {
	case param < 0:
		xx, yy = x1, y1
	case param > 1:
		xx, yy = x2, y2
	default:
		xx, yy = x1+param*c, y1+param*d
	}

	return math.Hypot(px-xx, py-yy)
}

// StarRadius is the un-twinkled drawn radius for a magnitude.
func StarRadius(mag float64, cfg Config) float64 {
	return math.Max(cfg.StarMinSize, cfg.StarMaxSize-mag*cfg.StarMagScale)
}

// StarHitbox is the pointer acceptance radius for a magnitude.
func StarHitbox(mag float64, cfg Config) float64 {
	return math.Max(StarRadius(mag, cfg)+cfg.StarMargin, cfg.StarMinHitbox)
}

// StarHit is the result of a point hit-test.
type StarHit struct {
	Index    int
	Star     catalog.Star
	Distance float64
}

// NearestStar returns the closest star whose hitbox contains the pointer.
func NearestStar(stars []catalog.Star, px, py, width, height float64, cfg Config) (StarHit, bool) {
	best := StarHit{Index: -1, Distance: math.Inf(1)}
	for i, s := range stars {
		x, y := s.Project(width, height)
		dist := math.Hypot(px-x, py-y)
		if dist <= StarHitbox(s.Mag, cfg) && dist < best.Distance {
			best = StarHit{Index: i, Star: s, Distance: dist}
		}
	}
	return best, best.Index >= 0
}

// SegmentHit is the result of a segment hit-test.
type SegmentHit struct {
	Feature  int    // Index into the feature slice
	Name     string // Full constellation name
	X1, Y1   float64
	X2, Y2   float64
	Distance float64
}

// NearestSegment returns the closest constellation segment within the
// threshold. Seam-crossing vertex pairs are never candidates.
func NearestSegment(features []catalog.LineFeature, px, py, width, height float64, cfg Config) (SegmentHit, bool) {
	best := SegmentHit{Feature: -1, Distance: cfg.SegmentThreshold}
	for fi, f := range features {
		for _, line := range f.Lines {
			var prevX, prevY float64
			line.Walk(width, height, func(x, y float64, connect bool) {
				if connect {
					dist := DistanceToSegment(px, py, prevX, prevY, x, y)
					if dist < best.Distance {
						best = SegmentHit{
							Feature:  fi,
							Name:     f.Name(),
							X1:       prevX,
							Y1:       prevY,
							X2:       x,
							Y2:       y,
							Distance: dist,
						}
					}
				}
				prevX, prevY = x, y
			})
		}
	}
	return best, best.Feature >= 0
}

// NearStar is a star judged to form part of a hovered segment.
type NearStar struct {
	Index    int
	Star     catalog.Star
	Distance float64 // Distance from the star to the segment
}

// StarsNearSegment returns up to cfg.MaxNearStars stars lying within
// cfg.NearRadius of either segment endpoint, closest to the segment first.
func StarsNearSegment(stars []catalog.Star, seg SegmentHit, width, height float64, cfg Config) []NearStar {
	var near []NearStar
	for i, s := range stars {
		x, y := s.Project(width, height)
		d1 := math.Hypot(x-seg.X1, y-seg.Y1)
		d2 := math.Hypot(x-seg.X2, y-seg.Y2)
		if d1 > cfg.NearRadius && d2 > cfg.NearRadius {
			continue
		}
		near = append(near, NearStar{
			Index:    i,
			Star:     s,
			Distance: DistanceToSegment(x, y, seg.X1, seg.Y1, seg.X2, seg.Y2),
		})
	}

	sort.SliceStable(near, func(i, j int) bool {
		return near[i].Distance < near[j].Distance
	})
	if len(near) > cfg.MaxNearStars {
		near = near[:cfg.MaxNearStars]
	}
	return near
}
