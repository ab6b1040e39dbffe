// Package catalog provides the star and constellation line data drawn on the map.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

// Star is a catalog star. Values are immutable once loaded.
type Star struct {
	ID       *int    // Catalog number, if the source provides one
	RA       float64 // Right Ascension in degrees, normalized to [0, 360)
	Dec      float64 // Declination in degrees
	Mag      float64 // Apparent visual magnitude (lower = brighter)
	Name     string  // Proper name, may be empty
	SpecType string  // Spectral type code, e.g. "A0V"; may be empty
}

// Key returns the star's catalog id, or index when it has none.
func (s Star) Key(index int) int {
	if s.ID != nil {
		return *s.ID
	}
	return index
}

// Label is the display name for the star.
func (s Star) Label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.ID != nil:
		return fmt.Sprintf("HR %d", *s.ID)
	default:
		return "Unnamed star"
	}
}

// Project returns the star's pixel position on a width x height viewport.
func (s Star) Project(width, height float64) (x, y float64) {
	return astro.Project(s.RA, s.Dec, width, height)
}

// Vertex is one point of a constellation polyline.
type Vertex struct {
	RA  float64
	Dec float64
}

// Polyline is an ordered run of vertices.
type Polyline []Vertex

// Walk projects each vertex and calls fn with its pixel position. connect is
// false for the first vertex and for any vertex whose pair with the previous
// one crosses the RA seam; callers start a new sub-path there.
func (p Polyline) Walk(width, height float64, fn func(x, y float64, connect bool)) {
	prevRA := 0.0
	for i, v := range p {
		ra := astro.NormalizeRA(v.RA)
		x, y := astro.Project(ra, v.Dec, width, height)
		connect := i > 0 && !astro.CrossesSeam(ra, prevRA)
		fn(x, y, connect)
		prevRA = ra
	}
}

// LineFeature is one constellation's stick figure.
type LineFeature struct {
	ID    string // IAU 3-letter code
	Lines []Polyline
}

// Name returns the constellation's full name, falling back to its code.
func (f LineFeature) Name() string {
	return ConstellationName(f.ID)
}

// Vertices returns every vertex of every polyline in order.
func (f LineFeature) Vertices() []Vertex {
	var out []Vertex
	for _, line := range f.Lines {
		out = append(out, line...)
	}
	return out
}

// Center is the circular mean of the feature's vertex RA and the arithmetic
// mean of its Dec. ok is false for a feature with no vertices.
func (f LineFeature) Center() (c astro.Equatorial, ok bool) {
	verts := f.Vertices()
	if len(verts) == 0 {
		return astro.Equatorial{}, false
	}
	ras := make([]float64, len(verts))
	var decSum float64
	for i, v := range verts {
		ras[i] = astro.NormalizeRA(v.RA)
		decSum += v.Dec
	}
	return astro.Equatorial{
		RAdeg:  astro.CircularMeanRA(ras),
		DecDeg: decSum / float64(len(verts)),
	}, true
}

// Catalog is a loaded star and line data set.
type Catalog struct {
	Stars     []Star
	Lines     []LineFeature
	LoadedAt  time.Time
	Warnings  []string // Entries dropped while decoding
	StarsFrom string   // Source descriptions, for display
	LinesFrom string
}

// Feature finds a line feature by full name or IAU code, case-insensitively.
func (c *Catalog) Feature(name string) (LineFeature, bool) {
	for _, f := range c.Lines {
		if strings.EqualFold(f.Name(), name) || strings.EqualFold(f.ID, name) {
			return f, true
		}
	}
	return LineFeature{}, false
}

// Center returns the view center of the named constellation.
func (c *Catalog) Center(name string) (astro.Equatorial, bool) {
	f, ok := c.Feature(name)
	if !ok {
		return astro.Equatorial{}, false
	}
	return f.Center()
}

// StarByName looks up a star by proper name, case-insensitively.
func (c *Catalog) StarByName(name string) (Star, bool) {
	for _, s := range c.Stars {
		if s.Name != "" && strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Star{}, false
}

// Constellations returns the full names of all loaded line features, sorted.
func (c *Catalog) Constellations() []string {
	names := make([]string, 0, len(c.Lines))
	for _, f := range c.Lines {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// Brightest returns up to n stars ordered by magnitude.
func (c *Catalog) Brightest(n int) []Star {
	sorted := make([]Star, len(c.Stars))
	copy(sorted, c.Stars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mag < sorted[j].Mag
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
