package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-skymap/internal/astro"
)

// ErrEmptyCatalog is returned when a star source decodes to zero usable stars.
var ErrEmptyCatalog = errors.New("star catalog is empty")

// JSON structures matching the bsc_stars / d3-celestial line formats

type jsonStar struct {
	ID       *int     `json:"id"`
	RA       *float64 `json:"ra"`
	Dec      *float64 `json:"dec"`
	Mag      *float64 `json:"mag"`
	Name     string   `json:"name"`
	SpecType string   `json:"spectype"`
}

type jsonFeatureCollection struct {
	Type     string        `json:"type"`
	Features []jsonFeature `json:"features"`
}

type jsonFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   *jsonGeometry  `json:"geometry"`
}

type jsonGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseStars decodes a JSON array of stars. Entries missing a coordinate or
// magnitude, or with declination outside ±90, are dropped and described in
// the returned warnings.
func ParseStars(data []byte) ([]Star, []string, error) {
	var raw []jsonStar
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("unmarshal stars: %w", err)
	}

	stars := make([]Star, 0, len(raw))
	var warnings []string
	for i, r := range raw {
		if r.RA == nil || r.Dec == nil || r.Mag == nil {
			warnings = append(warnings, fmt.Sprintf("star %d: missing ra, dec or mag", i))
			continue
		}
		if !finite(*r.RA) || !finite(*r.Dec) || *r.Dec < -90 || *r.Dec > 90 {
			warnings = append(warnings, fmt.Sprintf("star %d: position out of range (%v, %v)", i, *r.RA, *r.Dec))
			continue
		}
		stars = append(stars, Star{
			ID:       r.ID,
			RA:       astro.NormalizeRA(*r.RA),
			Dec:      *r.Dec,
			Mag:      *r.Mag,
			Name:     r.Name,
			SpecType: r.SpecType,
		})
	}

	if len(stars) == 0 {
		return nil, warnings, ErrEmptyCatalog
	}
	return stars, warnings, nil
}

// ParseLines decodes a GeoJSON FeatureCollection of constellation lines.
// Only MultiLineString geometries are kept; anything else is reported in
// the warnings, as are vertices off the sphere. Vertex RA is normalized
// into [0, 360).
func ParseLines(data []byte) ([]LineFeature, []string, error) {
	var raw jsonFeatureCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("unmarshal constellation lines: %w", err)
	}

	features := make([]LineFeature, 0, len(raw.Features))
	var warnings []string
	for _, rf := range raw.Features {
		if rf.Geometry == nil || rf.Geometry.Type != "MultiLineString" {
			warnings = append(warnings, fmt.Sprintf("feature %q: not a MultiLineString", rf.ID))
			continue
		}

		var coords [][][]float64
		if err := json.Unmarshal(rf.Geometry.Coordinates, &coords); err != nil {
			warnings = append(warnings, fmt.Sprintf("feature %q: bad coordinates: %v", rf.ID, err))
			continue
		}

		f := LineFeature{ID: rf.ID}
		for _, line := range coords {
			poly := make(Polyline, 0, len(line))
			for _, pt := range line {
				if len(pt) < 2 {
					continue
				}
				if !finite(pt[0]) || !finite(pt[1]) || pt[1] < -90 || pt[1] > 90 {
					warnings = append(warnings, fmt.Sprintf("feature %q: vertex out of range (%v, %v)", rf.ID, pt[0], pt[1]))
					continue
				}
				poly = append(poly, Vertex{RA: astro.NormalizeRA(pt[0]), Dec: pt[1]})
			}
			if len(poly) > 0 {
				f.Lines = append(f.Lines, poly)
			}
		}
		features = append(features, f)
	}

	return features, warnings, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
