// Package metadata resolves descriptive information about constellations:
// a text description, IAU area and brightest star, and survey imagery.
package metadata

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Gateway that has no entry for a name.
var ErrNotFound = errors.New("constellation metadata not found")

const (
	areaUnavailable    = "N/A"
	unknownValue       = "Unknown"
	wikipediaPageBase  = "https://en.wikipedia.org/wiki/"
	wikipediaTitleTail = "_(constellation)"
)

// Record is the information shown in the info panel for one constellation.
type Record struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Area          string `json:"area"`
	BrightestStar string `json:"brightest_star"`
	ReferenceURL  string `json:"reference_url"`
	Fallback      bool   `json:"fallback"` // Built locally after a failed fetch
	Local         bool   `json:"-"`        // Built from built-in tables only
}

// Gateway fetches a Record by full constellation name.
type Gateway interface {
	Name() string
	Fetch(ctx context.Context, name string) (Record, error)
}

// FallbackDescription is the generic text used when no description could
// be fetched.
func FallbackDescription(name string) string {
	return fmt.Sprintf("%s is one of the 88 constellations recognized by the "+
		"International Astronomical Union. It can be observed in the night sky "+
		"and contains various stars and deep-sky objects.", name)
}

// Fallback builds the record shown when a fetch fails.
func Fallback(name string) Record {
	return Record{
		Name:          name,
		Description:   FallbackDescription(name),
		Area:          areaUnavailable,
		BrightestStar: unknownValue,
		ReferenceURL:  wikipediaPageBase + wikipediaTitle(name),
		Fallback:      true,
	}
}

// Resolve fetches a record and never returns an empty one: on failure the
// fallback record is returned together with the error.
func Resolve(ctx context.Context, g Gateway, name string) (Record, error) {
	if g == nil {
		return Fallback(name), fmt.Errorf("resolve %s: no gateway", name)
	}
	rec, err := g.Fetch(ctx, name)
	if err != nil {
		return Fallback(name), fmt.Errorf("resolve %s: %w", name, err)
	}
	if rec.Name == "" {
		rec.Name = name
	}
	if rec.Description == "" {
		rec.Description = FallbackDescription(name)
	}
	return rec, nil
}

// Offline is a Gateway that answers from the built-in IAU table only.
type Offline struct{}

// Name implements Gateway.
func (Offline) Name() string {
	return "offline"
}

// Fetch implements Gateway.
func (Offline) Fetch(_ context.Context, name string) (Record, error) {
	rec := Record{
		Name:          name,
		Description:   FallbackDescription(name),
		Area:          unknownValue,
		BrightestStar: unknownValue,
		ReferenceURL:  wikipediaPageBase + wikipediaTitle(name),
		Local:         true,
	}
	applyStats(&rec)
	return rec, nil
}
