// Package astro provides celestial coordinate helpers and sky math.
package astro

import (
	"fmt"
	"math"
)

// Equatorial is a position on the celestial sphere.
type Equatorial struct {
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)
}

// NormalizeRA maps any finite right ascension into [0, 360).
func NormalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	// math.Mod(-1e-17, 360) + 360 rounds to 360.
	if ra >= 360 {
		ra = 0
	}
	return ra
}

// Project maps (ra, dec) in degrees onto a width x height viewport using the
// equirectangular mapping: RA runs left to right, Dec +90 at the top.
func Project(ra, dec, width, height float64) (x, y float64) {
	x = ra / 360 * width
	y = (90 - dec) / 180 * height
	return x, y
}

// Unproject is the inverse of Project.
func Unproject(x, y, width, height float64) (ra, dec float64) {
	if width == 0 || height == 0 {
		return 0, 0
	}
	ra = x / width * 360
	dec = 90 - y/height*180
	return ra, dec
}

// CrossesSeam reports whether two consecutive vertices straddle the
// RA 0/360 discontinuity. Inputs must already be normalized.
func CrossesSeam(ra1, ra2 float64) bool {
	return math.Abs(ra1-ra2) > 180
}

// CircularMeanRA averages right ascensions on the circle so that values
// either side of the seam (e.g. 359 and 1) average to ~0 rather than 180.
// Returns 0 for an empty input.
func CircularMeanRA(ras []float64) float64 {
	if len(ras) == 0 {
		return 0
	}
	var sinSum, cosSum float64
	for _, ra := range ras {
		r := degToRad(ra)
		sinSum += math.Sin(r)
		cosSum += math.Cos(r)
	}
	return NormalizeRA(radToDeg(math.Atan2(sinSum, cosSum)))
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	// Haversine formula
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	// Clamp to avoid numerical errors with asin
	if a > 1 {
		a = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(a)))
}

// FormatRA renders degrees of right ascension as "hh mm ss".
func FormatRA(ra float64) string {
	h := NormalizeRA(ra) / 15
	hh := int(h)
	m := (h - float64(hh)) * 60
	mm := int(m)
	ss := int(math.Round((m - float64(mm)) * 60))
	if ss == 60 {
		ss = 0
		mm++
	}
	if mm == 60 {
		mm = 0
		hh = (hh + 1) % 24
	}
	return fmt.Sprintf("%02dh %02dm %02ds", hh, mm, ss)
}

// FormatDec renders declination as "+dd° mm'".
func FormatDec(dec float64) string {
	sign := "+"
	if dec < 0 {
		sign = "-"
		dec = -dec
	}
	d := int(dec)
	m := int(math.Round((dec - float64(d)) * 60))
	if m == 60 {
		m = 0
		d++
	}
	return fmt.Sprintf("%s%02d° %02d'", sign, d, m)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
