package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition returns the apparent equatorial coordinates of the Sun.
func SunPosition(t time.Time) Equatorial {
	jd := julian.TimeToJD(t.UTC())
	ra, dec := solar.ApparentEquatorial(jd)
	return Equatorial{
		RAdeg:  NormalizeRA(radToDeg(ra.Rad())),
		DecDeg: radToDeg(dec.Rad()),
	}
}

// LocalSiderealTime returns the right ascension, in degrees, currently
// crossing the meridian of an observer at lonDeg (east positive).
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	jd := julian.TimeToJD(t.UTC())
	gast := sidereal.Apparent(jd)
	return NormalizeRA(radToDeg(gast.Angle().Rad()) + lonDeg)
}

// SunSeparation is the angular distance in degrees between the Sun and a target.
func SunSeparation(target Equatorial, t time.Time) float64 {
	sun := SunPosition(t)
	return AngularSeparation(sun.RAdeg, sun.DecDeg, target.RAdeg, target.DecDeg)
}
