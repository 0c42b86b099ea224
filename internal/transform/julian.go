// Package transform provides the sky-frame math behind the pointing model:
// Julian dates, equatorial <-> ecliptic conversion and the gnomonic
// (tangent-plane) projection used for camera focal planes.
//
// Frame conversions use the mean obliquity of the ecliptic at a fixed
// epoch. Nutation and aberration are ignored; they move a star by well
// under an arcminute, far below the size of a CCD gap.
package transform

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/meeus/v3/nutation"
)

// j2000 is the Julian Date of the J2000.0 epoch (January 1, 2000, 12:00:00 TT).
const j2000 = 2451545.0

// JulianDate converts t to a Julian Date. Sub-second precision is kept.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	jd := satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return jd + float64(t.Nanosecond())/1e9/86400
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees at
// the given Julian Date (Laskar's expression, Meeus eq. 22.3).
func MeanObliquity(jd float64) float64 {
	return nutation.MeanObliquity(jd).Deg()
}
