package transform

import (
	"math"

	"github.com/soniakeys/unit"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// TangentPlane is a gnomonic projection about a fixed center on the sphere.
//
// Projected coordinates are returned as angles (the arctangent of the
// standard tangent-plane coordinates) so a square detector of half-width w
// degrees is simply |x| <= w && |y| <= w. x grows toward increasing
// longitude, y toward the frame's north pole.
type TangentPlane struct {
	lon0             float64 // radians
	sinLat0, cosLat0 float64
}

// NewTangentPlane creates a projection centered at (lonDeg, latDeg).
func NewTangentPlane(lonDeg, latDeg float64) TangentPlane {
	s, c := math.Sincos(latDeg * deg2rad)
	return TangentPlane{lon0: lonDeg * deg2rad, sinLat0: s, cosLat0: c}
}

// Project maps (lonDeg, latDeg) onto the plane. ok is false for points on
// the far hemisphere, which have no gnomonic image.
func (tp TangentPlane) Project(lonDeg, latDeg float64) (x, y float64, ok bool) {
	sinLat, cosLat := math.Sincos(latDeg * deg2rad)
	sinDL, cosDL := math.Sincos(lonDeg*deg2rad - tp.lon0)

	cosC := tp.sinLat0*sinLat + tp.cosLat0*cosLat*cosDL
	if cosC <= 0 {
		return 0, 0, false
	}

	X := cosLat * sinDL / cosC
	Y := (tp.cosLat0*sinLat - tp.sinLat0*cosLat*cosDL) / cosC

	return math.Atan(X) * rad2deg, math.Atan(Y) * rad2deg, true
}

// Deproject is the inverse of Project. Longitude is returned in [0, 360).
func (tp TangentPlane) Deproject(x, y float64) (lonDeg, latDeg float64) {
	X := math.Tan(x * deg2rad)
	Y := math.Tan(y * deg2rad)
	rho := math.Hypot(X, Y)
	if rho == 0 {
		return unit.PMod(tp.lon0*rad2deg, 360), math.Asin(tp.sinLat0) * rad2deg
	}

	sinC, cosC := math.Sincos(math.Atan(rho))
	lat := math.Asin(cosC*tp.sinLat0 + Y*sinC*tp.cosLat0/rho)
	lon := tp.lon0 + math.Atan2(X*sinC, rho*tp.cosLat0*cosC-Y*tp.sinLat0*sinC)

	return unit.PMod(lon*rad2deg, 360), lat * rad2deg
}

// Separation returns the great-circle distance in degrees between two
// points given as (lon, lat) in degrees. Uses the haversine formula, which
// stays accurate at small separations.
func Separation(lon1, lat1, lon2, lat2 float64) float64 {
	φ1, φ2 := lat1*deg2rad, lat2*deg2rad
	dφ := φ2 - φ1
	dλ := (lon2 - lon1) * deg2rad

	a := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(a))) * rad2deg
}
