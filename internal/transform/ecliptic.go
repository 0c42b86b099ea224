package transform

import (
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/unit"
)

// EclipticFrame converts between equatorial and ecliptic coordinates for a
// fixed obliquity. Immutable after construction; safe for concurrent use.
type EclipticFrame struct {
	obliquityDeg float64
	ε            *coord.Obliquity
}

// NewEclipticFrame creates a frame for the given obliquity in degrees.
func NewEclipticFrame(obliquityDeg float64) *EclipticFrame {
	return &EclipticFrame{
		obliquityDeg: obliquityDeg,
		ε:            coord.NewObliquity(unit.AngleFromDeg(obliquityDeg)),
	}
}

// ObliquityDeg returns the obliquity the frame was built with.
func (f *EclipticFrame) ObliquityDeg() float64 {
	return f.obliquityDeg
}

// ToEcliptic converts RA/Dec (degrees) to ecliptic longitude in [0, 360)
// and latitude, both in degrees.
func (f *EclipticFrame) ToEcliptic(raDeg, decDeg float64) (lonDeg, latDeg float64) {
	eq := &coord.Equatorial{RA: unit.RAFromDeg(raDeg), Dec: unit.AngleFromDeg(decDeg)}
	ecl := new(coord.Ecliptic).EqToEcl(eq, f.ε)
	return unit.PMod(ecl.Lon.Deg(), 360), ecl.Lat.Deg()
}

// ToEquatorial converts ecliptic longitude/latitude (degrees) to RA in
// [0, 360) and Dec, both in degrees.
func (f *EclipticFrame) ToEquatorial(lonDeg, latDeg float64) (raDeg, decDeg float64) {
	ecl := &coord.Ecliptic{Lon: unit.AngleFromDeg(lonDeg), Lat: unit.AngleFromDeg(latDeg)}
	eq := new(coord.Equatorial).EclToEq(ecl, f.ε)
	return unit.PMod(eq.RA.Deg(), 360), eq.Dec.Deg()
}
