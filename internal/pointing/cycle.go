// Package pointing models the TESS camera array pointing plan for one
// observing cycle and classifies sky positions against it.
//
// Each sector the spacecraft points along one ecliptic meridian. Four
// cameras sit on that meridian, each a 24x24 degree gnomonic field split
// into a 2x2 CCD mosaic. A position is observable when it lands on silicon
// (inside a camera field and outside the CCD gaps) in at least one sector.
package pointing

import (
	"errors"
	"fmt"
	"time"

	"github.com/soniakeys/unit"

	"github.com/mrtommyb/tesstvgapp/internal/transform"
)

// Config describes the geometry of one observing cycle.
type Config struct {
	Name            string        // human label, e.g. "TESS Cycle 1"
	Sectors         int           // number of sectors in the cycle
	FirstLongitude  float64       // ecliptic longitude of sector 1 (degrees)
	CameraLatitudes []float64     // boresight ecliptic latitude of camera 1..N (degrees)
	HalfWidth       float64       // camera field half-width (degrees)
	HalfGap         float64       // half-width of the CCD gaps on each axis (degrees)
	EdgeMargin      float64       // band outside the field still counted as marginal (degrees)
	PointingJitter  float64       // boresight offset along each focal-plane axis for coverage statistics (degrees)
	Epoch           time.Time     // start of sector 1 (UTC)
	SectorDuration  time.Duration // length of one sector
}

// Cycle1 returns the southern-hemisphere plan of the first TESS cycle.
func Cycle1() Config {
	return Config{
		Name:            "TESS Cycle 1",
		Sectors:         13,
		FirstLongitude:  315.8,
		CameraLatitudes: []float64{-18, -42, -66, -90},
		HalfWidth:       12,
		HalfGap:         0.05,
		EdgeMargin:      0.5,
		PointingJitter:  0.5,
		Epoch:           time.Date(2018, 7, 25, 0, 0, 0, 0, time.UTC),
		SectorDuration:  time.Duration(27.4 * 24 * float64(time.Hour)),
	}
}

// Validate reports whether the configuration describes a usable geometry.
func (c Config) Validate() error {
	switch {
	case c.Sectors < 1:
		return errors.New("at least one sector is required")
	case len(c.CameraLatitudes) == 0:
		return errors.New("at least one camera is required")
	case c.HalfWidth <= 0 || c.HalfWidth >= 45:
		return fmt.Errorf("camera half-width %g out of range (0, 45)", c.HalfWidth)
	case c.HalfGap < 0 || c.HalfGap >= c.HalfWidth:
		return fmt.Errorf("CCD half-gap %g out of range [0, %g)", c.HalfGap, c.HalfWidth)
	case c.EdgeMargin < 0:
		return fmt.Errorf("edge margin %g must not be negative", c.EdgeMargin)
	case c.PointingJitter < 0:
		return fmt.Errorf("pointing jitter %g must not be negative", c.PointingJitter)
	case c.SectorDuration <= 0:
		return errors.New("sector duration must be positive")
	}
	for i, lat := range c.CameraLatitudes {
		if lat < -90 || lat > 90 {
			return fmt.Errorf("camera %d latitude %g out of range [-90, 90]", i+1, lat)
		}
	}
	return nil
}

// camera is one camera boresight for one sector.
type camera struct {
	id       int
	lon, lat float64 // ecliptic boresight (degrees)
	plane    transform.TangentPlane
}

type sector struct {
	number  int
	cameras []camera
}

// Cycle is the pointing oracle for one observing cycle. Immutable after
// construction; all methods are safe for concurrent use.
type Cycle struct {
	cfg     Config
	epochJD float64
	frame   *transform.EclipticFrame
	sectors []sector
	offsets [][2]float64 // focal-plane (x, y) boresight offsets for coverage statistics
}

// New builds the sector and camera geometry for cfg.
func New(cfg Config) (*Cycle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pointing config: %w", err)
	}

	jd := transform.JulianDate(cfg.Epoch)

	c := &Cycle{
		cfg:     cfg,
		epochJD: jd,
		frame:   transform.NewEclipticFrame(transform.MeanObliquity(jd)),
	}

	step := 360 / float64(cfg.Sectors)
	for s := 0; s < cfg.Sectors; s++ {
		lon := unit.PMod(cfg.FirstLongitude+float64(s)*step, 360)
		sec := sector{number: s + 1}
		for i, lat := range cfg.CameraLatitudes {
			sec.cameras = append(sec.cameras, camera{
				id:    i + 1,
				lon:   lon,
				lat:   lat,
				plane: transform.NewTangentPlane(lon, lat),
			})
		}
		c.sectors = append(c.sectors, sec)
	}

	j := cfg.PointingJitter
	for _, dx := range []float64{-j, 0, j} {
		for _, dy := range []float64{-j, 0, j} {
			c.offsets = append(c.offsets, [2]float64{dx, dy})
		}
	}

	return c, nil
}

// Name returns the cycle label.
func (c *Cycle) Name() string {
	return c.cfg.Name
}

// Config returns the configuration the cycle was built from.
func (c *Cycle) Config() Config {
	return c.cfg
}

// EpochJD returns the Julian Date of the start of sector 1, the epoch the
// ecliptic frame is fixed at.
func (c *Cycle) EpochJD() float64 {
	return c.epochJD
}

// ObliquityDeg returns the mean obliquity used for frame conversion.
func (c *Cycle) ObliquityDeg() float64 {
	return c.frame.ObliquityDeg()
}

// Reentrant reports that the oracle holds no mutable state.
func (c *Cycle) Reentrant() bool {
	return true
}

// SectorWindow returns the nominal start and end of sector n (1-based).
func (c *Cycle) SectorWindow(n int) (time.Time, time.Time, error) {
	if n < 1 || n > len(c.sectors) {
		return time.Time{}, time.Time{}, fmt.Errorf("sector %d out of range [1, %d]", n, len(c.sectors))
	}
	start := c.cfg.Epoch.Add(time.Duration(n-1) * c.cfg.SectorDuration)
	return start, start.Add(c.cfg.SectorDuration), nil
}
