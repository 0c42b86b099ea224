package pointing

import (
	"fmt"
	"math"
	"sort"

	"github.com/mrtommyb/tesstvgapp/internal/transform"
)

// Classification is the oracle's verdict for a sky position.
type Classification int

const (
	// NotObservable means the position never falls inside a camera field.
	NotObservable Classification = iota
	// Marginal means the position only falls in CCD gaps or in the edge
	// margin of a camera field.
	Marginal
	// Observable means the position lands on silicon in at least one sector.
	Observable
)

// String returns the classification name.
func (c Classification) String() string {
	switch c {
	case NotObservable:
		return "not-observable"
	case Marginal:
		return "marginal"
	case Observable:
		return "observable"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// CoverageStats summarizes how many sectors cover a position across the
// pointing uncertainty ensemble.
type CoverageStats struct {
	Max    int
	Min    int
	Median float64
	Mean   float64
}

// sameDistance is the tolerance under which two boresight distances are
// treated as equal and the lower camera id wins.
const sameDistance = 1e-9

// hit is the best camera placement of a position within one sector.
type hit struct {
	kind   Classification
	camera int
	dist   float64
}

// locate classifies an ecliptic position against one camera, with the
// boresight displaced by (dx, dy) degrees in the focal plane.
func (c *Cycle) locate(cam camera, lon, lat, dx, dy float64) Classification {
	x, y, ok := cam.plane.Project(lon, lat)
	if !ok {
		return NotObservable
	}
	ax, ay := math.Abs(x-dx), math.Abs(y-dy)

	hw := c.cfg.HalfWidth
	if ax <= hw && ay <= hw {
		if ax < c.cfg.HalfGap || ay < c.cfg.HalfGap {
			return Marginal
		}
		return Observable
	}
	if edge := hw + c.cfg.EdgeMargin; ax <= edge && ay <= edge {
		return Marginal
	}
	return NotObservable
}

// sectorHits returns, for one sector, the best placement and every camera
// that has the position on silicon.
func (c *Cycle) sectorHits(s sector, lon, lat, dx, dy float64) (best hit, silicon []int) {
	for _, cam := range s.cameras {
		kind := c.locate(cam, lon, lat, dx, dy)
		if kind == NotObservable {
			continue
		}
		if kind == Observable {
			silicon = append(silicon, cam.id)
		}
		dist := transform.Separation(cam.lon, cam.lat, lon, lat)
		switch {
		case kind > best.kind:
			best = hit{kind: kind, camera: cam.id, dist: dist}
		case kind == best.kind && dist < best.dist-sameDistance:
			best = hit{kind: kind, camera: cam.id, dist: dist}
		}
	}
	return best, silicon
}

// Classify returns the oracle verdict for (ra, dec) in degrees.
func (c *Cycle) Classify(ra, dec float64) Classification {
	lon, lat := c.frame.ToEcliptic(ra, dec)
	verdict := NotObservable
	for _, s := range c.sectors {
		best, _ := c.sectorHits(s, lon, lat, 0, 0)
		if best.kind > verdict {
			verdict = best.kind
			if verdict == Observable {
				break
			}
		}
	}
	return verdict
}

// Camera returns the camera id (1-based) that observes (ra, dec), or 0.
//
// Without fallback a camera is returned only when every sector that has the
// position on silicon agrees on a single camera. With fallback the
// earliest covering sector decides, the closest boresight winning within a
// sector (lower id on ties), and a position that is only marginal resolves
// to the nearest camera of the earliest sector it is marginal in.
func (c *Cycle) Camera(ra, dec float64, fallback bool) int {
	lon, lat := c.frame.ToEcliptic(ra, dec)

	var firstSilicon, firstMarginal int
	unique := 0
	ambiguous := false
	for _, s := range c.sectors {
		best, silicon := c.sectorHits(s, lon, lat, 0, 0)
		switch best.kind {
		case Observable:
			if firstSilicon == 0 {
				firstSilicon = best.camera
			}
			for _, id := range silicon {
				if unique == 0 {
					unique = id
				} else if id != unique {
					ambiguous = true
				}
			}
		case Marginal:
			if firstMarginal == 0 {
				firstMarginal = best.camera
			}
		}
	}

	if !fallback {
		if ambiguous {
			return 0
		}
		return unique
	}
	if firstSilicon != 0 {
		return firstSilicon
	}
	return firstMarginal
}

// Sectors returns the numbers of the sectors that have (ra, dec) on
// silicon under the nominal pointing, in ascending order.
func (c *Cycle) Sectors(ra, dec float64) []int {
	lon, lat := c.frame.ToEcliptic(ra, dec)
	var out []int
	for _, s := range c.sectors {
		if best, _ := c.sectorHits(s, lon, lat, 0, 0); best.kind == Observable {
			out = append(out, s.number)
		}
	}
	return out
}

// Coverage counts the sectors that have (ra, dec) on silicon for every
// member of the pointing ensemble and summarizes the counts. Each member
// displaces every camera boresight along the focal-plane x and y axes.
func (c *Cycle) Coverage(ra, dec float64) CoverageStats {
	lon, lat := c.frame.ToEcliptic(ra, dec)

	counts := make([]int, 0, len(c.offsets))
	for _, off := range c.offsets {
		n := 0
		for _, s := range c.sectors {
			if best, _ := c.sectorHits(s, lon, lat, off[0], off[1]); best.kind == Observable {
				n++
			}
		}
		counts = append(counts, n)
	}
	return summarize(counts)
}

func summarize(counts []int) CoverageStats {
	if len(counts) == 0 {
		return CoverageStats{}
	}
	sorted := append([]int(nil), counts...)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}

	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return CoverageStats{
		Max:    sorted[len(sorted)-1],
		Min:    sorted[0],
		Median: median,
		Mean:   float64(sum) / float64(len(sorted)),
	}
}
