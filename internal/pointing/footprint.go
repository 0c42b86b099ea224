package pointing

import "github.com/mrtommyb/tesstvgapp/internal/position"

// edgeSamples is the number of points drawn along each side of a camera
// field outline.
const edgeSamples = 16

// Footprint is the sky outline of one camera during one sector.
type Footprint struct {
	Sector  int
	Camera  int
	Outline []position.Position // closed: the last vertex repeats the first
}

// Footprints returns the outline of every camera in every sector under
// the nominal pointing, ordered by sector then camera.
func (c *Cycle) Footprints() []Footprint {
	hw := c.cfg.HalfWidth
	corners := [][2]float64{{-hw, -hw}, {hw, -hw}, {hw, hw}, {-hw, hw}, {-hw, -hw}}

	out := make([]Footprint, 0, len(c.sectors)*len(c.cfg.CameraLatitudes))
	for _, s := range c.sectors {
		for _, cam := range s.cameras {
			outline := make([]position.Position, 0, 4*edgeSamples+1)
			for i := 0; i < 4; i++ {
				a, b := corners[i], corners[i+1]
				for k := 0; k < edgeSamples; k++ {
					f := float64(k) / edgeSamples
					x := a[0] + f*(b[0]-a[0])
					y := a[1] + f*(b[1]-a[1])
					lon, lat := cam.plane.Deproject(x, y)
					ra, dec := c.frame.ToEquatorial(lon, lat)
					outline = append(outline, position.Position{RA: ra, Dec: dec})
				}
			}
			outline = append(outline, outline[0])
			out = append(out, Footprint{Sector: s.number, Camera: cam.id, Outline: outline})
		}
	}
	return out
}
