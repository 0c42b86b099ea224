// Package plot draws the camera footprints of the observing campaign with
// user positions overlaid, and encodes the result as PNG.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mrtommyb/tesstvgapp/internal/pointing"
	"github.com/mrtommyb/tesstvgapp/internal/position"
	"github.com/mrtommyb/tesstvgapp/internal/render"
)

// FootprintSource supplies the camera outlines to draw.
type FootprintSource interface {
	Footprints() []pointing.Footprint
}

// Config sets the output image size in inches.
type Config struct {
	Width  float64
	Height float64
}

// DefaultConfig returns an 8x6 inch canvas.
func DefaultConfig() Config {
	return Config{Width: 8, Height: 6}
}

// Renderer implements render.SceneRenderer with gonum/plot.
type Renderer struct {
	footprints []pointing.Footprint
	cameras    int
	width      vg.Length
	height     vg.Length
	logger     *slog.Logger
}

var _ render.SceneRenderer = (*Renderer)(nil)

// NewRenderer snapshots the outlines from src. Footprints never change
// after start-up so they are computed once.
func NewRenderer(src FootprintSource, cfg Config, logger *slog.Logger) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("plot size must be positive, got %gx%g", cfg.Width, cfg.Height)
	}
	fps := src.Footprints()
	cameras := 0
	for _, fp := range fps {
		cameras = max(cameras, fp.Camera)
	}
	return &Renderer{
		footprints: fps,
		cameras:    cameras,
		width:      vg.Length(cfg.Width) * vg.Inch,
		height:     vg.Length(cfg.Height) * vg.Inch,
		logger:     logger,
	}, nil
}

// ContentType is the MIME type of Render's output.
func (r *Renderer) ContentType() string {
	return "image/png"
}

// legendEntry is one legend row.
type legendEntry struct {
	label string
	thumb gonumplot.Thumbnailer
}

// build assembles the plot for scene. The legend carries the campaign
// label on the camera outlines and the marker label on the positions.
func (r *Renderer) build(scene render.Scene) (*gonumplot.Plot, []legendEntry, error) {
	p := gonumplot.New()
	p.X.Label.Text = "Right ascension [deg]"
	p.Y.Label.Text = "Declination [deg]"
	p.X.Scale = gonumplot.InvertedScale{Normalizer: gonumplot.LinearScale{}}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var legend []legendEntry
	colors := palette(r.cameras)
	for _, fp := range r.footprints {
		for _, seg := range segments(fp.Outline) {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return nil, nil, fmt.Errorf("footprint sector %d camera %d: %w", fp.Sector, fp.Camera, err)
			}
			l.LineStyle.Color = colors[fp.Camera-1]
			l.LineStyle.Width = vg.Points(0.8)
			p.Add(l)
			if len(legend) == 0 && scene.Campaign != "" {
				legend = append(legend, legendEntry{label: scene.Campaign, thumb: l})
			}
		}
	}

	if len(scene.Positions) > 0 {
		s, err := plotter.NewScatter(markers(scene.Positions))
		if err != nil {
			return nil, nil, fmt.Errorf("position markers: %w", err)
		}
		s.GlyphStyle.Shape = draw.PlusGlyph{}
		s.GlyphStyle.Radius = vg.Points(6)
		s.GlyphStyle.Color = color.Black
		p.Add(s)
		legend = append(legend, legendEntry{label: scene.MarkerLabel, thumb: s})
	}

	for _, e := range legend {
		p.Legend.Add(e.label, e.thumb)
	}

	p.X.Min, p.X.Max = 0, 360
	p.Y.Min, p.Y.Max = -90, 90
	if win := scene.Window; win != nil {
		p.X.Min, p.X.Max = math.Min(win.XLim[0], win.XLim[1]), math.Max(win.XLim[0], win.XLim[1])
		p.Y.Min, p.Y.Max = win.YLim[0], win.YLim[1]
	}
	return p, legend, nil
}

// Render draws the scene and writes a PNG to w.
func (r *Renderer) Render(w io.Writer, scene render.Scene) error {
	p, _, err := r.build(scene)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	r.logger.Debug("scene rendered",
		"component", "plot",
		"positions", len(scene.Positions),
		"windowed", scene.Window != nil,
	)
	return nil
}

// palette returns n evenly spaced hues of equal lightness.
func palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = colorful.Hcl(360*float64(i)/float64(n)+20, 0.6, 0.5).Clamped()
	}
	return out
}

// segments splits an outline wherever consecutive vertices jump across
// the RA wrap, so no line is drawn across the whole sky.
func segments(outline []position.Position) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range outline {
		if i > 0 && math.Abs(v.RA-outline[i-1].RA) > 180 {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
		}
		cur = append(cur, plotter.XY{X: v.RA, Y: v.Dec})
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func markers(ps []position.Position) plotter.XYs {
	xys := make(plotter.XYs, len(ps))
	for i, p := range ps {
		xys[i] = plotter.XY{X: p.RA, Y: p.Dec}
	}
	return xys
}
