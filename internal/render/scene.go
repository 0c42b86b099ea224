package render

import (
	"io"
	"slices"

	"github.com/mrtommyb/tesstvgapp/internal/position"
)

// MarkerLabel is the legend entry for user positions.
const MarkerLabel = "Your position"

// Window is a display window in degrees. XLim runs from the left edge to
// the right edge, so RA normally decreases along it.
type Window struct {
	XLim [2]float64
	YLim [2]float64
}

// Descending reports whether RA decreases from left to right.
func (w Window) Descending() bool {
	return w.XLim[0] > w.XLim[1]
}

// ComputeWindow centres a window of the given size on the positions:
// xlim = [max(ra)+size/2, min(ra)-size/2], ylim = [min(dec)-size/2,
// max(dec)+size/2]. ok is false when there are no positions.
func ComputeWindow(positions []position.Position, size float64) (w Window, ok bool) {
	if len(positions) == 0 {
		return Window{}, false
	}
	ras := position.RAs(positions)
	decs := position.Decs(positions)
	half := size / 2

	w.XLim = [2]float64{slices.Max(ras) + half, slices.Min(ras) - half}
	w.YLim = [2]float64{slices.Min(decs) - half, slices.Max(decs) + half}
	return w, true
}

// Scene is everything the image renderer needs for one request.
type Scene struct {
	Positions []position.Position
	// Window is nil when the full sky should be shown.
	Window      *Window
	MarkerLabel string
	Campaign    string
}

// NewScene builds a scene for positions. A window is applied only when
// hasSize is set and at least one position was given.
func NewScene(positions []position.Position, size float64, hasSize bool, campaign string) Scene {
	s := Scene{
		Positions:   positions,
		MarkerLabel: MarkerLabel,
		Campaign:    campaign,
	}
	if hasSize {
		if w, ok := ComputeWindow(positions, size); ok {
			s.Window = &w
		}
	}
	return s
}

// SceneRenderer encodes a scene as an image.
type SceneRenderer interface {
	Render(w io.Writer, scene Scene) error
	ContentType() string
}
