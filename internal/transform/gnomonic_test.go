package transform

import (
	"math"
	"testing"
)

func TestProjectCenter(t *testing.T) {
	tp := NewTangentPlane(315.8, -42)
	x, y, ok := tp.Project(315.8, -42)
	if !ok || math.Abs(x) > 1e-12 || math.Abs(y) > 1e-12 {
		t.Errorf("Project(center) = (%v, %v, %v), want (0, 0, true)", x, y, ok)
	}
}

func TestProjectAxes(t *testing.T) {
	// On the equator, a pure longitude offset maps to x only and a pure
	// latitude offset to y only, with the angle preserved.
	tp := NewTangentPlane(0, 0)

	x, y, _ := tp.Project(10, 0)
	if math.Abs(x-10) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Errorf("Project(10, 0) = (%v, %v), want (10, 0)", x, y)
	}

	x, y, _ = tp.Project(0, -10)
	if math.Abs(x) > 1e-9 || math.Abs(y+10) > 1e-9 {
		t.Errorf("Project(0, -10) = (%v, %v), want (0, -10)", x, y)
	}
}

func TestProjectFarHemisphere(t *testing.T) {
	tp := NewTangentPlane(0, 0)
	if _, _, ok := tp.Project(180, 0); ok {
		t.Error("antipode should not project")
	}
	if _, _, ok := tp.Project(95, 0); ok {
		t.Error("point 95 degrees away should not project")
	}
}

func TestProjectRoundTrip(t *testing.T) {
	centers := [][2]float64{{315.8, -18}, {343.49, -42}, {12, -66}, {0, -90}}
	offsets := [][2]float64{{0, 0}, {11.9, 11.9}, {-5, 3}, {0.05, -12}, {-12, -12}}

	for _, c := range centers {
		tp := NewTangentPlane(c[0], c[1])
		for _, o := range offsets {
			lon, lat := tp.Deproject(o[0], o[1])
			x, y, ok := tp.Project(lon, lat)
			if !ok {
				t.Fatalf("center %v offset %v: deprojected point does not project", c, o)
			}
			if math.Abs(x-o[0]) > 1e-9 || math.Abs(y-o[1]) > 1e-9 {
				t.Errorf("center %v: round trip of %v gave (%v, %v)", c, o, x, y)
			}
		}
	}
}

func TestSeparation(t *testing.T) {
	tests := []struct {
		lon1, lat1, lon2, lat2 float64
		want                   float64
	}{
		{0, 0, 0, 0, 0},
		{0, 0, 90, 0, 90},
		{0, -90, 123, -90, 0},
		{10, -18, 10, -42, 24},
		{359, 0, 1, 0, 2},
	}

	for _, tt := range tests {
		got := Separation(tt.lon1, tt.lat1, tt.lon2, tt.lat2)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Separation(%v, %v, %v, %v) = %v, want %v", tt.lon1, tt.lat1, tt.lon2, tt.lat2, got, tt.want)
		}
	}
}
