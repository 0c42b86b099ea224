// Package position parses user-supplied sky positions into normalized
// equatorial coordinates and formats them back for display.
package position

import (
	"fmt"
	"math"
	"strconv"
)

// Position is a normalized equatorial coordinate in degrees.
// RA is in [0, 360) and Dec in [-90, 90].
type Position struct {
	RA  float64
	Dec float64

	// Raw is the input token exactly as it appeared between commas.
	Raw string
}

// HMSDMS formats the position as sexagesimal hours and degrees,
// e.g. "15h38m14s -78d54m00s". Seconds are rounded to the nearest integer.
func (p Position) HMSDMS() string {
	_, h, m, s := splitSexa(p.RA / 15)
	if h == 24 {
		h = 0
	}
	neg, d, dm, ds := splitSexa(p.Dec)
	sign := '+'
	if neg {
		sign = '-'
	}
	return fmt.Sprintf("%02dh%02dm%02ds %c%02dd%02dm%02ds", h, m, s, sign, d, dm, ds)
}

// Decimal formats the position as "ra dec" in decimal degrees with at most
// four decimals and no trailing zeros, e.g. "234.56 -78.9".
func (p Position) Decimal() string {
	return formatDecimal(p.RA) + " " + formatDecimal(p.Dec)
}

func formatDecimal(v float64) string {
	// Adding zero folds -0 into +0.
	v = math.Round(v*1e4)/1e4 + 0
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// splitSexa rounds v to whole arc (or time) seconds and splits it into
// sign, whole units, minutes and seconds.
func splitSexa(v float64) (neg bool, d, m, s int) {
	neg = v < 0
	total := int(math.Round(math.Abs(v) * 3600))
	if total == 0 {
		neg = false
	}
	return neg, total / 3600, total / 60 % 60, total % 60
}

// RAs returns the right ascension of every position, in order.
func RAs(ps []Position) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.RA
	}
	return out
}

// Decs returns the declination of every position, in order.
func Decs(ps []Position) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.Dec
	}
	return out
}
