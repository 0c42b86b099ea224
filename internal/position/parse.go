package position

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// ErrInvalidPosition is returned when a token matches none of the accepted
// coordinate formats.
var ErrInvalidPosition = errors.New("invalid position")

// Unit selects how unitless coordinate components are interpreted.
type Unit int

const (
	// UnitNone accepts only components that carry explicit units
	// (12h34m56s, -45d12m00s, 123.4deg).
	UnitNone Unit = iota
	// UnitHourDeg reads RA as hours and Dec as degrees.
	UnitHourDeg
	// UnitDeg reads both components as degrees.
	UnitDeg
)

// String returns the unit hint name.
func (u Unit) String() string {
	switch u {
	case UnitNone:
		return "none"
	case UnitHourDeg:
		return "hour,deg"
	case UnitDeg:
		return "deg"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

var (
	hmsRe        = regexp.MustCompile(`^([+-]?)(\d+)h(\d+)m(\d+(?:\.\d*)?)s?$`)
	dmsRe        = regexp.MustCompile(`^([+-]?)(\d+)d(\d+)m(\d+(?:\.\d*)?)s?$`)
	hourRe       = regexp.MustCompile(`^(\d+(?:\.\d*)?)h$`)
	degSuffixRe  = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+))(?:d|deg)$`)
	errAmbiguous = errors.New("components carry no explicit units")
)

// Parse splits raw on commas and parses every token with ParseSingle.
// Blank input yields an empty slice. The returned slice has one entry per
// token, in input order.
func Parse(raw string) ([]Position, error) {
	if strings.TrimSpace(raw) == "" {
		return []Position{}, nil
	}
	tokens := Tokens(raw)
	out := make([]Position, 0, len(tokens))
	for i, tok := range tokens {
		p, err := ParseSingle(tok)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Tokens returns the raw comma-separated tokens of a position list, with
// whitespace preserved. Blank input yields no tokens.
func Tokens(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// ParseSingle parses one position token. A format-free parse is tried
// first; if that fails the token is re-read as hour/degree when it contains
// a colon and as degree/degree otherwise.
func ParseSingle(token string) (Position, error) {
	s := strings.TrimSpace(token)
	p, err := ParseWithUnit(s, UnitNone)
	if err != nil {
		hint := UnitDeg
		if strings.Contains(s, ":") {
			hint = UnitHourDeg
		}
		p, err = ParseWithUnit(s, hint)
		if err != nil {
			return Position{}, fmt.Errorf("%w %q: %w", ErrInvalidPosition, token, err)
		}
	}
	p.Raw = token
	return p, nil
}

// ParseWithUnit parses s under an explicit unit hint.
func ParseWithUnit(s string, u Unit) (Position, error) {
	raStr, decStr, err := components(s)
	if err != nil {
		return Position{}, err
	}

	var ra, dec float64
	switch u {
	case UnitNone:
		if ra, err = explicitRA(raStr); err != nil {
			return Position{}, err
		}
		if dec, err = explicitDec(decStr); err != nil {
			return Position{}, err
		}
	case UnitHourDeg:
		if ra, err = hinted(raStr, explicitRA, 15); err != nil {
			return Position{}, fmt.Errorf("ra: %w", err)
		}
		if dec, err = hinted(decStr, explicitDec, 1); err != nil {
			return Position{}, fmt.Errorf("dec: %w", err)
		}
	case UnitDeg:
		if ra, err = hinted(raStr, explicitRA, 1); err != nil {
			return Position{}, fmt.Errorf("ra: %w", err)
		}
		if dec, err = hinted(decStr, explicitDec, 1); err != nil {
			return Position{}, fmt.Errorf("dec: %w", err)
		}
	default:
		return Position{}, fmt.Errorf("unknown unit hint %v", u)
	}

	return normalize(ra, dec)
}

func normalize(ra, dec float64) (Position, error) {
	if math.IsNaN(ra) || math.IsInf(ra, 0) || math.IsNaN(dec) || math.IsInf(dec, 0) {
		return Position{}, errors.New("coordinate is not finite")
	}
	if dec < -90 || dec > 90 {
		return Position{}, fmt.Errorf("declination %g out of range [-90, 90]", dec)
	}
	return Position{RA: unit.PMod(ra, 360), Dec: dec}, nil
}

// components splits a token into its RA and Dec parts. Six whitespace
// separated fields are read as "h m s d m s".
func components(s string) (string, string, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 2:
		return fields[0], fields[1], nil
	case 6:
		return strings.Join(fields[:3], ":"), strings.Join(fields[3:], ":"), nil
	default:
		return "", "", fmt.Errorf("expected 2 or 6 fields, got %d", len(fields))
	}
}

func explicitRA(s string) (float64, error) {
	if m := hmsRe.FindStringSubmatch(s); m != nil {
		hours, err := fromParts(m[1], m[2], m[3], m[4])
		return hours * 15, err
	}
	if m := hourRe.FindStringSubmatch(s); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		return hours * 15, err
	}
	return explicitDec(s)
}

func explicitDec(s string) (float64, error) {
	if m := dmsRe.FindStringSubmatch(s); m != nil {
		return fromParts(m[1], m[2], m[3], m[4])
	}
	if m := degSuffixRe.FindStringSubmatch(s); m != nil {
		return strconv.ParseFloat(m[1], 64)
	}
	return 0, errAmbiguous
}

// hinted reads one component under a unit hint. A component that carries
// its own unit keeps it; a bare one is read with sexagesimal and scaled to
// degrees.
func hinted(s string, explicit func(string) (float64, error), scale float64) (float64, error) {
	v, err := explicit(s)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, errAmbiguous) {
		return 0, err
	}
	v, err = sexagesimal(s)
	return v * scale, err
}

// sexagesimal reads a plain decimal number or a colon separated
// "d:m[:s]" value. Minutes may be fractional when no seconds field
// follows. The result is in the unit of the leading field.
func sexagesimal(s string) (float64, error) {
	if !strings.Contains(s, ":") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		return v, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed sexagesimal value %q", s)
	}
	sign := ""
	if strings.HasPrefix(parts[0], "-") || strings.HasPrefix(parts[0], "+") {
		sign, parts[0] = parts[0][:1], parts[0][1:]
	}
	if len(parts) == 3 {
		return fromParts(sign, parts[0], parts[1], parts[2])
	}

	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || m < 0 || m >= 60 {
		return 0, fmt.Errorf("minutes %q out of range [0, 60)", parts[1])
	}
	whole := math.Floor(m)
	sec := strconv.FormatFloat((m-whole)*60, 'f', -1, 64)
	return fromParts(sign, parts[0], strconv.Itoa(int(whole)), sec)
}

func fromParts(sign, whole, minutes, seconds string) (float64, error) {
	d, err := strconv.Atoi(whole)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("malformed leading field %q", whole)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m >= 60 {
		return 0, fmt.Errorf("minutes %q out of range [0, 60)", minutes)
	}
	s, err := strconv.ParseFloat(seconds, 64)
	if err != nil || s < 0 || s >= 60 {
		return 0, fmt.Errorf("seconds %q out of range [0, 60)", seconds)
	}
	var neg byte
	if sign == "-" {
		neg = '-'
	}
	return unit.FromSexa(neg, d, m, s), nil
}
