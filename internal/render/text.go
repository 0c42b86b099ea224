// Package render turns evaluated batches into response bodies: plain
// yes/no lines, CSV echoing the input, an HTML report, or an image scene.
package render

import (
	"strings"

	"github.com/mrtommyb/tesstvgapp/internal/visibility"
)

const (
	csvHeader = "position,in_region\r\n"
	lineEnd   = "\r\n"
)

// Format selects the body produced for /in-tess-fov.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// ParseFormat maps the fmt query parameter to a Format. Anything other
// than "csv" falls back to plain text.
func ParseFormat(s string) Format {
	if s == string(FormatCSV) {
		return FormatCSV
	}
	return FormatText
}

func yesNo(observable bool) string {
	if observable {
		return "yes"
	}
	return "no"
}

// Text renders one "yes" or "no" line per result, in order.
func Text(results []visibility.Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(yesNo(r.Observable))
		b.WriteString(lineEnd)
	}
	return b.String()
}

// CSV renders a header followed by one "<token>,yes|no" line per result.
// tokens[i] is echoed verbatim and must align with results[i].
func CSV(tokens []string, results []visibility.Result) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for i, r := range results {
		b.WriteString(tokens[i])
		b.WriteByte(',')
		b.WriteString(yesNo(r.Observable))
		b.WriteString(lineEnd)
	}
	return b.String()
}

// Body renders results in the requested format.
func Body(f Format, tokens []string, results []visibility.Result) string {
	if f == FormatCSV {
		return CSV(tokens, results)
	}
	return Text(results)
}
