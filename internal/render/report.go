package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/mrtommyb/tesstvgapp/internal/position"
	"github.com/mrtommyb/tesstvgapp/internal/visibility"
)

// ReportTemplate is the path of the report template inside the web FS.
const ReportTemplate = "templates/check-visibility.html"

// Row is one line of the HTML report.
type Row struct {
	Token      string
	HMSDMS     string
	Decimal    string
	Observable bool
	Camera     int
	Sectors    int
	SectorList []int
}

// ReportData is handed to the report template.
type ReportData struct {
	Query    string
	Campaign string
	Rows     []Row
}

// Rows zips the aligned per-position sequences into report rows. Callers
// guarantee that positions, results and sectors share one length.
func Rows(positions []position.Position, results []visibility.Result, sectors [][]int) []Row {
	rows := make([]Row, len(positions))
	for i, p := range positions {
		rows[i] = Row{
			Token:      p.Raw,
			HMSDMS:     p.HMSDMS(),
			Decimal:    p.Decimal(),
			Observable: results[i].Observable,
			Camera:     results[i].Camera,
			Sectors:    results[i].Sectors,
			SectorList: sectors[i],
		}
	}
	return rows
}

// Report executes the check-visibility page template.
type Report struct {
	tmpl *template.Template
}

var reportFuncs = template.FuncMap{
	"yesno": yesNo,
	"join": func(ns []int) string {
		parts := make([]string, len(ns))
		for i, n := range ns {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ", ")
	},
}

// NewReport parses the report template from fsys.
func NewReport(fsys fs.FS) (*Report, error) {
	tmpl, err := template.New("check-visibility.html").Funcs(reportFuncs).ParseFS(fsys, ReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Report{tmpl: tmpl}, nil
}

// Execute writes the report for data to w.
func (r *Report) Execute(w io.Writer, data ReportData) error {
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute report template: %w", err)
	}
	return nil
}
