package render

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mrtommyb/tesstvgapp/web"
)

func TestRows(t *testing.T) {
	rows := Rows(demoPositions, twoResults, [][]int{{12, 13}, nil})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	want := Row{
		Token:      "234.56 -78.9",
		HMSDMS:     "15h38m14s -78d54m00s",
		Decimal:    "234.56 -78.9",
		Observable: true,
		Camera:     4,
		Sectors:    12,
	}
	got := rows[0]
	if got.Token != want.Token || got.HMSDMS != want.HMSDMS || got.Decimal != want.Decimal ||
		got.Observable != want.Observable || got.Camera != want.Camera || got.Sectors != want.Sectors {
		t.Errorf("row 0 = %+v, want %+v", got, want)
	}
	if len(got.SectorList) != 2 {
		t.Errorf("row 0 sectors = %v", got.SectorList)
	}
	if rows[1].Observable || rows[1].Camera != 0 || rows[1].Sectors != 0 {
		t.Errorf("row 1 = %+v, want not observable", rows[1])
	}
}

func TestReportExecute(t *testing.T) {
	r, err := NewReport(web.Content)
	if err != nil {
		t.Fatalf("NewReport error: %v", err)
	}

	var buf bytes.Buffer
	err = r.Execute(&buf, ReportData{
		Query:    "234.56 -78.9,270.5 -28.2",
		Campaign: "TESS Cycle 1",
		Rows:     Rows(demoPositions, twoResults, [][]int{{12, 13}, nil}),
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	body := buf.String()
	for _, want := range []string{
		"TESS Cycle 1 visibility",
		"15h38m14s -78d54m00s",
		"270.5 -28.2",
		"12 (12, 13)",
		"<td>yes</td>",
		"<td>no</td>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestReportEscapesTokens(t *testing.T) {
	r, err := NewReport(web.Content)
	if err != nil {
		t.Fatalf("NewReport error: %v", err)
	}

	rows := []Row{{Token: "<script>alert(1)</script>"}}
	var buf bytes.Buffer
	if err := r.Execute(&buf, ReportData{Rows: rows}); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("token was not HTML-escaped")
	}
}

func TestNewReportMissingTemplate(t *testing.T) {
	if _, err := NewReport(fstest.MapFS{}); err == nil {
		t.Error("expected error for missing template")
	}
}
