package api

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/mrtommyb/tesstvgapp/internal/httputil"
	"github.com/mrtommyb/tesstvgapp/internal/metrics"
	"github.com/mrtommyb/tesstvgapp/internal/position"
	"github.com/mrtommyb/tesstvgapp/internal/render"
)

// InvalidInputMessage is the body returned for an unparseable pos list.
const InvalidInputMessage = "Error: the input is invalid."

const demoTarget = "check-visibility?pos=234.56%20-78.9,270.5%20-28.2"

func indexHandler(web fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, web, "index.html")
	}
}

func demoHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, demoTarget, http.StatusFound)
}

// parsePos parses the pos query parameter. A missing or blank pos yields
// no positions.
func parsePos(r *http.Request) ([]position.Position, error) {
	return position.Parse(r.URL.Query().Get("pos"))
}

// rejectInput answers a parse failure with the user-facing message.
func rejectInput(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, err error) {
	metrics.RecordParseError(r.URL.Path)
	logger.Debug("rejected position list",
		"component", "api",
		"path", r.URL.Path,
		"error", err,
	)
	httputil.WriteText(w, status, InvalidInputMessage)
}

func internalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.Error(msg,
		"component", "api",
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// inTessFOVHandler answers one yes/no line, or CSV row, per position.
func inTessFOVHandler(logger *slog.Logger, eval BatchEvaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := parsePos(r)
		if err != nil {
			if errors.Is(err, position.ErrInvalidPosition) {
				rejectInput(w, r, logger, http.StatusBadRequest, err)
				return
			}
			internalError(w, r, logger, "parse positions", err)
			return
		}

		results, err := eval.EvaluateAll(r.Context(), positions)
		if err != nil {
			internalError(w, r, logger, "evaluate positions", err)
			return
		}

		format := render.ParseFormat(r.URL.Query().Get("fmt"))
		start := time.Now()
		body := render.Body(format, position.Tokens(r.URL.Query().Get("pos")), results)
		metrics.ObserveRender(string(format), time.Since(start).Seconds())

		httputil.WriteText(w, http.StatusOK, body)
	}
}

// checkVisibilityHandler renders the HTML report. A parse failure is
// answered with the plain message and status 200.
func checkVisibilityHandler(logger *slog.Logger, campaign string, eval BatchEvaluator, report *render.Report) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := parsePos(r)
		if err != nil {
			if errors.Is(err, position.ErrInvalidPosition) {
				rejectInput(w, r, logger, http.StatusOK, err)
				return
			}
			internalError(w, r, logger, "parse positions", err)
			return
		}

		results, err := eval.EvaluateAll(r.Context(), positions)
		if err != nil {
			internalError(w, r, logger, "evaluate positions", err)
			return
		}
		sectors := make([][]int, len(positions))
		for i, p := range positions {
			sectors[i] = eval.SectorList(p.RA, p.Dec, results[i])
		}

		start := time.Now()
		var buf bytes.Buffer
		err = report.Execute(&buf, render.ReportData{
			Query:    r.URL.Query().Get("pos"),
			Campaign: campaign,
			Rows:     render.Rows(positions, results, sectors),
		})
		if err != nil {
			internalError(w, r, logger, "render report", err)
			return
		}
		metrics.ObserveRender("html", time.Since(start).Seconds())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	}
}

// parseSize reads the optional size parameter.
func parseSize(r *http.Request) (size float64, ok bool, err error) {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return 0, false, nil
	}
	size, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(size) || math.IsInf(size, 0) {
		return 0, false, fmt.Errorf("size %q is not a number", raw)
	}
	return size, true, nil
}

// guideImageHandler draws the field diagram with the positions overlaid.
func guideImageHandler(logger *slog.Logger, campaign string, scenes render.SceneRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := parsePos(r)
		if err != nil {
			if errors.Is(err, position.ErrInvalidPosition) {
				rejectInput(w, r, logger, http.StatusBadRequest, err)
				return
			}
			internalError(w, r, logger, "parse positions", err)
			return
		}

		size, hasSize, err := parseSize(r)
		if err != nil {
			httputil.WriteText(w, http.StatusBadRequest, "Error: "+err.Error()+".")
			return
		}

		start := time.Now()
		var buf bytes.Buffer
		if err := scenes.Render(&buf, render.NewScene(positions, size, hasSize, campaign)); err != nil {
			internalError(w, r, logger, "render image", err)
			return
		}
		metrics.ObserveRender("png", time.Since(start).Seconds())

		w.Header().Set("Content-Type", scenes.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	}
}
