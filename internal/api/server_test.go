package api

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mrtommyb/tesstvgapp/internal/health"
	"github.com/mrtommyb/tesstvgapp/internal/pointing"
	"github.com/mrtommyb/tesstvgapp/internal/render"
	"github.com/mrtommyb/tesstvgapp/internal/visibility"
	"github.com/mrtommyb/tesstvgapp/web"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// southOracle observes everything south of -50 on camera 4 in 12 sectors.
type southOracle struct{}

func (southOracle) Classify(ra, dec float64) pointing.Classification {
	switch {
	case dec < -50:
		return pointing.Observable
	case dec < -20:
		return pointing.Marginal
	}
	return pointing.NotObservable
}

func (southOracle) Camera(ra, dec float64, fallback bool) int { return 4 }

func (southOracle) Coverage(ra, dec float64) pointing.CoverageStats {
	return pointing.CoverageStats{Max: 12, Min: 11, Median: 12, Mean: 11.8}
}

func (southOracle) Sectors(ra, dec float64) []int { return []int{1, 2, 3} }

func (southOracle) Reentrant() bool { return true }

// stubScenes records the last scene and writes a fixed body.
type stubScenes struct {
	last  *render.Scene
	calls int
	err   error
}

func (s *stubScenes) Render(w io.Writer, scene render.Scene) error {
	s.calls++
	s.last = &scene
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte("\x89PNG fake"))
	return err
}

func (s *stubScenes) ContentType() string { return "image/png" }

func newTestServer(t *testing.T, scenes *stubScenes) http.Handler {
	t.Helper()
	logger := testLogger()

	report, err := render.NewReport(web.Content)
	if err != nil {
		t.Fatalf("NewReport error: %v", err)
	}
	var ready health.Readiness
	ready.SetReady(true)

	srv := NewServer(Config{Addr: ":0", Campaign: "TESS Cycle 1"}, Deps{
		Evaluator: visibility.NewEvaluator(southOracle{}, 2, logger),
		Report:    report,
		Scene:     scenes,
		Readiness: &ready,
		Web:       web.Content,
	}, logger)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func withPos(path, pos string, extra ...string) string {
	q := url.Values{}
	q.Set("pos", pos)
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return path + "?" + q.Encode()
}

const demoPos = "234.56 -78.9,270.5 -28.2"

func TestInTessFOV(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "plain text",
			target:     withPos("/in-tess-fov", demoPos),
			wantStatus: http.StatusOK,
			wantBody:   "yes\r\nno\r\n",
		},
		{
			name:       "csv",
			target:     withPos("/in-tess-fov", demoPos, "fmt", "csv"),
			wantStatus: http.StatusOK,
			wantBody:   "position,in_region\r\n234.56 -78.9,yes\r\n270.5 -28.2,no\r\n",
		},
		{
			name:       "unknown fmt falls back to text",
			target:     withPos("/in-tess-fov", demoPos, "fmt", "xml"),
			wantStatus: http.StatusOK,
			wantBody:   "yes\r\nno\r\n",
		},
		{
			name:       "csv echoes raw tokens",
			target:     withPos("/in-tess-fov", " 15:38:14.4 -78:54:00 , 270.5 -28.2", "fmt", "csv"),
			wantStatus: http.StatusOK,
			wantBody:   "position,in_region\r\n 15:38:14.4 -78:54:00 ,yes\r\n 270.5 -28.2,no\r\n",
		},
		{
			name:       "missing pos",
			target:     "/in-tess-fov",
			wantStatus: http.StatusOK,
			wantBody:   "",
		},
		{
			name:       "missing pos csv",
			target:     "/in-tess-fov?fmt=csv",
			wantStatus: http.StatusOK,
			wantBody:   "position,in_region\r\n",
		},
		{
			name:       "invalid token",
			target:     withPos("/in-tess-fov", "234.56 -78.9,not-a-coordinate"),
			wantStatus: http.StatusBadRequest,
			wantBody:   InvalidInputMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", ct)
			}
		})
	}
}

func TestCheckVisibility(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	w := get(t, h, withPos("/check-visibility", demoPos))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		"TESS Cycle 1 visibility",
		"15h38m14s -78d54m00s",
		"18h02m00s -28d12m00s",
		"12 (1, 2, 3)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestCheckVisibilityInvalidInput(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	w := get(t, h, withPos("/check-visibility", "not-a-coordinate"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "Error: the input is invalid." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestCheckVisibilityEmpty(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	w := get(t, h, "/check-visibility")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "<td>") {
		t.Error("empty query should render no rows")
	}
}

func TestGuideImage(t *testing.T) {
	scenes := &stubScenes{}
	h := newTestServer(t, scenes)

	w := get(t, h, withPos("/tesstvguide.png", demoPos, "size", "10"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "\x89PNG fake" {
		t.Errorf("body = %q", w.Body.String())
	}

	scene := scenes.last
	if scene == nil || scene.Window == nil {
		t.Fatal("scene window not set")
	}
	if math.Abs(scene.Window.XLim[0]-275.5) > 1e-9 || math.Abs(scene.Window.XLim[1]-229.56) > 1e-9 {
		t.Errorf("XLim = %v, want [275.5 229.56]", scene.Window.XLim)
	}
	if !scene.Window.Descending() {
		t.Error("window should be descending")
	}
	if scene.MarkerLabel != "Your position" || scene.Campaign != "TESS Cycle 1" {
		t.Errorf("labels = %q / %q", scene.MarkerLabel, scene.Campaign)
	}
}

func TestGuideImageWithoutParams(t *testing.T) {
	scenes := &stubScenes{}
	h := newTestServer(t, scenes)

	w := get(t, h, "/tesstvguide.png")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if scenes.last.Window != nil || len(scenes.last.Positions) != 0 {
		t.Errorf("scene = %+v, want full sky without markers", scenes.last)
	}
}

func TestGuideImageErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		renderErr  error
		wantStatus int
		wantCalls  int
	}{
		{"invalid pos", withPos("/tesstvguide.png", "91 100"), nil, http.StatusBadRequest, 0},
		{"invalid size", withPos("/tesstvguide.png", demoPos, "size", "big"), nil, http.StatusBadRequest, 0},
		{"nan size", withPos("/tesstvguide.png", demoPos, "size", "NaN"), nil, http.StatusBadRequest, 0},
		{"renderer failure", withPos("/tesstvguide.png", demoPos), errors.New("boom"), http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenes := &stubScenes{err: tt.renderErr}
			h := newTestServer(t, scenes)

			w := get(t, h, tt.target)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if scenes.calls != tt.wantCalls {
				t.Errorf("renderer calls = %d, want %d", scenes.calls, tt.wantCalls)
			}
		})
	}
}

func TestDemoRedirect(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	w := get(t, h, "/demo")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location: %v", err)
	}
	if loc.Path != "/check-visibility" || loc.Query().Get("pos") != demoPos {
		t.Errorf("Location = %q", w.Header().Get("Location"))
	}
}

func TestStaticRoutes(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	tests := []struct {
		target     string
		wantStatus int
		wantSubstr string
	}{
		{"/", http.StatusOK, "<form action=\"check-visibility\""},
		{"/static/style.css", http.StatusOK, "border-collapse"},
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusOK, "ready"},
		{"/metrics", http.StatusOK, "tvg_evaluation_workers"},
		{"/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, h, tt.target)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantSubstr) {
				t.Errorf("body missing %q", tt.wantSubstr)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/in-tess-fov", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestParseErrorsCounted(t *testing.T) {
	h := newTestServer(t, &stubScenes{})

	w := get(t, h, withPos("/in-tess-fov", "garbage"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	m := get(t, h, "/metrics").Body.String()
	if !strings.Contains(m, `tvg_parse_errors_total{route="/in-tess-fov"}`) {
		t.Error("parse error counter not exported for /in-tess-fov")
	}
}
