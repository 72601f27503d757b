package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"meeting-backend/internal/analyses"
	"meeting-backend/internal/analysis"
	"meeting-backend/internal/heuristics"
	"meeting-backend/internal/shared/config"
	local "meeting-backend/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T, staticDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &analyses.Service{
		Engines:       map[string]analysis.Engine{analysis.EngineHeuristic: heuristics.NewEngine()},
		DefaultEngine: analysis.EngineHeuristic,
		Outputs:       local.New(t.TempDir()),
		Repo:          analyses.NewMemoryRepo(),
	}
	cfg := config.Config{
		Env:             "dev",
		CORSAllowOrigin: []string{"*"},
		StaticDir:       staticDir,
	}
	return NewRouter(RouterDeps{
		Config:          cfg,
		AnalysisHandler: analyses.NewHandler(svc, 10<<20, false, "google/gemini-2.5-flash"),
	})
}

func TestRouterServesAPIAndMetrics(t *testing.T) {
	r := newTestRouter(t, "")

	for _, path := range []string{"/api/health", "/api/analyses", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected http request counter in metrics output")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestRouterStaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>dashboard</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	r := newTestRouter(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "dashboard") {
		t.Fatalf("expected dashboard, got %d %q", resp.Code, resp.Body.String())
	}

	for _, path := range []string{"/missing.js", "/api/nope"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
	}
}

func TestRouterNoStaticDir(t *testing.T) {
	r := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":3000", "8080": ":8080", ":9000": ":9000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
