package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ratebook/core/internal/adapters/repository"
	"github.com/ratebook/core/internal/domain/entities"
	"github.com/ratebook/core/internal/infrastructure/config"
	"github.com/ratebook/core/internal/infrastructure/logger"
	"github.com/ratebook/core/internal/infrastructure/server"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "RateBook", Environment: "test"},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: config.StorageConfig{
			File: filepath.Join(t.TempDir(), "database.json"),
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}

	pairRepo := repository.NewFilePairRepository(cfg.Storage.File)
	srv, err := server.New(cfg, pairRepo, repository.NewNoopHistoryRepository(), nil, logger.NewNop())
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_PairLifecycle(t *testing.T) {
	h := newTestServer(t)

	// Create.
	rec := doJSON(t, h, http.MethodPost, "/forex_pair", `{"id":1,"pair":"EUR/USD","price":1.08}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /forex_pair status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("POST /forex_pair body = %q, want empty", rec.Body.String())
	}

	// Read all.
	rec = doJSON(t, h, http.MethodGet, "/forex_pairs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /forex_pairs status = %d, want %d", rec.Code, http.StatusOK)
	}
	var pairs []entities.ForexPair
	if err := json.Unmarshal(rec.Body.Bytes(), &pairs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(pairs) != 1 || pairs[0] != (entities.ForexPair{ID: 1, Pair: "EUR/USD", Price: 1.08}) {
		t.Errorf("GET /forex_pairs = %+v, want one EUR/USD record", pairs)
	}

	// Update.
	rec = doJSON(t, h, http.MethodPut, "/forex_pair", `{"id":1,"pair":"EUR/USD","price":1.09}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /forex_pair status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(t, h, http.MethodGet, "/forex_pair/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /forex_pair/1 status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got entities.ForexPair
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Price != 1.09 {
		t.Errorf("GET /forex_pair/1 price = %v, want 1.09", got.Price)
	}

	// Delete.
	rec = doJSON(t, h, http.MethodDelete, "/forex_pair/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE /forex_pair/1 status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(t, h, http.MethodGet, "/forex_pair/1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /forex_pair/1 after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("GET /forex_pair/1 after delete body = %q, want empty", rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/forex_pairs", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("GET /forex_pairs after delete body = %q, want %q", got, "[]")
	}
}

func TestServer_UpdateCreatesMissingID(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPut, "/forex_pair", `{"id":42,"pair":"AUD/NZD","price":1.09}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /forex_pair status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(t, h, http.MethodGet, "/forex_pair/42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /forex_pair/42 status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got entities.ForexPair
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := entities.ForexPair{ID: 42, Pair: "AUD/NZD", Price: 1.09}
	if got != want {
		t.Errorf("GET /forex_pair/42 = %+v, want %+v", got, want)
	}
}

func TestServer_MalformedBodyRejected(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/forex_pair", `{"id":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /forex_pair status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		origin string
		allow  bool
	}{
		{"localhost origin", "http://localhost:3000", true},
		{"null origin", "null", true},
		{"foreign origin", "https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/forex_pair", nil)
			req.Header.Set(echo.HeaderOrigin, tt.origin)
			req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			allowed := rec.Header().Get(echo.HeaderAccessControlAllowOrigin) == tt.origin
			if allowed != tt.allow {
				t.Errorf("origin %q allowed = %t, want %t (allow-origin header %q)",
					tt.origin, allowed, tt.allow, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
			}

			if tt.allow {
				if got := rec.Header().Get(echo.HeaderAccessControlAllowCredentials); got != "true" {
					t.Errorf("allow-credentials = %q, want %q", got, "true")
				}
				if got := rec.Header().Get(echo.HeaderAccessControlMaxAge); got != "3600" {
					t.Errorf("max-age = %q, want %q", got, "3600")
				}
			}
		})
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(t, h, http.MethodGet, "/ready", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /ready status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = doJSON(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
}
