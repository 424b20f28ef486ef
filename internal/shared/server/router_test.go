package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sbom-storage/internal/shared/config"
)

func TestAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		port string
		want string
	}{
		{port: "", want: ":8080"},
		{port: "9090", want: ":9090"},
		{port: ":7000", want: ":7000"},
	}
	for _, tt := range tests {
		if got := Addr(tt.port); got != tt.want {
			t.Fatalf("Addr(%q) = %q, want %q", tt.port, got, tt.want)
		}
	}
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	router := NewRouter(RouterDeps{Config: config.Config{CORSAllowOrigin: []string{"http://localhost:5173"}}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "go_goroutines") {
		t.Fatalf("expected default collectors in metrics output")
	}
}
