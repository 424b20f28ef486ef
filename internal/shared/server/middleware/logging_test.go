package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"sbom-storage/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.POST("/api/v1/storage/generations/:generationId/enhancements/:enhancementId", func(c *gin.Context) {
		c.Set("generationId", c.Param("generationId"))
		c.Set("enhancementId", c.Param("enhancementId"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/storage/generations/gen-1/enhancements/enh-2", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "generation_id", "enhancement_id", "duration_ms", "status", "route"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-42" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["generation_id"] != "gen-1" {
		t.Fatalf("unexpected generation_id: %v", payload["generation_id"])
	}
	if payload["enhancement_id"] != "enh-2" {
		t.Fatalf("unexpected enhancement_id: %v", payload["enhancement_id"])
	}
	if payload["route"] != "/api/v1/storage/generations/:generationId/enhancements/:enhancementId" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	id := resp.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatalf("expected generated request id header")
	}
	if resp.Body.String() != id {
		t.Fatalf("context id %q does not match header %q", resp.Body.String(), id)
	}
}

func TestRecoveryReturnsErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.POST("/generations/:generationId", func(c *gin.Context) {
		c.Set("generationId", c.Param("generationId"))
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/generations/gen-9", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"internal_error"`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}

	var panicLine map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["msg"] == "http.panic" {
			panicLine = entry
		}
	}
	if panicLine == nil {
		t.Fatalf("expected panic log line, got %s", buf.String())
	}
	if panicLine["panic"] != "boom" {
		t.Fatalf("unexpected panic field: %v", panicLine["panic"])
	}
	if panicLine["route"] != "/generations/:generationId" {
		t.Fatalf("unexpected route: %v", panicLine["route"])
	}
	if panicLine["generation_id"] != "gen-9" {
		t.Fatalf("unexpected generation_id: %v", panicLine["generation_id"])
	}
}

func TestRecoveryAfterStreamingStarted(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(Recovery())
	router.GET("/content/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
		_, _ = c.Writer.Write([]byte("partial"))
		panic("copy failed")
	})

	req := httptest.NewRequest(http.MethodGet, "/content/gen-1/bom.json", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected committed status 200, got %d", resp.Code)
	}
	if resp.Body.String() != "partial" {
		t.Fatalf("expected no envelope after streamed bytes, got %q", resp.Body.String())
	}
	if !strings.Contains(buf.String(), `"headers_out":true`) {
		t.Fatalf("expected headers_out in panic log, got %s", buf.String())
	}
}
