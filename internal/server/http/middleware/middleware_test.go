package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireAPIKey(t *testing.T) {
	router := gin.New()
	router.Use(RequireAPIKey(testhelpers.KeyVerifierStub{Key: "secret"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "guess", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestRequireAPIKeyDisabledVerifier(t *testing.T) {
	router := gin.New()
	router.Use(RequireAPIKey(testhelpers.KeyVerifierStub{}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(APIKeyHeader, "anything")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no key is configured, got %d", resp.Code)
	}
}

func rateLimitedRouter(l *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(l.Handler())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRateLimiterPerClient(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := NewRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }
	router := rateLimitedRouter(limiter)

	for i := 0; i < 2; i++ {
		if resp := hit(router, "10.0.0.1:1000"); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.Code)
		}
	}
	resp := hit(router, "10.0.0.1:1000")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after budget, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	if resp := hit(router, "10.0.0.2:1000"); resp.Code != http.StatusOK {
		t.Fatalf("expected independent budget for other client, got %d", resp.Code)
	}

	now = now.Add(30 * time.Second)
	if resp := hit(router, "10.0.0.1:1000"); resp.Code != http.StatusOK {
		t.Fatalf("expected refill after half a window, got %d", resp.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := NewRateLimiter(5, time.Minute)
	limiter.now = func() time.Time { return now }
	router := rateLimitedRouter(limiter)

	hit(router, "10.0.0.1:1000")
	now = now.Add(45 * time.Second)
	hit(router, "10.0.0.2:1000")
	now = now.Add(30 * time.Second)

	limiter.cleanup()
	if got := limiter.size(); got != 1 {
		t.Fatalf("expected idle client dropped, %d left", got)
	}
}

func TestRateLimiterDefaultsAndStop(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	if limiter.burst != 100 || limiter.window != time.Minute {
		t.Fatalf("unexpected defaults burst=%d window=%v", limiter.burst, limiter.window)
	}
	limiter.Start()
	limiter.Stop()
	limiter.Stop()
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`{"items":[]}`))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != `{"items":[]}` {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var levels []slog.Level
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey {
			levels = append(levels, a.Value.Any().(slog.Level))
		}
		return a
	}})
	logger := slog.New(handler)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/fail"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	want := []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	if len(levels) != len(want) {
		t.Fatalf("expected %d log lines, got %d", len(want), len(levels))
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("line %d: expected %v, got %v", i, want[i], levels[i])
		}
	}
}
