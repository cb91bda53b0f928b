package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/healthsites/localityd/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(rl *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doFrom(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newLimitedRouter(middleware.NewRateLimiter(ctx, 10, 5))

	if w := doFrom(r, "1.2.3.4:1234"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRateLimiter_BlocksExceedingLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newLimitedRouter(middleware.NewRateLimiter(ctx, 1, 2)) // burst=2

	for i := range 3 {
		w := doFrom(r, "1.2.3.4:1234")

		if i < 2 && w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if i == 2 && w.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_IndependentBuckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newLimitedRouter(middleware.NewRateLimiter(ctx, 1, 1))

	doFrom(r, "1.1.1.1:1000") // use IP A's token

	if w := doFrom(r, "2.2.2.2:1000"); w.Code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// High rate so even tiny elapsed time refills tokens.
	r := newLimitedRouter(middleware.NewRateLimiter(ctx, 1000000, 2))

	for range 2 {
		doFrom(r, "5.5.5.5:1000")
	}

	if w := doFrom(r, "5.5.5.5:1000"); w.Code != http.StatusOK {
		t.Fatalf("expected tokens to refill, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	expected := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	}

	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
