package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(10), 5)

	// Same IP gets the same limiter
	ip1 := "192.168.1.1"
	limiter1 := limiter.GetLimiter(ip1)
	limiter2 := limiter.GetLimiter(ip1)

	if limiter1 != limiter2 {
		t.Error("Expected same limiter for same IP")
	}

	// Different IP gets a different limiter
	ip2 := "192.168.1.2"
	limiter3 := limiter.GetLimiter(ip2)

	if limiter1 == limiter3 {
		t.Error("Expected different limiters for different IPs")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("Expected non-nil config")
	}

	if !config.EnableRateLimit {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if config.RateLimitPerSecond != 10.0 {
		t.Errorf("Expected rate limit per second to be 10.0, got %f", config.RateLimitPerSecond)
	}

	if config.RateLimitBurst != 20 {
		t.Errorf("Expected rate limit burst to be 20, got %d", config.RateLimitBurst)
	}

	if !config.EnableCORS {
		t.Error("Expected CORS to be enabled by default")
	}

	if config.MaxRequestSize != 10<<20 {
		t.Errorf("Expected max request size to be 10MB, got %d", config.MaxRequestSize)
	}
}

func TestSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Nil config falls back to defaults
	router := gin.New()
	Setup(router, nil)

	// Disabled features are simply skipped
	router2 := gin.New()
	Setup(router2, &Config{
		EnableRateLimit:       false,
		EnableCORS:            false,
		EnableSecurityHeaders: false,
		EnableRequestID:       false,
		MaxRequestSize:        1024,
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Tight limit so the second request is rejected
	limiter := NewRateLimiter(rate.Limit(1), 1)
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected first request to pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected second request rate limited, got %d", w.Code)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestSizeMiddleware(10))
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/test", strings.NewReader("this body is larger than ten bytes"))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413 for oversized body, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/test", strings.NewReader("tiny"))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected small body to pass, got %d", w.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded single", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			router := gin.New()
			router.GET("/test", func(c *gin.Context) {
				got = getClientIP(c)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			router.ServeHTTP(w, req)

			if got != tc.want {
				t.Errorf("Expected IP '%s', got '%s'", tc.want, got)
			}
		})
	}
}
