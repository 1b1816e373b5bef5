package security

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter stores rate limit information per IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	r        rate.Limit
	b        int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the rate limiter for the given key (IP address)
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.limiters[key] = limiter
	}

	return limiter
}

// Config holds security middleware configuration
type Config struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

// DefaultConfig returns default security configuration
func DefaultConfig() *Config {
	return &Config{
		EnableRateLimit:       true,
		RateLimitPerSecond:    10.0,
		RateLimitBurst:        20,
		EnableCORS:            true,
		AllowedOrigins:        []string{"*"}, // the front end is served from a different origin
		EnableSecurityHeaders: true,
		MaxRequestSize:        10 << 20, // 10MB
		EnableRequestID:       true,
	}
}

// Setup configures all security middleware on the router
func Setup(router *gin.Engine, config *Config) {
	if config == nil {
		config = DefaultConfig()
	}

	// Add request ID middleware
	if config.EnableRequestID {
		router.Use(requestid.New())
	}

	// Add security headers middleware
	if config.EnableSecurityHeaders {
		router.Use(secure.New(secure.Config{
			SSLRedirect:          false, // Set to true in production with HTTPS
			STSSeconds:           31536000,
			STSIncludeSubdomains: true,
			ContentTypeNosniff:   true,
			BrowserXssFilter:     true,
			ReferrerPolicy:       "strict-origin-when-cross-origin",
		}))
	}

	// Add CORS middleware; preflight OPTIONS requests are answered with 204
	if config.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = config.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
		corsConfig.ExposeHeaders = []string{"X-Request-ID"}
		router.Use(cors.New(corsConfig))
	}

	// Add rate limiting middleware
	if config.EnableRateLimit {
		limiter := NewRateLimiter(rate.Limit(config.RateLimitPerSecond), config.RateLimitBurst)
		router.Use(RateLimitMiddleware(limiter))
	}

	// Add request size limiting middleware
	router.Use(RequestSizeMiddleware(config.MaxRequestSize))
}

// RateLimitMiddleware implements rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		limiter := limiter.GetLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Request too large",
				"message": "Request body exceeds maximum allowed size",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getClientIP extracts the real client IP address
func getClientIP(c *gin.Context) string {
	// Check for forwarded headers (when behind proxy/load balancer)
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if commaIndex := strings.Index(ip, ","); commaIndex != -1 {
			return strings.TrimSpace(ip[:commaIndex])
		}
		return strings.TrimSpace(ip)
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// Fallback to remote address
	return c.ClientIP()
}
