package extractor

import (
	"context"
	"net/http"
	"strconv"

	"newshub/internal/config"
	"newshub/internal/security"

	"github.com/gin-gonic/gin"
)

// Server exposes the extraction pipeline over HTTP.
type Server struct {
	router  *gin.Engine
	service *Service
	port    int
}

func NewServer(service *Service, cfg *config.Config) *Server {
	router := gin.Default()

	security.Setup(router, &security.Config{
		EnableRateLimit:       cfg.Security.EnableRateLimit,
		RateLimitPerSecond:    cfg.Security.RateLimitPerSecond,
		RateLimitBurst:        cfg.Security.RateLimitBurst,
		EnableCORS:            cfg.Security.EnableCORS,
		AllowedOrigins:        cfg.Security.AllowedOrigins,
		EnableSecurityHeaders: cfg.Security.EnableSecurityHeaders,
		MaxRequestSize:        cfg.Security.MaxRequestSize,
		EnableRequestID:       cfg.Security.EnableRequestID,
	})

	server := &Server{
		router:  router,
		service: service,
		port:    cfg.ExtractorPort,
	}

	router.POST("/extract-content", server.extractContent)
	router.GET("/active", server.active)

	return server
}

func (s *Server) Start() error {
	return s.router.Run(":" + strconv.Itoa(s.port))
}

// StartWithContext runs the server until the context is canceled.
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(s.port),
		Handler: s.router,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

func (s *Server) extractContent(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid URL is required"})
		return
	}

	result, err := s.service.Extract(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid URL is required"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) active(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API is Active"})
}
