package feedapi

import (
	"context"
	"net/http"
	"strconv"

	"newshub/internal/cache"
	"newshub/internal/config"
	"newshub/internal/models"
	"newshub/internal/security"

	"github.com/gin-gonic/gin"
)

// Server exposes the per-category feed lists over HTTP.
type Server struct {
	router       *gin.Engine
	aggregator   *Aggregator
	cacheManager *cache.Manager
	port         int
}

func NewServer(agg *Aggregator, cacheManager *cache.Manager, cfg *config.Config) *Server {
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
		router:       router,
		aggregator:   agg,
		cacheManager: cacheManager,
		port:         cfg.FeedAPIPort,
	}

	router.GET("/health", server.healthCheck)
	for _, cat := range models.Categories {
		category := cat
		router.GET("/"+category.String(), func(c *gin.Context) {
			server.getCategory(c, category)
		})
	}

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

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "newshub-feedapi",
	})
}

func (s *Server) getCategory(c *gin.Context, cat models.Category) {
	cacheKey := cache.CategoryKey(cat)
	if cached, found := s.cacheManager.Get(cacheKey); found {
		if items, ok := cached.([]models.FeedItem); ok {
			c.JSON(http.StatusOK, items)
			return
		}
	}

	items, err := s.aggregator.FetchCategory(c.Request.Context(), cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.cacheManager.Set(cacheKey, items, 0)
	c.JSON(http.StatusOK, items)
}
