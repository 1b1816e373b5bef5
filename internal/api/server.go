package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"newshub/internal/cache"
	"newshub/internal/config"
	"newshub/internal/extractor"
	"newshub/internal/models"
	"newshub/internal/poller"
	"newshub/internal/refresher"
	"newshub/internal/security"
	"newshub/internal/storage"
	"newshub/internal/web"

	"github.com/gin-gonic/gin"
)

// Extractor is the remote extraction call the summary endpoint depends on.
type Extractor interface {
	Extract(ctx context.Context, req extractor.ExtractRequest) (*extractor.ExtractResult, error)
}

type Server struct {
	router        *gin.Engine
	store         storage.Store
	cacheManager  *cache.Manager
	refresher     *refresher.Refresher
	poller        *poller.Poller
	extractor     Extractor
	swaggerServer *web.SwaggerServer
	maxAllResults int
	port          int
}

func NewServer(store storage.Store, cacheManager *cache.Manager, r *refresher.Refresher, p *poller.Poller, ext Extractor, cfg *config.Config) *Server {
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
		router:        router,
		store:         store,
		cacheManager:  cacheManager,
		refresher:     r,
		poller:        p,
		extractor:     ext,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
		maxAllResults: cfg.MaxAllResults,
		port:          cfg.Port,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/categories", s.getCategories)
	s.router.GET("/all", s.getAllArticles)
	s.router.GET("/lastupdate", s.getLastUpdate)
	s.router.GET("/likecnt", s.toggleLike)
	s.router.GET("/summary", s.getSummary)
	s.router.GET("/refresh", s.refresh)

	// One route per category; anything outside the fixed set falls through
	// to 404 without ever reaching a query.
	for _, cat := range s.categories() {
		category := cat
		s.router.GET("/"+category.String(), func(c *gin.Context) {
			s.getCategoryArticles(c, category)
		})
	}

	s.swaggerServer.RegisterRoutes(s.router)
}

func (s *Server) categories() []models.Category {
	return models.Categories
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
		"status":        "healthy",
		"service":       "newshub-worker",
		"poller_active": s.poller.IsRunning(),
	})
}

func (s *Server) getCategories(c *gin.Context) {
	names := make([]string, 0, len(models.Categories))
	for _, cat := range models.Categories {
		names = append(names, cat.String())
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": names,
		"count":      len(names),
	})
}

// getCategoryArticles returns every retained row for one category, newest
// first.
func (s *Server) getCategoryArticles(c *gin.Context, cat models.Category) {
	cacheKey := cache.CategoryKey(cat)
	if cached, found := s.cacheManager.Get(cacheKey); found {
		if list, ok := cached.(*models.ArticleList); ok {
			c.JSON(http.StatusOK, list)
			return
		}
	}

	articles, err := s.store.ListArticles(cat)
	if err != nil {
		log.Printf("Error querying %s table: %v", cat, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch news for " + cat.String() + ": " + err.Error(),
		})
		return
	}

	list := &models.ArticleList{
		Status:       "ok",
		TotalResults: len(articles),
		Articles:     articles,
	}
	s.cacheManager.Set(cacheKey, list, 0)

	c.JSON(http.StatusOK, list)
}

// getAllArticles unions every category, newest first, capped.
func (s *Server) getAllArticles(c *gin.Context) {
	if cached, found := s.cacheManager.Get(cache.AllKey); found {
		if list, ok := cached.(*models.ArticleList); ok {
			c.JSON(http.StatusOK, list)
			return
		}
	}

	articles, err := s.store.ListAllArticles(s.maxAllResults)
	if err != nil {
		log.Printf("Error querying all articles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch all articles: " + err.Error(),
		})
		return
	}

	list := &models.ArticleList{
		Status:       "ok",
		TotalResults: len(articles),
		Articles:     articles,
	}
	s.cacheManager.Set(cache.AllKey, list, 0)

	c.JSON(http.StatusOK, list)
}

func (s *Server) getLastUpdate(c *gin.Context) {
	lastRefresh, err := s.store.LastRefresh()
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No last refresh timestamp found"})
		return
	}
	if err != nil {
		log.Printf("Error fetching last_refresh: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch last_refresh: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"last_refresh": lastRefresh})
}

// toggleLike adds or removes a like by the given username. It is an
// explicit toggle, not idempotent.
func (s *Server) toggleLike(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username parameter is required"})
		return
	}

	cat, id, ok := s.categoryAndID(c)
	if !ok {
		return
	}

	state, err := s.store.ToggleLike(cat, id, username)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if errors.Is(err, storage.ErrCorruptLikedBy) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse liked_by data"})
		return
	}
	if err != nil {
		log.Printf("Error toggling like for id %d in %s: %v", id, cat, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes: " + err.Error()})
		return
	}

	s.cacheManager.InvalidateCategory(cat)
	c.JSON(http.StatusOK, state)
}

// getSummary returns the article with its summary, generating and storing
// one through the extraction service the first time it is requested.
func (s *Server) getSummary(c *gin.Context) {
	cat, id, ok := s.categoryAndID(c)
	if !ok {
		return
	}

	article, err := s.store.GetArticle(cat, id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if errors.Is(err, storage.ErrCorruptLikedBy) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse liked_by data"})
		return
	}
	if err != nil {
		log.Printf("Error querying article id %d in %s: %v", id, cat, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch article: " + err.Error()})
		return
	}

	// Cache hit: the summary is generated at most once and never replaced.
	if strings.TrimSpace(article.Summary) != "" {
		c.JSON(http.StatusOK, article)
		return
	}

	result, err := s.extractor.Extract(c.Request.Context(), extractor.ExtractRequest{
		URL:         article.URL,
		Title:       article.Title,
		Description: article.Description,
	})
	if err != nil {
		log.Printf("Error fetching summary for id %d in %s: %v", id, cat, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch summary: " + err.Error()})
		return
	}

	if err := s.store.SetSummary(cat, id, result.Summary, result.Content); err != nil {
		log.Printf("Error storing summary for id %d in %s: %v", id, cat, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store summary and content: " + err.Error()})
		return
	}
	log.Printf("Stored summary and content for article id %d in %s", id, cat)

	article.Summary = result.Summary
	article.Content = result.Content
	s.cacheManager.InvalidateCategory(cat)

	c.JSON(http.StatusOK, article)
}

// refresh triggers a full refresh run and surfaces the result in the
// response body.
func (s *Server) refresh(c *gin.Context) {
	result, err := s.refresher.Run(c.Request.Context())
	if errors.Is(err, refresher.ErrAlreadyRunning) {
		c.String(http.StatusConflict, "Refresh already in progress.")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "Errors occurred during refresh:\n"+err.Error())
		return
	}

	if !result.Success {
		c.String(http.StatusInternalServerError, "Errors occurred during refresh:\n"+strings.Join(result.Errors, "\n"))
		return
	}

	c.String(http.StatusOK, "News data refreshed successfully.")
}

// categoryAndID validates the category and numeric id query parameters
// shared by the single-article endpoints.
func (s *Server) categoryAndID(c *gin.Context) (models.Category, int64, bool) {
	rawCategory := c.Query("category")
	if rawCategory == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category parameter is required"})
		return "", 0, false
	}

	cat, err := models.ParseCategory(rawCategory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid category. Must be one of: " + models.CategoryNames(),
		})
		return "", 0, false
	}

	rawID := c.Query("id")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid numeric id parameter is required"})
		return "", 0, false
	}

	return cat, id, true
}
