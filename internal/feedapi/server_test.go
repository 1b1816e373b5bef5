package feedapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newshub/internal/cache"
	"newshub/internal/config"
	"newshub/internal/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestServer_HealthCheck(t *testing.T) {
	agg := New(map[string][]string{}, 10, time.Second)
	server := NewServer(agg, cache.NewManager(time.Minute), &config.Config{FeedAPIPort: 8081})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestServer_GetCategory(t *testing.T) {
	var hits int32
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer feedServer.Close()

	agg := New(map[string][]string{
		"science": {feedServer.URL},
	}, 10, 5*time.Second)
	server := NewServer(agg, cache.NewManager(time.Minute), &config.Config{FeedAPIPort: 8081})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/science", nil)
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var items []models.FeedItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	// Repeat requests are served from cache
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/science", nil)
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", hits)
	}
}

func TestServer_GetCategoryNoSources(t *testing.T) {
	agg := New(map[string][]string{}, 10, time.Second)
	server := NewServer(agg, cache.NewManager(time.Minute), &config.Config{FeedAPIPort: 8081})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/business", nil)
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for unconfigured category, got %d", w.Code)
	}
}

func TestServer_UnknownCategoryPath(t *testing.T) {
	agg := New(map[string][]string{}, 10, time.Second)
	server := NewServer(agg, cache.NewManager(time.Minute), &config.Config{FeedAPIPort: 8081})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/weather", nil)
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
