package cache

import (
	"fmt"
	"sync"
	"time"

	"newshub/internal/models"

	"github.com/patrickmn/go-cache"
)

// Manager wraps an in-process TTL cache for hot read responses. It is
// injected into the API server and the refresher rather than shared as
// package state, and invalidation is always explicit.
type Manager struct {
	cache *cache.Cache
	mu    sync.RWMutex
}

func NewManager(defaultTTL time.Duration) *Manager {
	return &Manager{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.Get(key)
}

func (m *Manager) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(key, value, ttl)
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key)
}

func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

// CategoryKey is the cache key for one category's list response.
func CategoryKey(cat models.Category) string {
	return fmt.Sprintf("articles:%s", cat)
}

// AllKey is the cache key for the aggregated list response.
const AllKey = "articles:all"

// InvalidateCategory drops the cached responses a write to the given
// category can make stale.
func (m *Manager) InvalidateCategory(cat models.Category) {
	m.Delete(CategoryKey(cat))
	m.Delete(AllKey)
}

// InvalidateAll drops every cached list response. Used after a refresh run.
func (m *Manager) InvalidateAll() {
	for _, cat := range models.Categories {
		m.Delete(CategoryKey(cat))
	}
	m.Delete(AllKey)
}
