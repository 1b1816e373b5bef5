package refresher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"newshub/internal/cache"
	"newshub/internal/feed"
	"newshub/internal/models"
	"newshub/internal/storage"

	"github.com/pemistahl/lingua-go"
)

// ErrAlreadyRunning is returned when a refresh is requested while another
// run holds the advisory lock. Overlapping runs would race on the
// per-category title sets, so they are rejected instead.
var ErrAlreadyRunning = errors.New("refresh already in progress")

// Refresher reconciles each category's table with the upstream feed and
// advances the refresh counter.
type Refresher struct {
	store        storage.Store
	feeds        feed.Fetcher
	cacheManager *cache.Manager
	detector     lingua.LanguageDetector
	retention    time.Duration
	delay        time.Duration
	mu           sync.Mutex
}

func New(store storage.Store, feeds feed.Fetcher, cacheManager *cache.Manager, retention, delay time.Duration) *Refresher {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Chinese, lingua.Russian, lingua.Italian, lingua.Portuguese,
			lingua.Hindi, lingua.Japanese, lingua.Korean, lingua.Arabic,
		).
		Build()

	return &Refresher{
		store:        store,
		feeds:        feeds,
		cacheManager: cacheManager,
		detector:     detector,
		retention:    retention,
		delay:        delay,
	}
}

// Run executes one refresh over every category. It returns ErrAlreadyRunning
// if another run is in flight; otherwise the result carries any per-category
// errors and Success reflects whether the list is empty.
func (r *Refresher) Run(ctx context.Context) (*models.RefreshResult, error) {
	if !r.mu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer r.mu.Unlock()

	result := r.run(ctx)

	if r.cacheManager != nil {
		r.cacheManager.InvalidateAll()
	}

	return result, nil
}

func (r *Refresher) run(ctx context.Context) *models.RefreshResult {
	var errs []string

	refreshCount, err := r.store.RefreshCount()
	if err != nil {
		log.Printf("Error fetching refresh count: %v", err)
		return &models.RefreshResult{
			Success: false,
			Errors:  []string{fmt.Sprintf("failed to fetch refresh count: %v", err)},
		}
	}
	refreshCount++

	// A missing table aborts the whole run with no partial effect.
	if err := r.store.CheckTables(); err != nil {
		log.Printf("Table precheck failed: %v", err)
		errs = append(errs, err.Error())
		return &models.RefreshResult{Success: false, Errors: errs}
	}

	cutoff := time.Now().UTC().Add(-r.retention).Format(time.RFC3339)

	for _, cat := range models.Categories {
		errs = append(errs, r.refreshCategory(ctx, cat, cutoff)...)

		// Inter-category delay to respect upstream rate limits.
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			errs = append(errs, fmt.Sprintf("refresh canceled: %v", ctx.Err()))
			return &models.RefreshResult{Success: false, Errors: errs}
		}
	}

	// The metadata write is attempted regardless of per-category errors.
	lastRefresh := time.Now().UTC().Format(time.RFC3339)
	if err := r.store.SetRefreshState(refreshCount, lastRefresh); err != nil {
		log.Printf("Error updating refresh count and last_refresh: %v", err)
		errs = append(errs, err.Error())
		return &models.RefreshResult{Success: false, Errors: errs}
	}

	return &models.RefreshResult{Success: len(errs) == 0, Errors: errs}
}

// refreshCategory ingests upstream items for one category and prunes stale
// rows. Per-row failures are collected, never fatal for the category loop.
func (r *Refresher) refreshCategory(ctx context.Context, cat models.Category, cutoff string) []string {
	var errs []string

	items, err := r.feeds.FetchCategory(ctx, cat)
	if err != nil {
		log.Printf("Error fetching or parsing news for %s: %v", cat, err)
		errs = append(errs, fmt.Sprintf("error fetching or parsing news for %s: %v", cat, err))
		return errs
	}

	if len(items) == 0 {
		log.Printf("No articles returned for %s", cat)
		return errs
	}

	existingTitles, err := r.store.ExistingTitles(cat)
	if err != nil {
		log.Printf("Error fetching existing titles for %s: %v", cat, err)
		errs = append(errs, err.Error())
		return errs
	}

	inserted := 0
	for _, item := range items {
		article := effectiveArticle(item)

		if article.PublishedAt < cutoff {
			log.Printf("Skipping stale article in %s: %q (%s)", cat, article.Title, article.PublishedAt)
			continue
		}
		if _, dup := existingTitles[article.Title]; dup {
			log.Printf("Skipping duplicate article in %s: %q", cat, article.Title)
			continue
		}

		article.Language = r.detectLanguage(article.Title + " " + article.Description)

		if err := r.store.InsertArticle(cat, article); err != nil {
			log.Printf("Error inserting article into %s: %v", cat, err)
			errs = append(errs, err.Error())
			continue
		}
		// Guard against duplicates later in the same upstream batch.
		existingTitles[article.Title] = struct{}{}
		inserted++
	}

	removed, err := r.store.PruneOlderThan(cat, cutoff)
	if err != nil {
		log.Printf("Error removing old entries from %s: %v", cat, err)
		errs = append(errs, err.Error())
	} else if removed > 0 {
		log.Printf("Removed %d old entries from %s older than %s", removed, cat, cutoff)
	}

	log.Printf("Refreshed %s: %d inserted, %d pruned", cat, inserted, removed)
	return errs
}

// effectiveArticle applies the documented fallback defaults for absent
// upstream fields and normalizes the publication timestamp.
func effectiveArticle(item models.FeedItem) models.NewArticle {
	article := models.NewArticle{
		Title:       item.Title,
		Description: item.Description,
		URL:         item.Link,
		URLToImage:  item.ThumbnailURL,
		PublishedAt: normalizeTimestamp(item.PubDate),
	}
	if article.Title == "" {
		article.Title = "no title"
	}
	if article.Description == "" {
		article.Description = "no description"
	}
	if article.URL == "" {
		article.URL = "#"
	}
	if article.URLToImage == "" {
		article.URLToImage = "#"
	}
	return article
}

// normalizeTimestamp reformats a parseable upstream timestamp to UTC
// RFC 3339 so stored values compare correctly as text. Unparseable values
// pass through unchanged; empty values default to ingestion time.
func normalizeTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}

func (r *Refresher) detectLanguage(text string) string {
	if lang, ok := r.detector.DetectLanguageOf(text); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}
	return "en"
}
