package feedapi

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"newshub/internal/models"

	"github.com/mmcdole/gofeed"
)

// Aggregator fetches the configured RSS sources for a category and maps
// their entries to the flat item shape the refresh worker consumes.
type Aggregator struct {
	parser       *gofeed.Parser
	sources      map[string][]string
	perSource    int
	fetchTimeout time.Duration
}

func New(sources map[string][]string, perSource int, fetchTimeout time.Duration) *Aggregator {
	return &Aggregator{
		parser:       gofeed.NewParser(),
		sources:      sources,
		perSource:    perSource,
		fetchTimeout: fetchTimeout,
	}
}

type sourceResult struct {
	URL   string
	Items []models.FeedItem
	Error error
}

// FetchCategory fetches all sources for a category in parallel and returns
// the combined item list, newest first. Individual source failures are
// logged and skipped; the category fails only when it has no sources.
func (a *Aggregator) FetchCategory(ctx context.Context, cat models.Category) ([]models.FeedItem, error) {
	urls, ok := a.sources[cat.String()]
	if !ok || len(urls) == 0 {
		return nil, fmt.Errorf("no feed sources configured for category '%s'", cat)
	}

	var wg sync.WaitGroup
	results := make(chan sourceResult, len(urls))

	for _, url := range urls {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()
			items, err := a.fetchSource(ctx, feedURL, cat)
			results <- sourceResult{URL: feedURL, Items: items, Error: err}
		}(url)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	timeout := time.After(a.fetchTimeout)
	items := []models.FeedItem{}

	for {
		select {
		case result, ok := <-results:
			if !ok {
				sortByPubDate(items)
				return items, nil
			}
			if result.Error != nil {
				log.Printf("Error fetching feed %s: %v", result.URL, result.Error)
			} else {
				items = append(items, result.Items...)
			}
		case <-timeout:
			log.Printf("Timeout waiting for feed results for %s", cat)
			sortByPubDate(items)
			return items, nil
		}
	}
}

func (a *Aggregator) fetchSource(ctx context.Context, feedURL string, cat models.Category) ([]models.FeedItem, error) {
	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %v", err)
	}

	entries := feed.Items
	if len(entries) > a.perSource {
		entries = entries[:a.perSource]
	}

	items := make([]models.FeedItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, models.FeedItem{
			Title:        entry.Title,
			Link:         entry.Link,
			PubDate:      entryPubDate(entry),
			Description:  cleanDescription(entry.Description),
			ThumbnailURL: entryThumbnail(entry),
			Category:     cat.String(),
		})
	}

	return items, nil
}

// entryPubDate normalizes the entry timestamp to RFC 3339, passing the raw
// value through when the feed's date does not parse.
func entryPubDate(entry *gofeed.Item) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return entry.Published
}

var imgSrcRE = regexp.MustCompile(`<img[^>]+src="([^"]+)"`)
var tagRE = regexp.MustCompile(`<.*?>`)

// entryThumbnail pulls a thumbnail from the media RSS extensions, the feed
// item image, or the first <img> embedded in the description.
func entryThumbnail(entry *gofeed.Item) string {
	if media, ok := entry.Extensions["media"]; ok {
		for _, key := range []string{"thumbnail", "content"} {
			for _, ext := range media[key] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}

	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}

	if match := imgSrcRE.FindStringSubmatch(entry.Description); match != nil {
		return match[1]
	}

	return ""
}

// cleanDescription strips markup from feed descriptions. Some sources wrap
// the real text after a trailing anchor tag; take what follows it.
func cleanDescription(raw string) string {
	if idx := strings.LastIndex(raw, "</a>"); idx != -1 {
		raw = raw[idx+len("</a>"):]
	}
	return strings.TrimSpace(tagRE.ReplaceAllString(raw, ""))
}

func sortByPubDate(items []models.FeedItem) {
	// ISO-8601 strings order chronologically as text.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PubDate > items[j].PubDate
	})
}
