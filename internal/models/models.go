package models

import (
	"fmt"
	"net/url"
)

// Category is one of the fixed article partitions. Each category maps to
// its own table in the content store; anything outside the set is rejected
// at the API boundary before it can reach a query.
type Category string

const (
	CategoryBusiness      Category = "business"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
)

// Categories lists every valid category in refresh processing order.
var Categories = []Category{
	CategoryBusiness,
	CategoryEntertainment,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
}

// ParseCategory validates a caller-supplied category string.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q, must be one of: %s", s, CategoryNames())
}

// Table returns the storage identifier for the category. Categories are the
// only values ever interpolated into SQL, so the mapping stays explicit.
func (c Category) Table() string {
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// CategoryNames returns the valid category names as a comma-separated string
// for error messages.
func CategoryNames() string {
	names := ""
	for i, c := range Categories {
		if i > 0 {
			names += ", "
		}
		names += string(c)
	}
	return names
}

// Article is the public article shape returned by the worker's read
// endpoints. Source is derived from the URL hostname, not stored.
type Article struct {
	ID          int64    `json:"id"`
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	URLToImage  string   `json:"urlToImage"`
	PublishedAt string   `json:"publishedAt"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Language    string   `json:"language,omitempty"`
	Likes       int      `json:"likes"`
	LikedBy     []string `json:"liked_by"`
	Category    string   `json:"category,omitempty"`
}

// ArticleList is the envelope for the list endpoints.
type ArticleList struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// NewArticle holds the effective fields of an upstream item about to be
// inserted during a refresh run, after fallback defaults are applied.
type NewArticle struct {
	Title       string
	Description string
	URL         string
	URLToImage  string
	PublishedAt string
	Language    string
}

// FeedItem is one upstream feed entry as served by the feed API.
type FeedItem struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	PubDate      string `json:"pubdate"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	Category     string `json:"category"`
}

// RefreshResult reports the outcome of one refresh run. Success is true iff
// no error was recorded anywhere in the run.
type RefreshResult struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// LikeState is the response of the like toggle endpoint.
type LikeState struct {
	Likes   int      `json:"likes"`
	LikedBy []string `json:"liked_by"`
}

// SourceFromURL derives the display source from an article URL. Absent or
// unparseable URLs yield "unknown" rather than an error.
func SourceFromURL(rawURL string) string {
	if rawURL == "" {
		return "unknown"
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
