package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newshub/internal/models"
)

// Fetcher retrieves the upstream article list for one category.
type Fetcher interface {
	FetchCategory(ctx context.Context, cat models.Category) ([]models.FeedItem, error)
}

// Client is an HTTP client for the upstream feed endpoint. The endpoint
// serves GET /{category} as a JSON list of feed items.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchCategory(ctx context.Context, cat models.Category) ([]models.FeedItem, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, cat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request for %s: %v", cat, err)
	}
	req.Header.Set("User-Agent", "newshub/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request for %s failed: %v", cat, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response for %s: %v", cat, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed request for %s failed with status %d: %s", cat, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// The response must be a JSON list; anything else is an error for this
	// category's refresh.
	var items []models.FeedItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("invalid feed response for %s: %v", cat, err)
	}

	return items, nil
}
