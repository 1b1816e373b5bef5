package extractor

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ExtractRequest is the extraction input. Only the URL is required; title
// and description feed the summary fallback when the page yields nothing.
type ExtractRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractResult is the extraction output. Content and Summary may both be
// empty on total failure; callers store whatever comes back.
type ExtractResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
}

// Summarizer produces a short natural-language summary of article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Service runs the scrape-clean-summarize pipeline: fetch the page, strip
// boilerplate, extract the main content, and summarize it.
type Service struct {
	httpClient *http.Client
	summarizer Summarizer
	converter  *md.Converter
}

func NewService(fetchTimeout time.Duration, summarizer Summarizer) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: fetchTimeout},
		summarizer: summarizer,
		converter:  md.NewConverter("", true, nil),
	}
}

// boilerplateSelectors are removed from the page before content extraction.
var boilerplateSelectors = []string{
	"iframe",
	"script",
	"style",
	".ad",
	".ads",
	".advert",
	".banner",
	".popup",
	"[id*='ad-']",
	"[class*='ad-']",
	"[id*='banner']",
	"[class*='banner']",
	"[id*='popup']",
	"[class*='popup']",
	"[id*='gateway']",
	"[class*='gateway']",
}

// contentFallbacks are tried in order when readability extracts nothing.
var contentFallbacks = []string{
	"main",
	"article",
	"section[name='articleBody']",
	"#content",
	".content",
	".main-content",
	"body",
}

var whitespaceRE = regexp.MustCompile(`\s+`)
var blankLinesRE = regexp.MustCompile(`\n{3,}`)

// Extract runs the pipeline for one request. It returns an error only for
// an invalid URL; fetch and summarization failures degrade to empty fields.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	if !strings.HasPrefix(req.URL, "http") {
		return nil, fmt.Errorf("valid URL is required")
	}

	pageURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("valid URL is required")
	}

	result := &ExtractResult{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
	}

	html, err := s.fetchPage(ctx, req.URL)
	if err != nil {
		log.Printf("Warning: failed to fetch %s: %v", req.URL, err)
	} else {
		result.Content = s.extractContent(html, pageURL)
	}

	// Summarize the extracted content, or fall back to the metadata the
	// caller provided when the page yielded nothing.
	promptSource := result.Content
	if promptSource == "" {
		promptSource = fmt.Sprintf("Title: %s\nDescription: %s", req.Title, req.Description)
	}

	summary, err := s.summarizer.Summarize(ctx, promptSource)
	if err != nil {
		log.Printf("Warning: summarization failed for %s: %v", req.URL, err)
	} else {
		result.Summary = strings.TrimSpace(summary)
	}

	return result, nil
}

func (s *Service) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}

	// Some news sites reject requests without browser-like headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %v", err)
	}

	return string(body), nil
}

// extractContent strips boilerplate, runs readability over the cleaned
// document, and degrades to the first matching content region (ultimately
// whole-page text) when readability finds nothing.
func (s *Service) extractContent(html string, pageURL *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("Warning: failed to parse page %s: %v", pageURL, err)
		return ""
	}

	for _, selector := range boilerplateSelectors {
		doc.Find(selector).Remove()
	}

	cleaned, err := doc.Html()
	if err != nil {
		log.Printf("Warning: failed to serialize cleaned page %s: %v", pageURL, err)
		cleaned = html
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), pageURL)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		if text := s.htmlToText(article.Content); text != "" {
			return text
		}
	}

	for _, selector := range contentFallbacks {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if text := normalizeText(selection.Text()); text != "" {
			return text
		}
	}

	return ""
}

// htmlToText converts extracted HTML to readable plain text via markdown,
// keeping paragraph breaks instead of flattening everything to one line.
func (s *Service) htmlToText(html string) string {
	markdown, err := s.converter.ConvertString(html)
	if err != nil {
		log.Printf("Warning: failed to convert extracted content: %v", err)
		return ""
	}
	markdown = blankLinesRE.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown)
}

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}
