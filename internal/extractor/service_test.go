package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeSummarizer records its input and returns a canned summary.
type fakeSummarizer struct {
	summary string
	err     error
	input   string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.input = text
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Quarterly results beat expectations</title></head>
<body>
	<script>trackVisitor();</script>
	<div class="banner">Subscribe now!</div>
	<article>
		<h1>Quarterly results beat expectations</h1>
		<p>The company reported revenue growth of twelve percent over the
		previous quarter, driven by strong demand in its cloud division.
		Analysts had expected a far more modest increase given the broader
		slowdown in enterprise spending this year.</p>
		<p>Executives attributed the performance to early investments in
		automation and said they expect the trend to continue through the
		remainder of the fiscal year.</p>
	</article>
	<div class="ads">Buy things</div>
</body>
</html>`

func TestService_Extract(t *testing.T) {
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articlePage))
	}))
	defer pageServer.Close()

	summarizer := &fakeSummarizer{summary: "A short summary."}
	service := NewService(5*time.Second, summarizer)

	result, err := service.Extract(context.Background(), ExtractRequest{
		URL:         pageServer.URL,
		Title:       "Quarterly results beat expectations",
		Description: "Revenue up twelve percent",
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Summary != "A short summary." {
		t.Errorf("Expected summary from summarizer, got '%s'", result.Summary)
	}
	if !strings.Contains(result.Content, "revenue growth of twelve percent") {
		t.Errorf("Expected article text in content, got: %s", result.Content)
	}
	if strings.Contains(result.Content, "trackVisitor") {
		t.Error("Expected script content stripped from extraction")
	}
	if strings.Contains(result.Content, "Subscribe now") {
		t.Error("Expected banner boilerplate stripped from extraction")
	}

	// The summarizer receives the extracted text, not the raw page
	if !strings.Contains(summarizer.input, "revenue growth") {
		t.Errorf("Expected extracted text passed to summarizer, got: %s", summarizer.input)
	}
}

func TestService_ExtractInvalidURL(t *testing.T) {
	service := NewService(time.Second, &fakeSummarizer{})

	for _, badURL := range []string{"", "ftp://example.com/file", "not a url"} {
		if _, err := service.Extract(context.Background(), ExtractRequest{URL: badURL}); err == nil {
			t.Errorf("Expected error for URL %q", badURL)
		}
	}
}

func TestService_ExtractUnreachablePage(t *testing.T) {
	// A server that immediately closes gives a reliable fetch failure
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	pageServer.Close()

	summarizer := &fakeSummarizer{summary: "Summary from metadata."}
	service := NewService(time.Second, summarizer)

	result, err := service.Extract(context.Background(), ExtractRequest{
		URL:         pageServer.URL,
		Title:       "Unreachable story",
		Description: "The page is gone",
	})
	if err != nil {
		t.Fatalf("Expected fetch failure to degrade, got error: %v", err)
	}

	if result.Content != "" {
		t.Errorf("Expected empty content for unreachable page, got '%s'", result.Content)
	}
	if result.Summary != "Summary from metadata." {
		t.Errorf("Expected summary generated from metadata, got '%s'", result.Summary)
	}

	// The fallback prompt carries the caller-provided metadata
	if !strings.Contains(summarizer.input, "Unreachable story") {
		t.Errorf("Expected title in fallback prompt, got: %s", summarizer.input)
	}
	if !strings.Contains(summarizer.input, "The page is gone") {
		t.Errorf("Expected description in fallback prompt, got: %s", summarizer.input)
	}
}

func TestService_ExtractSummarizerFailure(t *testing.T) {
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articlePage))
	}))
	defer pageServer.Close()

	summarizer := &fakeSummarizer{err: errors.New("model unavailable")}
	service := NewService(5*time.Second, summarizer)

	result, err := service.Extract(context.Background(), ExtractRequest{URL: pageServer.URL})
	if err != nil {
		t.Fatalf("Expected summarizer failure to degrade, got error: %v", err)
	}
	if result.Summary != "" {
		t.Errorf("Expected empty summary on failure, got '%s'", result.Summary)
	}
	if result.Content == "" {
		t.Error("Expected content despite summarizer failure")
	}
}

func TestService_ExtractNonHTTPStatus(t *testing.T) {
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer pageServer.Close()

	summarizer := &fakeSummarizer{summary: "fallback"}
	service := NewService(time.Second, summarizer)

	result, err := service.Extract(context.Background(), ExtractRequest{
		URL:   pageServer.URL,
		Title: "Removed story",
	})
	if err != nil {
		t.Fatalf("Expected error status to degrade, got error: %v", err)
	}
	if result.Content != "" {
		t.Errorf("Expected empty content on error status, got '%s'", result.Content)
	}
}

func TestNormalizeText(t *testing.T) {
	got := normalizeText("  spread \n\t across   lines  ")
	if got != "spread across lines" {
		t.Errorf("Expected collapsed whitespace, got '%s'", got)
	}
}
