package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newshub/internal/config"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, summarizer Summarizer) *Server {
	t.Helper()
	service := NewService(5*time.Second, summarizer)
	return NewServer(service, &config.Config{ExtractorPort: 8082})
}

func TestServer_Active(t *testing.T) {
	server := newTestServer(t, &fakeSummarizer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/active", nil)
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["message"] != "API is Active" {
		t.Errorf("Expected active message, got %v", response)
	}
}

func TestServer_ExtractContent(t *testing.T) {
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articlePage))
	}))
	defer pageServer.Close()

	server := newTestServer(t, &fakeSummarizer{summary: "Short version."})

	payload, _ := json.Marshal(ExtractRequest{URL: pageServer.URL, Title: "Quarterly results"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/extract-content", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result ExtractResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Summary != "Short version." {
		t.Errorf("Expected summary 'Short version.', got '%s'", result.Summary)
	}
	if result.URL != pageServer.URL {
		t.Errorf("Expected request URL echoed back, got '%s'", result.URL)
	}
}

func TestServer_ExtractContentValidation(t *testing.T) {
	server := newTestServer(t, &fakeSummarizer{})

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing url", `{"title":"no url"}`},
		{"non-http url", `{"url":"file:///etc/passwd"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/extract-content", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			server.router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestClient_Extract(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract-content" {
			http.NotFound(w, r)
			return
		}
		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ExtractResult{
			URL:     req.URL,
			Summary: "remote summary",
			Content: "remote content",
		})
	}))
	defer remote.Close()

	client := NewClient(remote.URL, 5*time.Second)
	result, err := client.Extract(context.Background(), ExtractRequest{URL: "https://news.example.com/story"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Summary != "remote summary" {
		t.Errorf("Expected 'remote summary', got '%s'", result.Summary)
	}
	if result.URL != "https://news.example.com/story" {
		t.Errorf("Expected URL echoed back, got '%s'", result.URL)
	}
}

func TestClient_ExtractRemoteError(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer remote.Close()

	client := NewClient(remote.URL, time.Second)
	if _, err := client.Extract(context.Background(), ExtractRequest{URL: "https://news.example.com/story"}); err == nil {
		t.Error("Expected error for remote failure")
	}
}
