package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newshub/internal/models"
)

func TestClient_FetchCategory(t *testing.T) {
	items := []models.FeedItem{
		{
			Title:        "Probe lands",
			Link:         "https://science.example.com/probe",
			PubDate:      "2026-03-02T10:00:00Z",
			Description:  "The probe touched down.",
			ThumbnailURL: "https://science.example.com/img/probe.jpg",
			Category:     "science",
		},
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/science" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(items)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)
	got, err := client.FetchCategory(context.Background(), models.CategoryScience)
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(got))
	}
	if got[0].Title != "Probe lands" {
		t.Errorf("Expected title 'Probe lands', got '%s'", got[0].Title)
	}
	if got[0].PubDate != "2026-03-02T10:00:00Z" {
		t.Errorf("Unexpected pubdate: '%s'", got[0].PubDate)
	}
}

func TestClient_FetchCategoryErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/business":
			http.Error(w, "upstream down", http.StatusBadGateway)
		case "/health":
			// An object instead of the expected list
			w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)

	if _, err := client.FetchCategory(context.Background(), models.CategoryBusiness); err == nil {
		t.Error("Expected error for upstream failure status")
	}
	if _, err := client.FetchCategory(context.Background(), models.CategoryHealth); err == nil {
		t.Error("Expected error for non-list response")
	}
}

func TestClient_FetchCategoryEmptyList(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)
	got, err := client.FetchCategory(context.Background(), models.CategorySports)
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty list, got %d items", len(got))
	}
}
