package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"hnpulse/app/listing"
)

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		rawURL   string
		expected string
	}{
		{"https://sub.example.co.uk/x", "example.co.uk"},
		{"https://example.com/post", "example.com"},
		{"https://www.blog.example.com/a/b", "example.com"},
		{"https://EXAMPLE.ORG", "example.org"},
		{"http://127.0.0.1:8080/page", "127.0.0.1"},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.rawURL)
		if err != nil {
			t.Fatal(err)
		}
		if got := registrableDomain(u); got != tt.expected {
			t.Errorf("registrableDomain(%s): expected '%s', got '%s'", tt.rawURL, tt.expected, got)
		}
	}
}

func articlePage(words int) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Post</title></head><body><article><h1>Post</h1>`)
	for i := 0; i < words; i++ {
		b.WriteString("<p>Some reasonably long paragraph of article body text goes here.</p>")
	}
	b.WriteString(`</article></body></html>`)
	return b.String()
}

func TestRunNormalizesItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articlePage(20)))
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), "test", 5*time.Second, 200)

	item := listing.RawItem{
		ExternalID:   "41001",
		Rank:         2,
		Title:        "Post",
		URL:          server.URL + "/post",
		Score:        55,
		CommentCount: 12,
		Author:       "alice",
	}

	article, err := extractor.Run(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}

	if article.ExternalID != "41001" {
		t.Errorf("Expected external ID '41001', got '%s'", article.ExternalID)
	}
	if article.Title != "Post" {
		t.Errorf("Expected title 'Post', got '%s'", article.Title)
	}
	if article.Domain != "127.0.0.1" {
		t.Errorf("Expected host fallback domain, got '%s'", article.Domain)
	}
	if article.Score != 55 || article.CommentCount != 12 || article.Rank != 2 {
		t.Errorf("Metrics not carried over: %+v", article)
	}
	if article.ContentLength < 200 {
		t.Errorf("Expected content length above threshold, got %d", article.ContentLength)
	}
}

func TestRunFiltersThinContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articlePage(1)))
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), "test", 5*time.Second, 5000)

	item := listing.RawItem{ExternalID: "41002", URL: server.URL + "/thin"}

	_, err := extractor.Run(context.Background(), item)
	if err == nil {
		t.Fatal("Expected thin content to be rejected")
	}
	if !errors.Is(err, ErrContentTooShort) {
		t.Errorf("Expected ErrContentTooShort, got %v", err)
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Errorf("Expected *ExtractionError, got %T", err)
	}
}

func TestRunFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), "test", 5*time.Second, 200)

	_, err := extractor.Run(context.Background(), listing.RawItem{ExternalID: "41003", URL: server.URL})
	if err == nil {
		t.Fatal("Expected error for HTTP 404")
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected *ExtractionError, got %T", err)
	}
	if extractionErr.ExternalID != "41003" {
		t.Errorf("Expected external ID in error, got '%s'", extractionErr.ExternalID)
	}
}

func TestRunInvalidURL(t *testing.T) {
	extractor := NewExtractor(http.DefaultClient, "test", time.Second, 200)

	_, err := extractor.Run(context.Background(), listing.RawItem{ExternalID: "41004", URL: "::not a url"})
	if err == nil {
		t.Fatal("Expected error for invalid URL")
	}
}
