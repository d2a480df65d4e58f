package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://news.example.com/best"
kind: "site"

settings:
  enabled: true
  pages: 2
  poll_interval: 3600
  timeout: 10
  min_content_length: 300
  politeness_delay: 250
  upsert_policy: "update"
`

	err := os.WriteFile(filepath.Join(tempDir, "example.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(tempDir)
	sources, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(sources))
	}

	source := sources["example"]
	if source == nil {
		t.Fatal("Expected source named 'example' derived from filename")
	}

	if source.URL != "https://news.example.com/best" {
		t.Errorf("Expected URL 'https://news.example.com/best', got '%s'", source.URL)
	}
	if source.Kind != KindSite {
		t.Errorf("Expected kind 'site', got '%s'", source.Kind)
	}
	if !source.Settings.Enabled {
		t.Error("Expected source to be enabled")
	}
	if source.Settings.Pages != 2 {
		t.Errorf("Expected page budget 2, got %d", source.Settings.Pages)
	}
	if source.Settings.GetPollInterval() != 3600*time.Second {
		t.Errorf("Expected poll interval 3600s, got %v", source.Settings.GetPollInterval())
	}
	if source.Settings.MinContentLength != 300 {
		t.Errorf("Expected min content length 300, got %d", source.Settings.MinContentLength)
	}
	if source.Settings.GetPolitenessDelay() != 250*time.Millisecond {
		t.Errorf("Expected politeness delay 250ms, got %v", source.Settings.GetPolitenessDelay())
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://news.example.com/best"
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "minimal.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(tempDir)
	sources, err := loader.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	source := sources["minimal"]
	if source == nil {
		t.Fatal("Expected source named 'minimal'")
	}

	if source.Kind != KindSite {
		t.Errorf("Expected default kind 'site', got '%s'", source.Kind)
	}
	if source.Settings.Pages != 3 {
		t.Errorf("Expected default page budget 3, got %d", source.Settings.Pages)
	}
	if source.Settings.PollInterval != 1800 {
		t.Errorf("Expected default poll interval 1800, got %d", source.Settings.PollInterval)
	}
	if source.Settings.Timeout != 15 {
		t.Errorf("Expected default timeout 15, got %d", source.Settings.Timeout)
	}
	if source.Settings.MinContentLength != 200 {
		t.Errorf("Expected default min content length 200, got %d", source.Settings.MinContentLength)
	}
	if source.Settings.PolitenessDelay != 500 {
		t.Errorf("Expected default politeness delay 500, got %d", source.Settings.PolitenessDelay)
	}
	if source.Settings.UpsertPolicy != PolicyUpdate {
		t.Errorf("Expected default upsert policy 'update', got '%s'", source.Settings.UpsertPolicy)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing url",
			content: `
kind: "site"
settings:
  enabled: true
`,
		},
		{
			name: "bad kind",
			content: `
url: "https://news.example.com/best"
kind: "scrape"
`,
		},
		{
			name: "bad upsert policy",
			content: `
url: "https://news.example.com/best"
settings:
  upsert_policy: "replace"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			err := os.WriteFile(filepath.Join(tempDir, "bad.yml"), []byte(tt.content), 0644)
			if err != nil {
				t.Fatal(err)
			}

			loader := NewLoader(tempDir)
			if _, err := loader.LoadAll(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	loader := NewLoader("/nonexistent/path")
	sources, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("Expected no error for missing directory, got %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("Expected empty source map, got %d entries", len(sources))
	}
}
