package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Startup Ideas</title>
    <item>
      <title>Idea One</title>
      <link>https://example.com/ideas/1</link>
      <description>First idea summary</description>
      <category>ai</category>
      <pubDate>Mon, 03 Mar 2025 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Idea Two</title>
      <link>https://example.com/ideas/2</link>
      <description>Second idea summary</description>
    </item>
    <item>
      <title>No Link Item</title>
      <description>Should be skipped</description>
    </item>
  </channel>
</rss>`

func testSourceConfig(url string) *Config {
	return &Config{
		Name: "test-source",
		URL:  url,
		Settings: ConfigSettings{
			Enabled:  true,
			MaxItems: 50,
			Timeout:  10,
		},
		Defaults: ConfigDefaults{
			Sector: "saas",
			Tags:   []string{"curated", "ai"},
		},
	}
}

func TestFetcher_Run_MapsFeedItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "IdeaOasis/1.0")

	candidates, err := fetcher.Run(context.Background(), testSourceConfig(server.URL))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates (link-less item skipped), got %d", len(candidates))
	}

	first := candidates[0]
	if first.SourceURL != "https://example.com/ideas/1" {
		t.Errorf("Unexpected source URL: %q", first.SourceURL)
	}
	if first.Title != "Idea One" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.Summary != "First idea summary" {
		t.Errorf("Unexpected summary: %q", first.Summary)
	}
	if first.Sector != "saas" {
		t.Errorf("Expected default sector applied, got %q", first.Sector)
	}
	if first.UploadedAt == nil {
		t.Error("Expected uploadedAt from pubDate")
	}

	// Default tags merge with item categories, duplicates dropped.
	if len(first.Tags) != 2 || first.Tags[0] != "curated" || first.Tags[1] != "ai" {
		t.Errorf("Unexpected merged tags: %v", first.Tags)
	}

	if candidates[1].UploadedAt != nil {
		t.Error("Expected nil uploadedAt without pubDate")
	}
}

func TestFetcher_Run_RespectsMaxItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeedXML))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "IdeaOasis/1.0")

	config := testSourceConfig(server.URL)
	config.Settings.MaxItems = 1

	candidates, err := fetcher.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected 1 candidate with max_items 1, got %d", len(candidates))
	}
}

func TestFetcher_Run_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "IdeaOasis/1.0")

	if _, err := fetcher.Run(context.Background(), testSourceConfig(server.URL)); err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}
}

func TestMergeTags(t *testing.T) {
	merged := mergeTags([]string{"a", "b"}, []string{"b", "c", ""})

	if len(merged) != 3 {
		t.Fatalf("Expected 3 merged tags, got %v", merged)
	}
	if merged[0] != "a" || merged[1] != "b" || merged[2] != "c" {
		t.Errorf("Unexpected merge order: %v", merged)
	}
}
