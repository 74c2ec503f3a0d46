package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ideaoasis/ideaoasis/app/ideas"
)

// Fetcher pulls a source feed and maps its entries to raw ingestion
// candidates. The source stays an external data provider: no page
// scraping, only the structured feed payload is consumed.
type Fetcher struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	userAgent  string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		userAgent:  userAgent,
	}
}

func (f *Fetcher) Run(ctx context.Context, config *Config) ([]ideas.Candidate, error) {
	data, err := f.fetch(ctx, config)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse source feed: %w", err)
	}

	candidates := make([]ideas.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		candidate := ideas.Candidate{
			SourceURL:     item.Link,
			Title:         item.Title,
			Summary:       item.Description,
			Sector:        config.Defaults.Sector,
			TargetUser:    config.Defaults.TargetUser,
			BusinessModel: config.Defaults.BusinessModel,
			Tags:          mergeTags(config.Defaults.Tags, item.Categories),
		}

		if item.PublishedParsed != nil {
			published := item.PublishedParsed.UTC()
			candidate.UploadedAt = &published
		}

		candidates = append(candidates, candidate)
		if len(candidates) == config.Settings.MaxItems {
			break
		}
	}

	return candidates, nil
}

func (f *Fetcher) fetch(ctx context.Context, config *Config) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func mergeTags(defaults, categories []string) []string {
	seen := make(map[string]bool, len(defaults)+len(categories))
	var merged []string

	for _, tag := range append(append([]string{}, defaults...), categories...) {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		merged = append(merged, tag)
	}

	return merged
}
