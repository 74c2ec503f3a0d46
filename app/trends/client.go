package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SignalSource resolves a keyword into a raw market signal. May fail or
// time out; callers are expected to degrade gracefully.
type SignalSource interface {
	Lookup(ctx context.Context, keyword string) (Signal, error)
}

var _ SignalSource = (*Client)(nil)

// Client talks to the external keyword-signal API.
type Client struct {
	endpoint  string
	apiKey    string
	userAgent string
	http      *http.Client
}

func NewClient(endpoint, apiKey, userAgent string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  endpoint,
		apiKey:    apiKey,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Lookup(ctx context.Context, keyword string) (Signal, error) {
	if c.endpoint == "" {
		return Signal{}, fmt.Errorf("keyword-signal source not configured")
	}

	lookupURL := fmt.Sprintf("%s/v1/keywords?q=%s", c.endpoint, url.QueryEscape(keyword))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return Signal{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Signal{}, fmt.Errorf("failed to fetch keyword signal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Signal{}, fmt.Errorf("keyword signal HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var signal Signal
	if err := json.NewDecoder(resp.Body).Decode(&signal); err != nil {
		return Signal{}, fmt.Errorf("failed to decode keyword signal: %w", err)
	}

	if signal.Keyword == "" {
		signal.Keyword = keyword
	}

	return signal, nil
}
