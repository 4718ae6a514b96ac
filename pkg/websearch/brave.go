package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultBraveURL is the Brave Search web endpoint.
const DefaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave searches via the Brave Search API.
type Brave struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewBrave creates a Brave Search tool.
func NewBrave(apiKey string, client *http.Client) *Brave {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Brave{apiKey: apiKey, baseURL: DefaultBraveURL, client: client}
}

// WithBaseURL points the tool at another endpoint.
func (b *Brave) WithBaseURL(base string) *Brave {
	b.baseURL = base
	return b
}

// Name implements Tool.
func (b *Brave) Name() string { return ServerBrave }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search implements Tool.
func (b *Brave) Search(ctx context.Context, query string, count int) (string, error) {
	if b.apiKey == "" {
		return "", fmt.Errorf("Brave API key is not set")
	}

	params := url.Values{}
	params.Set("q", query)
	if count > 0 {
		params.Set("count", fmt.Sprintf("%d", count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)
	req.Header.Set("User-Agent", userAgent())

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	var parsed braveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Web.Results))
	for _, item := range parsed.Web.Results {
		hits = append(hits, Hit{Title: item.Title, URL: item.URL, Snippet: item.Description})
	}
	return formatHits(query, "Brave Search", hits, count), nil
}
