package websearch

import (
	"context"
	"fmt"
	"net/http"

	g "github.com/serpapi/google-search-results-golang"
)

// SerpAPI searches Google through SerpApi.
type SerpAPI struct {
	apiKey string
	client *http.Client
}

// NewSerpAPI creates a SerpApi tool. A nil client keeps the SDK default.
func NewSerpAPI(apiKey string, client *http.Client) *SerpAPI {
	return &SerpAPI{apiKey: apiKey, client: client}
}

// Name implements Tool.
func (s *SerpAPI) Name() string { return ServerSerpAPI }

// Search implements Tool. The SDK call is not cancellable; ctx is checked
// before it starts.
func (s *SerpAPI) Search(ctx context.Context, query string, count int) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("SerpApi API key is not set")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parameter := map[string]string{
		"engine":        "google",
		"q":             query,
		"google_domain": "google.com",
		"gl":            "us",
		"hl":            "en",
	}
	if count > 0 {
		parameter["num"] = fmt.Sprintf("%d", count)
	}

	search := g.NewGoogleSearch(parameter, s.apiKey)
	if s.client != nil {
		search.HttpSearch = s.client
	}
	results, err := search.GetJSON()
	if err != nil {
		return "", fmt.Errorf("serpapi search failed: %w", err)
	}

	return formatHits(query, "SerpApi", organicHits(results), count), nil
}

// organicHits extracts the organic_results node of a SerpApi response.
func organicHits(results map[string]interface{}) []Hit {
	organic, ok := results["organic_results"].([]interface{})
	if !ok {
		return nil
	}

	var hits []Hit
	for _, item := range organic {
		res, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		title, _ := res["title"].(string)
		link, _ := res["link"].(string)
		snippet, _ := res["snippet"].(string)
		if title == "" || link == "" {
			continue
		}
		hits = append(hits, Hit{Title: title, URL: link, Snippet: snippet})
	}
	return hits
}
