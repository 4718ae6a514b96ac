package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultDuckDuckGoURL is the no-JavaScript DuckDuckGo endpoint.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML results page. No key is needed.
type DuckDuckGo struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo tool.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &DuckDuckGo{baseURL: DefaultDuckDuckGoURL, client: client}
}

// WithBaseURL points the tool at another endpoint.
func (d *DuckDuckGo) WithBaseURL(base string) *DuckDuckGo {
	d.baseURL = base
	return d
}

// Name implements Tool.
func (d *DuckDuckGo) Name() string { return ServerDuckDuckGo }

// Search implements Tool.
func (d *DuckDuckGo) Search(ctx context.Context, query string, count int) (string, error) {
	searchURL := d.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return formatHits(query, "DuckDuckGo", duckDuckGoHits(doc), count), nil
}

func duckDuckGoHits(doc *goquery.Document) []Hit {
	var hits []Hit
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a").First()
		title := collapseSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}
		hits = append(hits, Hit{
			Title:   title,
			URL:     decodeDuckDuckGoURL(href),
			Snippet: collapseSpace(s.Find(".result__snippet").First().Text()),
		})
	})
	return hits
}

// decodeDuckDuckGoURL unwraps /l/?uddg= redirect links.
func decodeDuckDuckGoURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
