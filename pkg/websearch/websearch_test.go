package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestNewSelectsTool(t *testing.T) {
	tests := []struct {
		serverType string
		want       string
	}{
		{"websearch-mcp", ServerWebSearchMCP},
		{"", ServerWebSearchMCP},
		{"custom", ServerCustom},
		{"SerpApi", ServerSerpAPI},
		{"brave", ServerBrave},
		{"duckduckgo", ServerDuckDuckGo},
	}
	for _, tt := range tests {
		tool, err := New(Options{ServerType: tt.serverType})
		if err != nil {
			t.Fatalf("New(%q): %v", tt.serverType, err)
		}
		if tool.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.serverType, tool.Name(), tt.want)
		}
	}

	if _, err := New(Options{ServerType: "gopher"}); err == nil {
		t.Fatal("expected error for unknown server type")
	}
}

func TestRequiredEnvVar(t *testing.T) {
	if got := RequiredEnvVar("serpapi"); got != "SERPAPI_API_KEY" {
		t.Errorf("serpapi env = %q", got)
	}
	if got := RequiredEnvVar("brave"); got != "BRAVE_API_KEY" {
		t.Errorf("brave env = %q", got)
	}
	if got := RequiredEnvVar("websearch-mcp"); got != "" {
		t.Errorf("websearch-mcp env = %q", got)
	}
}

func TestStubSearch(t *testing.T) {
	stub := NewStub(ServerCustom, "my-server", []string{"--port", "9000"})
	out, err := stub.Search(context.Background(), "Kingston live music", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "[Simulated MCP search results for: Kingston live music]\n") {
		t.Fatalf("unexpected stub text: %q", out)
	}
	if stub.Command() != "my-server --port 9000" {
		t.Fatalf("Command() = %q", stub.Command())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stub.Search(ctx, "q", 1); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "beacon venues" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="results">
  <div class="result">
    <a class="result__a" href="/l/?kh=-1&uddg=https%3A%2F%2Fexample.com%2Fa">Example   A</a>
    <a class="result__snippet">Snippet A</a>
  </div>
  <div class="result">
    <a class="result__a" href="https://example.com/b">Example B</a>
    <a class="result__snippet">Snippet B</a>
  </div>
  <div class="result">
    <a class="result__a" href="https://example.com/c">Example C</a>
  </div>
</div></body></html>`))
	}))
	defer server.Close()

	tool := NewDuckDuckGo(server.Client()).WithBaseURL(server.URL)
	out, err := tool.Search(context.Background(), "beacon venues", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Results for: beacon venues (via DuckDuckGo)") {
		t.Fatalf("missing header: %s", out)
	}
	if !strings.Contains(out, "1. Example A\n   URL: https://example.com/a\n   Snippet A") {
		t.Fatalf("missing decoded first hit: %s", out)
	}
	if strings.Contains(out, "Example C") {
		t.Fatalf("count not honored: %s", out)
	}
}

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "brave-key" {
			t.Errorf("missing subscription token")
		}
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"The Anchor","url":"https://anchor.example","description":"Live music nightly"}]}}`))
	}))
	defer server.Close()

	tool := NewBrave("brave-key", server.Client()).WithBaseURL(server.URL)
	out, err := tool.Search(context.Background(), "kingston bars", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1. The Anchor") || !strings.Contains(out, "Live music nightly") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestBraveSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tool := NewBrave("brave-key", server.Client()).WithBaseURL(server.URL)
	if _, err := tool.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestOrganicHits(t *testing.T) {
	results := map[string]interface{}{
		"organic_results": []interface{}{
			map[string]interface{}{"title": "Venue", "link": "https://v.example", "snippet": "s"},
			map[string]interface{}{"title": "", "link": "https://skip.example"},
			"garbage",
		},
	}
	hits := organicHits(results)
	if len(hits) != 1 || hits[0].Title != "Venue" {
		t.Fatalf("hits = %+v", hits)
	}
	if formatHits("q", "SerpApi", nil, 5) != "No results found for: q" {
		t.Fatal("empty hits should render a no-results line")
	}
}

// rewriteHost sends every request to target, keeping path and query.
type rewriteHost struct {
	target *url.URL
	next   http.RoundTripper
}

func (rt rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = rt.target.Host
	return rt.next.RoundTrip(out)
}

func serpAPIServer(t *testing.T, handler http.HandlerFunc) *http.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Transport: rewriteHost{target: target, next: server.Client().Transport}}
}

func TestSerpAPISearch(t *testing.T) {
	client := serpAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q.Get("api_key") != "serp-key" || q.Get("engine") != "google" || q.Get("num") != "2" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("q") != "hudson valley open mic" {
			t.Errorf("unexpected q %q", q.Get("q"))
		}
		_, _ = w.Write([]byte(`{"organic_results":[
			{"title":"Colony","link":"https://colony.example","snippet":"Woodstock music hall"},
			{"title":"The Linda","link":"https://linda.example","snippet":"Albany"},
			{"title":"Extra","link":"https://extra.example"}]}`))
	})

	tool, err := New(Options{ServerType: ServerSerpAPI, APIKey: "serp-key", HTTPClient: client})
	if err != nil {
		t.Fatal(err)
	}
	out, err := tool.Search(context.Background(), "hudson valley open mic", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Results for: hudson valley open mic (via SerpApi)") {
		t.Fatalf("missing header: %s", out)
	}
	if !strings.Contains(out, "1. Colony\n   URL: https://colony.example\n   Woodstock music hall") {
		t.Fatalf("missing first hit: %s", out)
	}
	if strings.Contains(out, "Extra") {
		t.Fatalf("count not honored: %s", out)
	}
}

func TestSerpAPISearchError(t *testing.T) {
	client := serpAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
	})

	tool := NewSerpAPI("bad", client)
	_, err := tool.Search(context.Background(), "q", 5)
	if err == nil || !strings.Contains(err.Error(), "Invalid API key.") {
		t.Fatalf("expected API error, got %v", err)
	}

	if _, err := NewSerpAPI("", client).Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error without a key")
	}
}
