// Package websearch provides the search tools used by the two-step search
// backend: a placeholder tool, SerpApi, Brave Search and DuckDuckGo.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/michaelcolletti/venue-research-agent/pkg/version"
)

// Server types accepted in search_provider.mcp.server_type.
const (
	ServerWebSearchMCP = "websearch-mcp"
	ServerBrave        = "brave"
	ServerSerpAPI      = "serpapi"
	ServerDuckDuckGo   = "duckduckgo"
	ServerCustom       = "custom"
)

// ServerTypes lists every accepted server type.
var ServerTypes = []string{ServerWebSearchMCP, ServerBrave, ServerSerpAPI, ServerDuckDuckGo, ServerCustom}

const defaultTimeout = 15 * time.Second

// Tool runs one web search and renders the hits as plain text.
type Tool interface {
	Name() string
	Search(ctx context.Context, query string, count int) (string, error)
}

// Options configures New.
type Options struct {
	ServerType string

	// APIKey is the SerpApi or Brave key; unused by the other tools.
	APIKey string

	// Executable and Args describe the external server for the
	// placeholder tool.
	Executable string
	Args       []string

	HTTPClient *http.Client
}

// New returns the tool for opts.ServerType.
func New(opts Options) (Tool, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	switch strings.ToLower(strings.TrimSpace(opts.ServerType)) {
	case ServerWebSearchMCP, "":
		return NewStub(ServerWebSearchMCP, "npx", []string{"web-search-mcp"}), nil
	case ServerCustom:
		exe := opts.Executable
		if exe == "" {
			exe = "mcp-server"
		}
		return NewStub(ServerCustom, exe, opts.Args), nil
	case ServerSerpAPI:
		return NewSerpAPI(opts.APIKey, client), nil
	case ServerBrave:
		return NewBrave(opts.APIKey, client), nil
	case ServerDuckDuckGo:
		return NewDuckDuckGo(client), nil
	default:
		return nil, fmt.Errorf("unknown server type %q (expected one of: %s)",
			opts.ServerType, strings.Join(ServerTypes, ", "))
	}
}

// RequiredEnvVar returns the credential a server type needs, or "".
func RequiredEnvVar(serverType string) string {
	switch strings.ToLower(strings.TrimSpace(serverType)) {
	case ServerSerpAPI:
		return "SERPAPI_API_KEY"
	case ServerBrave:
		return "BRAVE_API_KEY"
	default:
		return ""
	}
}

// Hit is one search hit.
type Hit struct {
	Title   string
	URL     string
	Snippet string
}

// formatHits renders hits the same way for every tool.
func formatHits(query, source string, hits []Hit, count int) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No results found for: %s", query)
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Results for: %s (via %s)\n\n", query, source))
	for i, hit := range hits {
		if count > 0 && i >= count {
			break
		}
		out.WriteString(fmt.Sprintf("%d. %s\n", i+1, strings.TrimSpace(hit.Title)))
		out.WriteString(fmt.Sprintf("   URL: %s\n", strings.TrimSpace(hit.URL)))
		if s := strings.TrimSpace(hit.Snippet); s != "" {
			out.WriteString(fmt.Sprintf("   %s\n", s))
		}
		out.WriteString("\n")
	}
	return out.String()
}

func userAgent() string {
	return version.UserAgent()
}
