package claude_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers/claude"
)

func TestSearchUsesWebSearchTool(t *testing.T) {
	var body struct {
		Model     string                   `json:"model"`
		MaxTokens int                      `json:"max_tokens"`
		System    string                   `json:"system"`
		Tools     []map[string]interface{} `json:"tools"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","model":"m","stop_reason":"end_turn",
			"content":[{"type":"text","text":"The Anchor - Kingston, NY"},{"type":"server_tool_use","id":"t","name":"web_search"},{"type":"text","text":" is booking."}],
			"usage":{"input_tokens":5,"output_tokens":7}}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.SearchProvider.Claude.APIBase = server.URL

	reg := providers.NewRegistry()
	reg.Register(claude.Name, claude.New)
	p, err := reg.Create("Claude", cfg, providers.Deps{Env: providers.MapEnv{claude.EnvAPIKey: "sk-test"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.ValidateConfig(context.Background()) {
		t.Fatal("expected valid config")
	}

	info := providers.Query{Text: "kingston venues", Category: providers.CategoryNewVenues, Priority: 1}
	res := p.Search(context.Background(), info.Text, info)
	if !res.Success {
		t.Fatalf("search failed: %s", res.Error)
	}
	if res.Text != "The Anchor - Kingston, NY is booking." {
		t.Fatalf("Text = %q", res.Text)
	}
	if res.Query != info {
		t.Fatalf("query info not carried: %+v", res.Query)
	}

	if body.Model != config.DefaultClaudeModel || body.MaxTokens != config.DefaultMaxTokens {
		t.Errorf("model/max_tokens = %q/%d", body.Model, body.MaxTokens)
	}
	if len(body.Tools) != 1 || body.Tools[0]["type"] != config.DefaultWebSearchToolVersion || body.Tools[0]["name"] != "web_search" {
		t.Errorf("tools = %v", body.Tools)
	}
	if !strings.Contains(body.System, "venue research assistant") {
		t.Errorf("system prompt missing")
	}
}

func TestMissingKey(t *testing.T) {
	var out bytes.Buffer
	p, err := claude.New(config.DefaultConfig(), providers.Deps{Env: providers.MapEnv{}, Out: &out})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if p.ValidateConfig(context.Background()) {
		t.Fatal("expected validation to fail without key")
	}
	if !strings.Contains(out.String(), "ANTHROPIC_API_KEY environment variable not set") {
		t.Fatalf("diagnostics = %q", out.String())
	}

	res := p.Search(context.Background(), "q", providers.Query{Text: "q"})
	if res.Success || res.Error == "" {
		t.Fatalf("expected failed result, got %+v", res)
	}
}

func TestBackendErrorBecomesFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.SearchProvider.Claude.APIBase = server.URL
	p, err := claude.New(cfg, providers.Deps{Env: providers.MapEnv{claude.EnvAPIKey: "sk-test"}})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Search(context.Background(), "q", providers.Query{Text: "q"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "rate_limit") {
		t.Fatalf("error should carry the classified reason: %q", res.Error)
	}
}

func TestIdentity(t *testing.T) {
	p, err := claude.New(config.DefaultConfig(), providers.Deps{Env: providers.MapEnv{}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if p.Name() != "claude" {
			t.Fatalf("Name() = %q", p.Name())
		}
		if got := p.RequiredEnvVars(); len(got) != 1 || got[0] != "ANTHROPIC_API_KEY" {
			t.Fatalf("RequiredEnvVars() = %v", got)
		}
	}
}
