package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

func TestDetectBackend(t *testing.T) {
	tests := map[string]string{
		"claude-sonnet-4-20250514": BackendClaude,
		"gpt-4o":                   BackendOpenAI,
		"openai/o3":                BackendOpenAI,
		"google/gemini-2.0-flash":  BackendOpenAI,
		"llama3.1":                 BackendClaude,
	}
	for model, want := range tests {
		if got := DetectBackend(model); got != want {
			t.Errorf("DetectBackend(%q) = %q, want %q", model, got, want)
		}
	}
}

func TestRequiredEnvVars(t *testing.T) {
	tests := []struct {
		serverType string
		model      string
		backend    string
		want       []string
	}{
		{"websearch-mcp", "claude-sonnet-4-20250514", "", []string{"ANTHROPIC_API_KEY"}},
		{"serpapi", "claude-sonnet-4-20250514", "", []string{"SERPAPI_API_KEY", "ANTHROPIC_API_KEY"}},
		{"brave", "gpt-4o", "", []string{"BRAVE_API_KEY", "OPENAI_API_KEY"}},
		{"duckduckgo", "gemini-2.0-flash", "gemini", []string{"GEMINI_API_KEY"}},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.SearchProvider.MCP.ServerType = tt.serverType
		cfg.SearchProvider.MCP.Model = tt.model
		cfg.SearchProvider.MCP.LLMBackend = tt.backend

		p, err := New(cfg, providers.Deps{Env: providers.MapEnv{}})
		if err != nil {
			t.Fatalf("New(%s): %v", tt.serverType, err)
		}
		if got := p.RequiredEnvVars(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s/%s: RequiredEnvVars() = %v, want %v", tt.serverType, tt.model, got, tt.want)
		}
	}
}

func TestUnknownServerTypeIsUnavailable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SearchProvider.MCP.ServerType = "carrier-pigeon"

	_, err := New(cfg, providers.Deps{})
	var unavailable *providers.UnavailableError
	if !errors.As(err, &unavailable) || unavailable.Capability != "server_type" {
		t.Fatalf("expected server_type UnavailableError, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.SearchProvider.MCP.LLMBackend = "mainframe"
	_, err = New(cfg, providers.Deps{})
	if !errors.As(err, &unavailable) || unavailable.Capability != "llm_backend" {
		t.Fatalf("expected llm_backend UnavailableError, got %v", err)
	}
}

func TestSearchWithClaudeSendsCombinedPrompt(t *testing.T) {
	var body struct {
		System   string `json:"system"`
		Messages []struct {
			Role    string                   `json:"role"`
			Content []map[string]interface{} `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"id":"m","type":"message","model":"m","stop_reason":"end_turn","content":[{"type":"text","text":"summary"}],"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.SearchProvider.MCP.APIBase = server.URL

	var out bytes.Buffer
	p, err := New(cfg, providers.Deps{Env: providers.MapEnv{"ANTHROPIC_API_KEY": "k"}, Out: &out})
	if err != nil {
		t.Fatal(err)
	}
	if !p.ValidateConfig(context.Background()) {
		t.Fatalf("expected valid config: %s", out.String())
	}
	if !strings.Contains(out.String(), "simulated") {
		t.Errorf("stub warning missing: %q", out.String())
	}

	res := p.Search(context.Background(), "beacon open mic", providers.Query{Text: "beacon open mic"})
	if !res.Success || res.Text != "summary" {
		t.Fatalf("result = %+v", res)
	}

	if body.System != "" {
		t.Errorf("claude backend should not send a separate system prompt")
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", body.Messages)
	}
	text, _ := body.Messages[0].Content[0]["text"].(string)
	if !strings.HasPrefix(text, providers.AnalysisSystemPrompt+"\n\n") {
		t.Errorf("prompt should start with the analysis instructions")
	}
	if !strings.Contains(text, "[Simulated MCP search results for: beacon open mic]") {
		t.Errorf("search results missing from prompt: %q", text)
	}
}

type failingTool struct{}

func (failingTool) Name() string { return "failing" }
func (failingTool) Search(ctx context.Context, query string, count int) (string, error) {
	return "", errors.New("server down")
}

type recordingClient struct {
	messages []string
	err      error
}

func (c *recordingClient) Chat(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	for _, m := range req.Messages {
		c.messages = append(c.messages, m.Role+":"+m.Content)
	}
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Content: "analysis"}, nil
}

func TestSearchStepFailureIsAnalyzed(t *testing.T) {
	client := &recordingClient{}
	p := &Provider{
		cfg:     config.MCPConfig{}.WithDefaults(),
		backend: BackendOpenAI,
		env:     providers.MapEnv{},
		log:     providers.Deps{}.WithDefaults().Log,
		diag:    providers.NewDiagnostics(providers.Deps{}),
		tool:    failingTool{},
		client:  client,
	}

	res := p.Search(context.Background(), "q", providers.Query{Text: "q"})
	if !res.Success || res.Text != "analysis" {
		t.Fatalf("result = %+v", res)
	}
	if len(client.messages) != 2 || !strings.HasPrefix(client.messages[0], "system:") {
		t.Fatalf("openai backend should send system and user, got %v", client.messages)
	}
	if !strings.Contains(client.messages[1], "Error performing MCP search: server down") {
		t.Fatalf("search error not forwarded: %v", client.messages[1])
	}

	client.err = errors.New("model offline")
	res = p.Search(context.Background(), "q", providers.Query{Text: "q"})
	if res.Success || !strings.Contains(res.Error, "model offline") {
		t.Fatalf("expected failed result, got %+v", res)
	}
}
