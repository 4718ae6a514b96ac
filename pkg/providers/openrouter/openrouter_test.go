package openrouter_test

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
	"github.com/michaelcolletti/venue-research-agent/pkg/providers/openrouter"
)

func newProvider(t *testing.T, cfg *config.Config, env providers.MapEnv, out *bytes.Buffer) *openrouter.Provider {
	t.Helper()
	deps := providers.Deps{Env: env}
	if out != nil {
		deps.Out = out
	}
	p, err := openrouter.New(cfg, deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p.(*openrouter.Provider)
}

func TestOnlineSuffixAppendedOnce(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SearchProvider.OpenRouter.Model = "anthropic/claude-3.5-sonnet"

	var out bytes.Buffer
	p := newProvider(t, cfg, providers.MapEnv{}, &out)
	if p.Model() != "anthropic/claude-3.5-sonnet:online" {
		t.Fatalf("Model() = %q", p.Model())
	}
	if !strings.Contains(out.String(), "Warning:") {
		t.Fatalf("expected a warning, got %q", out.String())
	}

	cfg.SearchProvider.OpenRouter.Model = "openai/gpt-4o:online"
	out.Reset()
	p = newProvider(t, cfg, providers.MapEnv{}, &out)
	if p.Model() != "openai/gpt-4o:online" {
		t.Fatalf("Model() = %q", p.Model())
	}
	if out.Len() != 0 {
		t.Fatalf("no warning expected, got %q", out.String())
	}
}

func TestSearch(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-or-test" {
			t.Errorf("missing bearer token")
		}
		if r.Header.Get("X-Title") != "Venue Scout" {
			t.Errorf("missing X-Title header")
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"id":"gen-1","model":"openai/gpt-4o:online","choices":[{"index":0,"message":{"role":"assistant","content":"Bearsville Theater in Woodstock"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.SearchProvider.OpenRouter.APIBase = server.URL
	cfg.SearchProvider.OpenRouter.AppName = "Venue Scout"
	p := newProvider(t, cfg, providers.MapEnv{openrouter.EnvAPIKey: "sk-or-test"}, nil)

	if !p.ValidateConfig(context.Background()) {
		t.Fatal("expected valid config")
	}
	res := p.Search(context.Background(), "woodstock venues", providers.Query{Text: "woodstock venues"})
	if !res.Success || res.Text != "Bearsville Theater in Woodstock" {
		t.Fatalf("result = %+v", res)
	}

	if body["model"] != "openai/gpt-4o:online" {
		t.Errorf("model = %v", body["model"])
	}
	messages, _ := body["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %v", messages)
	}
	plugins, _ := body["plugins"].([]interface{})
	if len(plugins) != 1 {
		t.Fatalf("expected web plugin, got %v", body["plugins"])
	}
	plugin := plugins[0].(map[string]interface{})
	if plugin["id"] != "web" || plugin["max_results"] != float64(config.DefaultMaxSearchResults) {
		t.Errorf("plugin = %v", plugin)
	}
}

func TestAuthFailureIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.SearchProvider.OpenRouter.APIBase = server.URL
	p := newProvider(t, cfg, providers.MapEnv{openrouter.EnvAPIKey: "bad"}, nil)

	res := p.Search(context.Background(), "q", providers.Query{Text: "q"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "auth") || !strings.Contains(res.Error, "401") {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestValidateWithoutKey(t *testing.T) {
	var out bytes.Buffer
	p := newProvider(t, config.DefaultConfig(), providers.MapEnv{}, &out)
	if p.ValidateConfig(context.Background()) {
		t.Fatal("expected invalid config")
	}
	if !strings.Contains(out.String(), "OPENROUTER_API_KEY") {
		t.Fatalf("diagnostics = %q", out.String())
	}
}
