package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptors"
)

func TestClientChatClaude(t *testing.T) {
	var gotTools []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		var body struct {
			Tools []map[string]interface{} `json:"tools"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTools = body.Tools

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg","type":"message","model":"m","stop_reason":"end_turn","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	client, err := llm.NewClient("claude", &llm.RelayInfo{APIKey: "test-key", APIBase: server.URL, Model: "m"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Chat(context.Background(), &llm.Request{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
		Tools:    []llm.Tool{{Type: "web_search_20250305", Name: "web_search"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" {
		t.Fatalf("expected content ok, got %q", resp.Content)
	}
	if len(gotTools) != 1 || gotTools[0]["type"] != "web_search_20250305" {
		t.Fatalf("expected web search tool in request, got %v", gotTools)
	}
}

func TestClientChatErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"auth_error","code":401}}`))
	}))
	defer server.Close()

	client, err := llm.NewClient("generic", &llm.RelayInfo{APIKey: "k", APIBase: server.URL, Model: "m"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Chat(context.Background(), &llm.Request{Messages: []llm.Message{{Role: "user", Content: "hi"}}})
	if err == nil {
		t.Fatal("expected error")
	}
	if code := llm.StatusCodeOf(err); code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", code)
	}
	if got := llm.ClassifyError(err, 0).Reason; got != llm.ReasonAuth {
		t.Fatalf("expected auth reason, got %s", got)
	}
}

func TestOllamaListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest"},{"name":"mistral:7b"}]}`))
	}))
	defer server.Close()

	client, err := llm.NewClient("ollama", &llm.RelayInfo{APIBase: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 2 || models[0] != "llama3.1:latest" {
		t.Fatalf("unexpected models %v", models)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := llm.NewClient("claude", &llm.RelayInfo{}); err == nil {
		t.Fatal("expected error without API key")
	}
	if _, err := llm.NewClient("nope", &llm.RelayInfo{}); err == nil {
		t.Fatal("expected error for unknown adaptor")
	}
}
