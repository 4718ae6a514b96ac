package converter

import (
	"encoding/json"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

func TestClaudeToProviderRequest_Basic(t *testing.T) {
	c := NewClaudeConverter()

	req := &llm.Request{
		Model: "claude-sonnet-4-20250514",
		Messages: []llm.Message{
			{Role: "system", Content: "You are a venue research assistant."},
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: 1024,
	}

	result, err := c.ToProviderRequest(req)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := json.Marshal(result)
	var claudeReq claudeRequest
	if err := json.Unmarshal(data, &claudeReq); err != nil {
		t.Fatal(err)
	}

	if claudeReq.Model != "claude-sonnet-4-20250514" {
		t.Fatalf("expected model claude-sonnet-4-20250514, got %s", claudeReq.Model)
	}
	if claudeReq.MaxTokens != 1024 {
		t.Fatalf("expected max_tokens 1024, got %d", claudeReq.MaxTokens)
	}
	if claudeReq.System != "You are a venue research assistant." {
		t.Fatalf("unexpected system prompt %q", claudeReq.System)
	}
	if len(claudeReq.Messages) != 1 || claudeReq.Messages[0].Role != "user" {
		t.Fatalf("expected one user message, got %+v", claudeReq.Messages)
	}
}

func TestClaudeToProviderRequest_DefaultMaxTokens(t *testing.T) {
	c := NewClaudeConverter()

	result, err := c.ToProviderRequest(&llm.Request{
		Model:    "claude-sonnet-4-20250514",
		Messages: []llm.Message{{Role: "user", Content: "Hi"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.(claudeRequest).MaxTokens; got != defaultClaudeMaxTokens {
		t.Fatalf("expected default max_tokens %d, got %d", defaultClaudeMaxTokens, got)
	}
}

func TestClaudeToProviderRequest_ServerTool(t *testing.T) {
	c := NewClaudeConverter()

	req := &llm.Request{
		Model:    "claude-sonnet-4-20250514",
		Messages: []llm.Message{{Role: "user", Content: "Search for: Kingston venues"}},
		Tools: []llm.Tool{
			{Type: "web_search_20250305", Name: "web_search"},
			{Type: llm.ToolTypeFunction, Name: "lookup", Description: "d", Parameters: map[string]interface{}{"type": "object"}},
		},
	}

	result, err := c.ToProviderRequest(req)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := json.Marshal(result)
	var raw struct {
		Tools []map[string]interface{} `json:"tools"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(raw.Tools))
	}

	search := raw.Tools[0]
	if search["type"] != "web_search_20250305" || search["name"] != "web_search" {
		t.Fatalf("unexpected server tool %v", search)
	}
	if _, ok := search["input_schema"]; ok {
		t.Fatal("server tool must not carry an input schema")
	}
	if _, ok := raw.Tools[1]["input_schema"]; !ok {
		t.Fatal("function tool should carry an input schema")
	}
}

func TestClaudeToProviderRequest_NoConversation(t *testing.T) {
	c := NewClaudeConverter()

	_, err := c.ToProviderRequest(&llm.Request{
		Messages: []llm.Message{{Role: "system", Content: "only system"}},
	})
	if err == nil {
		t.Fatal("expected error for request without user message")
	}
}

func TestClaudeFromProviderResponse_JoinsTextBlocks(t *testing.T) {
	c := NewClaudeConverter()

	body := []byte(`{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"stop_reason": "end_turn",
		"content": [
			{"type": "text", "text": "BSP Kingston - Kingston, NY\n"},
			{"type": "server_tool_use", "id": "srv_1", "name": "web_search", "input": {"query": "kingston"}},
			{"type": "web_search_tool_result", "tool_use_id": "srv_1", "content": []},
			{"type": "text", "text": "Keegan Ales - Kingston, NY"}
		],
		"usage": {"input_tokens": 10, "output_tokens": 20}
	}`)

	resp, err := c.FromProviderResponse(body)
	if err != nil {
		t.Fatal(err)
	}

	want := "BSP Kingston - Kingston, NY\nKeegan Ales - Kingston, NY"
	if resp.Content != want {
		t.Fatalf("expected content %q, got %q", want, resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Fatalf("expected finish reason stop, got %s", resp.FinishReason)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 30 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
}

func TestClaudeFromProviderResponse_Malformed(t *testing.T) {
	c := NewClaudeConverter()

	if _, err := c.FromProviderResponse([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
