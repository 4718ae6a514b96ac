package converter

import (
	"encoding/json"
	"testing"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

func TestOpenAIToProviderRequest_MergesExtra(t *testing.T) {
	c := NewOpenAIConverter()

	result, err := c.ToProviderRequest(&llm.Request{
		Model:     "openai/gpt-4o:online",
		Messages:  []llm.Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
		MaxTokens: 2000,
		Tools:     []llm.Tool{{Type: "web_search_20250305", Name: "web_search"}},
		Extra: map[string]interface{}{
			"plugins": []map[string]interface{}{{"id": "web", "max_results": 5}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, _ := json.Marshal(result)
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}

	if raw["model"] != "openai/gpt-4o:online" {
		t.Fatalf("unexpected model %v", raw["model"])
	}
	if _, ok := raw["plugins"]; !ok {
		t.Fatal("expected extra plugins field")
	}
	if _, ok := raw["tools"]; ok {
		t.Fatal("server tools must not be sent in OpenAI format")
	}
	if msgs, _ := raw["messages"].([]interface{}); len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %v", raw["messages"])
	}
}

func TestOpenAIFromProviderResponse(t *testing.T) {
	c := NewOpenAIConverter()

	resp, err := c.FromProviderResponse([]byte(`{
		"id": "gen-1",
		"model": "openai/gpt-4o",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "The Colony - Woodstock, NY"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 4, "total_tokens": 7}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "The Colony - Woodstock, NY" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 7 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}

	if _, err := c.FromProviderResponse([]byte(`{"choices": []}`)); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGeminiRoundTrip(t *testing.T) {
	c := NewGeminiConverter()

	result, err := c.ToProviderRequest(&llm.Request{
		Messages:  []llm.Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}},
		MaxTokens: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	req := result.(geminiRequest)
	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "sys" {
		t.Fatalf("expected system instruction, got %+v", req.SystemInstruction)
	}
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
		t.Fatalf("unexpected contents %+v", req.Contents)
	}
	if req.GenerationConfig == nil || req.GenerationConfig.MaxOutputTokens != 100 {
		t.Fatalf("unexpected generation config %+v", req.GenerationConfig)
	}

	resp, err := c.FromProviderResponse([]byte(`{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "a"}, {"text": "b"}]}, "finishReason": "STOP"}],
		"usageMetadata": {"promptTokenCount": 1, "candidatesTokenCount": 2, "totalTokenCount": 3}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ab" || resp.FinishReason != "stop" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestOllamaRequestUsesNumPredict(t *testing.T) {
	c := NewOllamaConverter()

	result, err := c.ToProviderRequest(&llm.Request{
		Model:     "llama3.1:latest",
		Messages:  []llm.Message{{Role: "user", Content: "hi"}},
		MaxTokens: 2000,
	})
	if err != nil {
		t.Fatal(err)
	}

	data, _ := json.Marshal(result)
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["stream"] != false {
		t.Fatalf("expected stream false, got %v", raw["stream"])
	}
	opts, _ := raw["options"].(map[string]interface{})
	if n, _ := opts["num_predict"].(float64); int(n) != 2000 {
		t.Fatalf("expected num_predict 2000, got %v", opts["num_predict"])
	}

	resp, err := c.FromProviderResponse([]byte(`{"model":"llama3.1:latest","message":{"role":"assistant","content":"hello"},"done":true,"prompt_eval_count":2,"eval_count":5}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "hello" || resp.FinishReason != "stop" || resp.Usage.TotalTokens != 7 {
		t.Fatalf("unexpected response %+v", resp)
	}
}
