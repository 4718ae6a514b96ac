package converter

import (
	"encoding/json"
	"fmt"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

const defaultClaudeMaxTokens = 4096

// ClaudeConverter handles the Anthropic Messages API format.
type ClaudeConverter struct {
	BaseConverter
}

// NewClaudeConverter creates a new Claude format converter.
func NewClaudeConverter() *ClaudeConverter {
	return &ClaudeConverter{}
}

// claudeRequest represents the Claude API request format.
type claudeRequest struct {
	Model       string                   `json:"model"`
	Messages    []claudeMessage          `json:"messages"`
	System      string                   `json:"system,omitempty"`
	MaxTokens   int                      `json:"max_tokens"`
	Temperature float64                  `json:"temperature,omitempty"`
	Tools       []map[string]interface{} `json:"tools,omitempty"`
}

// claudeMessage represents a single message in Claude format.
type claudeMessage struct {
	Role    string                   `json:"role"` // "user" or "assistant"
	Content []map[string]interface{} `json:"content"`
}

// claudeResponse represents the Claude API response format.
type claudeResponse struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Role       string                   `json:"role"`
	Content    []map[string]interface{} `json:"content"`
	Model      string                   `json:"model"`
	StopReason string                   `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ToProviderRequest converts a Request to Claude format.
func (c *ClaudeConverter) ToProviderRequest(req *llm.Request) (interface{}, error) {
	systemMsgs, conversationMsgs := c.ExtractSystemMessages(req.Messages)
	if len(conversationMsgs) == 0 {
		return nil, fmt.Errorf("claude request needs at least one non-system message")
	}

	out := claudeRequest{
		Model:       req.Model,
		System:      c.MergeSystemMessages(systemMsgs),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = defaultClaudeMaxTokens
	}

	out.Messages = make([]claudeMessage, 0, len(conversationMsgs))
	for _, msg := range conversationMsgs {
		out.Messages = append(out.Messages, claudeMessage{
			Role: msg.Role,
			Content: []map[string]interface{}{
				{"type": "text", "text": msg.Content},
			},
		})
	}

	for _, tool := range req.Tools {
		// Server tools such as web_search are run by Anthropic and take no schema.
		if tool.IsServerTool() {
			out.Tools = append(out.Tools, map[string]interface{}{
				"type": tool.Type,
				"name": tool.Name,
			})
			continue
		}
		out.Tools = append(out.Tools, map[string]interface{}{
			"name":         tool.Name,
			"description":  tool.Description,
			"input_schema": tool.Parameters,
		})
	}

	if len(req.Extra) == 0 {
		return out, nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling claude request: %w", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling claude request: %w", err)
	}
	return mergeExtra(payload, req.Extra), nil
}

// FromProviderResponse converts a Claude response body. Text blocks are
// concatenated in order; tool use and search result blocks are skipped.
func (c *ClaudeConverter) FromProviderResponse(body []byte) (*llm.Response, error) {
	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling to Claude format: %w", err)
	}
	if resp.Type == "error" {
		return nil, fmt.Errorf("claude returned an error payload")
	}

	out := &llm.Response{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}

	switch resp.StopReason {
	case "end_turn":
		out.FinishReason = "stop"
	case "tool_use":
		out.FinishReason = "tool_calls"
	case "max_tokens":
		out.FinishReason = "length"
	default:
		out.FinishReason = resp.StopReason
	}

	for _, block := range resp.Content {
		if blockType, _ := block["type"].(string); blockType != "text" {
			continue
		}
		if text, ok := block["text"].(string); ok {
			out.Content += text
		}
	}

	return out, nil
}
