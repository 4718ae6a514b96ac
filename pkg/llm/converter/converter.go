// Package converter translates between vendor chat payloads and the unified
// llm.Request / llm.Response shapes.
package converter

import (
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

// FormatConverter defines the conversion contract implemented per vendor.
type FormatConverter interface {
	// ToProviderRequest converts a Request to the vendor request structure.
	ToProviderRequest(req *llm.Request) (interface{}, error)

	// FromProviderResponse converts a raw vendor response body to a Response.
	FromProviderResponse(body []byte) (*llm.Response, error)
}

// BaseConverter provides helpers shared by the vendor converters.
type BaseConverter struct{}

// ExtractSystemMessages separates system messages from the conversation.
func (b *BaseConverter) ExtractSystemMessages(messages []llm.Message) ([]llm.Message, []llm.Message) {
	var system, conversation []llm.Message

	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg)
		} else {
			conversation = append(conversation, msg)
		}
	}

	return system, conversation
}

// MergeSystemMessages combines multiple system messages into one.
func (b *BaseConverter) MergeSystemMessages(messages []llm.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n\n")
}

// ConvertToolsToOpenAIFormat converts function tools to the OpenAI tool
// format. Server tools have no OpenAI equivalent and are dropped.
func (b *BaseConverter) ConvertToolsToOpenAIFormat(tools []llm.Tool) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		if tool.IsServerTool() {
			continue
		}
		result = append(result, map[string]interface{}{
			"type": llm.ToolTypeFunction,
			"function": map[string]interface{}{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}
	return result
}

// mergeExtra copies vendor extras into a marshaled request map.
func mergeExtra(payload map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for key, value := range extra {
		if _, exists := payload[key]; !exists {
			payload[key] = value
		}
	}
	return payload
}
