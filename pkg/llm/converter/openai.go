package converter

import (
	"encoding/json"
	"fmt"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

// OpenAIConverter handles the OpenAI chat completions format. It is also
// used for OpenAI-compatible gateways.
type OpenAIConverter struct {
	BaseConverter
}

// NewOpenAIConverter creates a new OpenAI format converter.
func NewOpenAIConverter() *OpenAIConverter {
	return &OpenAIConverter{}
}

type openAIRequest struct {
	Model       string                   `json:"model"`
	Messages    []openAIMessage          `json:"messages"`
	MaxTokens   int                      `json:"max_tokens,omitempty"`
	Temperature float64                  `json:"temperature,omitempty"`
	Tools       []map[string]interface{} `json:"tools,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// ToProviderRequest converts a Request to OpenAI format.
func (c *OpenAIConverter) ToProviderRequest(req *llm.Request) (interface{}, error) {
	out := openAIRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    make([]openAIMessage, 0, len(req.Messages)),
	}

	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, openAIMessage{Role: msg.Role, Content: msg.Content})
	}

	if tools := c.ConvertToolsToOpenAIFormat(req.Tools); len(tools) > 0 {
		out.Tools = tools
	}

	if len(req.Extra) == 0 {
		return out, nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling openai request: %w", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling openai request: %w", err)
	}
	return mergeExtra(payload, req.Extra), nil
}

// FromProviderResponse converts an OpenAI response body.
func (c *OpenAIConverter) FromProviderResponse(body []byte) (*llm.Response, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling to OpenAI format: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}

	choice := resp.Choices[0]
	out := &llm.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}
	if resp.Usage != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return out, nil
}
