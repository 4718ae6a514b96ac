package converter

import (
	"encoding/json"
	"fmt"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

// OllamaConverter handles the Ollama /api/chat format.
type OllamaConverter struct {
	BaseConverter
}

// NewOllamaConverter creates a new Ollama format converter.
func NewOllamaConverter() *OllamaConverter {
	return &OllamaConverter{}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// ToProviderRequest converts a Request to Ollama format. Streaming is
// always disabled so the reply arrives as one JSON object.
func (c *OllamaConverter) ToProviderRequest(req *llm.Request) (interface{}, error) {
	out := ollamaRequest{
		Model:    req.Model,
		Messages: make([]ollamaMessage, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, ollamaMessage{Role: msg.Role, Content: msg.Content})
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		out.Options = &ollamaOptions{NumPredict: req.MaxTokens, Temperature: req.Temperature}
	}
	return out, nil
}

// FromProviderResponse converts an Ollama response body.
func (c *OllamaConverter) FromProviderResponse(body []byte) (*llm.Response, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling to Ollama format: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("ollama: %s", resp.Error)
	}

	finish := resp.DoneReason
	if finish == "" && resp.Done {
		finish = "stop"
	}

	return &llm.Response{
		Model:        resp.Model,
		Content:      resp.Message.Content,
		FinishReason: finish,
		Usage: &llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
