package converter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

// GeminiConverter handles the Google Gemini generateContent format.
type GeminiConverter struct {
	BaseConverter
}

// NewGeminiConverter creates a new Gemini format converter.
func NewGeminiConverter() *GeminiConverter {
	return &GeminiConverter{}
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
	ModelVersion string `json:"modelVersion"`
}

// ToProviderRequest converts a Request to Gemini format.
func (c *GeminiConverter) ToProviderRequest(req *llm.Request) (interface{}, error) {
	systemMsgs, conversationMsgs := c.ExtractSystemMessages(req.Messages)

	out := geminiRequest{
		Contents: make([]geminiContent, 0, len(conversationMsgs)),
	}
	if len(systemMsgs) > 0 {
		out.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: c.MergeSystemMessages(systemMsgs)}},
		}
	}

	for _, msg := range conversationMsgs {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		out.Contents = append(out.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	if req.MaxTokens > 0 || req.Temperature > 0 {
		out.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	return out, nil
}

// FromProviderResponse converts a Gemini response body.
func (c *GeminiConverter) FromProviderResponse(body []byte) (*llm.Response, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling to Gemini format: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini response has no candidates")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	out := &llm.Response{
		Model:        resp.ModelVersion,
		Content:      text.String(),
		FinishReason: strings.ToLower(candidate.FinishReason),
	}
	if resp.UsageMetadata != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return out, nil
}
