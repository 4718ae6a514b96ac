// Package llm implements the chat-completion layer used by the search providers.
// It uses an adaptor pattern to hide vendor-specific HTTP details and format
// converters to translate between vendor payloads and one unified shape.
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrListModelsUnsupported is returned by adaptors that cannot enumerate models.
var ErrListModelsUnsupported = errors.New("listing models is not supported")

// Request represents a vendor-agnostic chat request.
type Request struct {
	Model       string                 `json:"model"`
	Messages    []Message              `json:"messages"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Temperature float64                `json:"temperature,omitempty"`
	Tools       []Tool                 `json:"tools,omitempty"`
	Extra       map[string]interface{} `json:"-"` // Vendor-specific fields merged into the payload
}

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Tool types.
const (
	ToolTypeFunction = "function"
)

// Tool is a tool definition for the model. Function tools carry a JSON
// schema; any other Type is treated as a server-side tool (for example
// Anthropic's web_search_20250305) and sent by type and name only.
type Tool struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// IsServerTool reports whether the tool is executed by the vendor.
func (t Tool) IsServerTool() bool {
	return t.Type != "" && t.Type != ToolTypeFunction
}

// Response represents a vendor-agnostic chat response.
type Response struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RelayInfo carries per-client settings through the adaptor pipeline.
type RelayInfo struct {
	ProviderName string            // Adaptor name (e.g., "openai", "claude")
	APIKey       string            // API key for authentication
	APIBase      string            // Base URL for API endpoints
	Model        string            // Model identifier
	Timeout      time.Duration     // Per-request timeout, zero means none
	Proxy        string            // HTTP proxy URL
	Headers      map[string]string // Additional HTTP headers
}

// ErrorResponse represents a vendor error response.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Code       string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// StatusCodeOf returns the HTTP status code carried by err, or 0.
func StatusCodeOf(err error) int {
	var resp *ErrorResponse
	if errors.As(err, &resp) {
		return resp.StatusCode
	}
	return 0
}

// Adaptor defines the interface that every vendor adaptor implements.
type Adaptor interface {
	// Init validates and completes the RelayInfo.
	Init(info *RelayInfo) error

	// GetRequestURL returns the full URL for the chat request.
	GetRequestURL(info *RelayInfo) (string, error)

	// SetupRequestHeader sets up HTTP headers for the request.
	SetupRequestHeader(req *http.Request, info *RelayInfo) error

	// ConvertRequest converts a Request to the vendor payload.
	ConvertRequest(req *Request, info *RelayInfo) ([]byte, error)

	// DoRequest performs the HTTP request and returns the raw response body.
	DoRequest(ctx context.Context, req *http.Request) ([]byte, error)

	// DoResponse parses the vendor response body.
	DoResponse(body []byte, info *RelayInfo) (*Response, error)

	// ListModels returns the models the endpoint serves.
	ListModels(ctx context.Context, info *RelayInfo) ([]string, error)
}
