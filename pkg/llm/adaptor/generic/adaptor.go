// Package generic provides an adaptor for OpenAI-compatible gateways such
// as OpenRouter, vLLM or Groq that differ only in base URL and headers.
package generic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptor/openai"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm/converter"
)

// Adaptor implements llm.Adaptor for generic OpenAI-compatible APIs.
type Adaptor struct {
	converter  *converter.OpenAIConverter
	httpClient *http.Client
}

// New creates a new generic adaptor instance.
func New() *Adaptor {
	return &Adaptor{
		converter:  converter.NewOpenAIConverter(),
		httpClient: &http.Client{},
	}
}

// Init initializes the adaptor with the given RelayInfo.
// The API key is optional for self-hosted services.
func (a *Adaptor) Init(info *llm.RelayInfo) error {
	if info.APIBase == "" {
		return fmt.Errorf("API base URL is required for generic provider")
	}
	info.APIBase = strings.TrimRight(info.APIBase, "/")

	client, err := llm.NewHTTPClientWithProxy(info.Proxy)
	if err != nil {
		return fmt.Errorf("setting up proxy: %w", err)
	}
	a.httpClient = client
	return nil
}

// GetRequestURL returns the full URL for the API request.
func (a *Adaptor) GetRequestURL(info *llm.RelayInfo) (string, error) {
	if info.APIBase == "" {
		return "", fmt.Errorf("API base URL is required")
	}
	return info.APIBase + "/chat/completions", nil
}

// SetupRequestHeader sets up HTTP headers for the request.
func (a *Adaptor) SetupRequestHeader(req *http.Request, info *llm.RelayInfo) error {
	return openai.SetupHeaders(req, info)
}

// ConvertRequest converts a Request to the OpenAI-compatible payload.
func (a *Adaptor) ConvertRequest(req *llm.Request, info *llm.RelayInfo) ([]byte, error) {
	providerReq, err := a.converter.ToProviderRequest(req)
	if err != nil {
		return nil, fmt.Errorf("converting request: %w", err)
	}

	data, err := json.Marshal(providerReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return data, nil
}

// DoRequest performs the HTTP request and returns the raw response body.
func (a *Adaptor) DoRequest(ctx context.Context, req *http.Request) ([]byte, error) {
	return llm.Do(ctx, a.httpClient, req, openai.ParseError)
}

// DoResponse parses the response body.
func (a *Adaptor) DoResponse(body []byte, info *llm.RelayInfo) (*llm.Response, error) {
	resp, err := a.converter.FromProviderResponse(body)
	if err != nil {
		return nil, fmt.Errorf("converting response: %w", err)
	}
	return resp, nil
}

// ListModels queries the models endpoint.
func (a *Adaptor) ListModels(ctx context.Context, info *llm.RelayInfo) ([]string, error) {
	return openai.ListModels(ctx, a.httpClient, info)
}

func init() {
	llm.Register(func() llm.Adaptor { return New() }, "generic")
}
