// Package ollama provides the adaptor for a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm/converter"
)

// DefaultAPIBase is the default local Ollama endpoint.
const DefaultAPIBase = "http://localhost:11434"

// Adaptor implements llm.Adaptor for Ollama's native chat API.
type Adaptor struct {
	converter  *converter.OllamaConverter
	httpClient *http.Client
}

// New creates a new Ollama adaptor instance.
func New() *Adaptor {
	return &Adaptor{
		converter:  converter.NewOllamaConverter(),
		httpClient: &http.Client{},
	}
}

// Init initializes the adaptor. No API key is needed.
func (a *Adaptor) Init(info *llm.RelayInfo) error {
	if info.APIBase == "" {
		info.APIBase = DefaultAPIBase
	}
	info.APIBase = strings.TrimRight(info.APIBase, "/")

	parsed, err := url.Parse(info.APIBase)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid Ollama base URL %q", info.APIBase)
	}

	client, err := llm.NewHTTPClientWithProxy(info.Proxy)
	if err != nil {
		return fmt.Errorf("setting up proxy: %w", err)
	}
	a.httpClient = client
	return nil
}

// GetRequestURL returns the full URL for the API request.
func (a *Adaptor) GetRequestURL(info *llm.RelayInfo) (string, error) {
	return info.APIBase + "/api/chat", nil
}

// SetupRequestHeader sets up HTTP headers for the request.
func (a *Adaptor) SetupRequestHeader(req *http.Request, info *llm.RelayInfo) error {
	req.Header.Set("Content-Type", "application/json")
	for key, value := range info.Headers {
		req.Header.Set(key, value)
	}
	return nil
}

// ConvertRequest converts a Request to the Ollama payload.
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
	return llm.Do(ctx, a.httpClient, req, parseError)
}

// DoResponse parses the Ollama response body.
func (a *Adaptor) DoResponse(body []byte, info *llm.RelayInfo) (*llm.Response, error) {
	resp, err := a.converter.FromProviderResponse(body)
	if err != nil {
		return nil, fmt.Errorf("converting response: %w", err)
	}
	return resp, nil
}

// ListModels returns the locally installed models from /api/tags.
func (a *Adaptor) ListModels(ctx context.Context, info *llm.RelayInfo) ([]string, error) {
	body, err := llm.Get(ctx, a.httpClient, info.APIBase+"/api/tags", nil, parseError)
	if err != nil {
		return nil, err
	}

	var tags struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling model list: %w", err)
	}

	models := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		models = append(models, name)
	}
	return models, nil
}

// parseError parses an Ollama error body ({"error": "..."}).
func parseError(statusCode int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return &llm.ErrorResponse{
			StatusCode: statusCode,
			Message:    string(body),
		}
	}
	return &llm.ErrorResponse{
		StatusCode: statusCode,
		Message:    errResp.Error,
	}
}

func init() {
	llm.Register(func() llm.Adaptor { return New() }, "ollama")
}
