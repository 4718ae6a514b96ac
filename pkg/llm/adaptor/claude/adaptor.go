// Package claude provides the Anthropic Messages API adaptor.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm/converter"
)

const (
	// DefaultAPIBase is the Anthropic API root.
	DefaultAPIBase = "https://api.anthropic.com/v1"

	apiVersion = "2023-06-01"
)

// Adaptor implements llm.Adaptor for the Claude API.
type Adaptor struct {
	converter  *converter.ClaudeConverter
	httpClient *http.Client
}

// New creates a new Claude adaptor instance.
func New() *Adaptor {
	return &Adaptor{
		converter:  converter.NewClaudeConverter(),
		httpClient: &http.Client{},
	}
}

// Init initializes the adaptor with the given RelayInfo.
func (a *Adaptor) Init(info *llm.RelayInfo) error {
	if info.APIKey == "" {
		return fmt.Errorf("API key is required for Claude")
	}
	if info.APIBase == "" {
		info.APIBase = DefaultAPIBase
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
	return info.APIBase + "/messages", nil
}

// SetupRequestHeader sets up HTTP headers for the request.
func (a *Adaptor) SetupRequestHeader(req *http.Request, info *llm.RelayInfo) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", info.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	for key, value := range info.Headers {
		req.Header.Set(key, value)
	}
	return nil
}

// ConvertRequest converts a Request to the Claude payload.
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

// DoResponse parses the Claude response body.
func (a *Adaptor) DoResponse(body []byte, info *llm.RelayInfo) (*llm.Response, error) {
	resp, err := a.converter.FromProviderResponse(body)
	if err != nil {
		return nil, fmt.Errorf("converting response: %w", err)
	}
	return resp, nil
}

// ListModels queries the models endpoint.
func (a *Adaptor) ListModels(ctx context.Context, info *llm.RelayInfo) ([]string, error) {
	body, err := llm.Get(ctx, a.httpClient, info.APIBase+"/models", map[string]string{
		"x-api-key":         info.APIKey,
		"anthropic-version": apiVersion,
	}, parseError)
	if err != nil {
		return nil, err
	}

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unmarshaling model list: %w", err)
	}

	models := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// parseError parses a Claude API error response.
func parseError(statusCode int, body []byte) error {
	var errResp struct {
		Type  string `json:"type"`
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &llm.ErrorResponse{
			StatusCode: statusCode,
			Message:    string(body),
		}
	}

	return &llm.ErrorResponse{
		StatusCode: statusCode,
		Message:    errResp.Error.Message,
		Type:       errResp.Error.Type,
	}
}

func init() {
	llm.Register(func() llm.Adaptor { return New() }, "claude", "anthropic")
}
