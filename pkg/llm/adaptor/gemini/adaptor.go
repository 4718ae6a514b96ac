// Package gemini provides the Google Gemini generateContent adaptor.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm/converter"
)

// DefaultAPIBase is the Gemini API root.
const DefaultAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// Adaptor implements llm.Adaptor for the Gemini API.
type Adaptor struct {
	converter  *converter.GeminiConverter
	httpClient *http.Client
}

// New creates a new Gemini adaptor instance.
func New() *Adaptor {
	return &Adaptor{
		converter:  converter.NewGeminiConverter(),
		httpClient: &http.Client{},
	}
}

// Init initializes the adaptor with the given RelayInfo.
func (a *Adaptor) Init(info *llm.RelayInfo) error {
	if info.APIKey == "" {
		return fmt.Errorf("API key is required for Gemini")
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
	model := info.Model
	if model == "" {
		return "", fmt.Errorf("model is required for Gemini")
	}

	// "google/gemini-pro" -> "gemini-pro"
	if idx := strings.Index(model, "/"); idx != -1 {
		model = model[idx+1:]
	}

	return fmt.Sprintf("%s/models/%s:generateContent", info.APIBase, model), nil
}

// SetupRequestHeader sets up HTTP headers for the request.
func (a *Adaptor) SetupRequestHeader(req *http.Request, info *llm.RelayInfo) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", info.APIKey)

	for key, value := range info.Headers {
		req.Header.Set(key, value)
	}
	return nil
}

// ConvertRequest converts a Request to the Gemini payload.
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

// DoResponse parses the Gemini response body.
func (a *Adaptor) DoResponse(body []byte, info *llm.RelayInfo) (*llm.Response, error) {
	resp, err := a.converter.FromProviderResponse(body)
	if err != nil {
		return nil, fmt.Errorf("converting response: %w", err)
	}
	if resp.Model == "" {
		resp.Model = info.Model
	}
	return resp, nil
}

// ListModels queries the models endpoint.
func (a *Adaptor) ListModels(ctx context.Context, info *llm.RelayInfo) ([]string, error) {
	body, err := llm.Get(ctx, a.httpClient, info.APIBase+"/models", map[string]string{
		"x-goog-api-key": info.APIKey,
	}, parseError)
	if err != nil {
		return nil, err
	}

	var list struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unmarshaling model list: %w", err)
	}

	models := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models, nil
}

// parseError parses a Gemini API error response.
func parseError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
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
		Type:       errResp.Error.Status,
		Code:       fmt.Sprintf("%d", errResp.Error.Code),
	}
}

func init() {
	llm.Register(func() llm.Adaptor { return New() }, "gemini", "google")
}
