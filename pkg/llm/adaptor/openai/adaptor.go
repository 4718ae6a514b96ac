// Package openai provides the OpenAI chat completions adaptor.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm/converter"
)

// DefaultAPIBase is the OpenAI API root.
const DefaultAPIBase = "https://api.openai.com/v1"

// Adaptor implements llm.Adaptor for the OpenAI API.
type Adaptor struct {
	converter  *converter.OpenAIConverter
	httpClient *http.Client
}

// New creates a new OpenAI adaptor instance.
func New() *Adaptor {
	return &Adaptor{
		converter:  converter.NewOpenAIConverter(),
		httpClient: &http.Client{},
	}
}

// Init initializes the adaptor with the given RelayInfo.
func (a *Adaptor) Init(info *llm.RelayInfo) error {
	if info.APIKey == "" {
		return fmt.Errorf("API key is required for OpenAI")
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
	return info.APIBase + "/chat/completions", nil
}

// SetupRequestHeader sets up HTTP headers for the request.
func (a *Adaptor) SetupRequestHeader(req *http.Request, info *llm.RelayInfo) error {
	return SetupHeaders(req, info)
}

// ConvertRequest converts a Request to the OpenAI payload.
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
	return llm.Do(ctx, a.httpClient, req, ParseError)
}

// DoResponse parses the OpenAI response body.
func (a *Adaptor) DoResponse(body []byte, info *llm.RelayInfo) (*llm.Response, error) {
	resp, err := a.converter.FromProviderResponse(body)
	if err != nil {
		return nil, fmt.Errorf("converting response: %w", err)
	}
	return resp, nil
}

// ListModels queries the models endpoint.
func (a *Adaptor) ListModels(ctx context.Context, info *llm.RelayInfo) ([]string, error) {
	return ListModels(ctx, a.httpClient, info)
}

// SetupHeaders sets JSON and bearer headers shared by OpenAI-compatible APIs.
func SetupHeaders(req *http.Request, info *llm.RelayInfo) error {
	req.Header.Set("Content-Type", "application/json")
	if info.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+info.APIKey)
	}
	for key, value := range info.Headers {
		req.Header.Set(key, value)
	}
	return nil
}

// ListModels reads GET {base}/models in the OpenAI list format.
func ListModels(ctx context.Context, client *http.Client, info *llm.RelayInfo) ([]string, error) {
	headers := map[string]string{}
	if info.APIKey != "" {
		headers["Authorization"] = "Bearer " + info.APIKey
	}
	body, err := llm.Get(ctx, client, info.APIBase+"/models", headers, ParseError)
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

// ParseError parses an OpenAI-style error response. Gateways send the
// code either as a string or a number, so it is decoded raw.
func ParseError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string          `json:"message"`
			Type    string          `json:"type"`
			Code    json.RawMessage `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &llm.ErrorResponse{
			StatusCode: statusCode,
			Message:    string(body),
		}
	}

	code := strings.Trim(string(errResp.Error.Code), `"`)
	if code == "null" {
		code = ""
	}

	return &llm.ErrorResponse{
		StatusCode: statusCode,
		Message:    errResp.Error.Message,
		Type:       errResp.Error.Type,
		Code:       code,
	}
}

func init() {
	llm.Register(func() llm.Adaptor { return New() }, "openai")
}
