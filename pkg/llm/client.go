package llm

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// Client runs chat requests through one adaptor.
type Client struct {
	adaptor Adaptor
	info    *RelayInfo
}

// NewClient creates a client for the named adaptor from the global registry.
func NewClient(adaptorName string, info *RelayInfo) (*Client, error) {
	adaptor, err := NewAdaptor(adaptorName)
	if err != nil {
		return nil, err
	}
	return NewClientWithAdaptor(adaptor, info)
}

// NewClientWithAdaptor creates a client around an already constructed adaptor.
func NewClientWithAdaptor(adaptor Adaptor, info *RelayInfo) (*Client, error) {
	if info == nil {
		info = &RelayInfo{}
	}
	if err := adaptor.Init(info); err != nil {
		return nil, fmt.Errorf("initializing adaptor: %w", err)
	}

	return &Client{
		adaptor: adaptor,
		info:    info,
	}, nil
}

// Info returns the relay settings after adaptor initialization.
func (c *Client) Info() RelayInfo {
	return *c.info
}

// Chat performs a non-streaming chat completion request.
func (c *Client) Chat(ctx context.Context, req *Request) (*Response, error) {
	if req.Model == "" {
		req.Model = c.info.Model
	}

	reqBody, err := c.adaptor.ConvertRequest(req, c.info)
	if err != nil {
		return nil, fmt.Errorf("converting request: %w", err)
	}

	url, err := c.adaptor.GetRequestURL(c.info)
	if err != nil {
		return nil, fmt.Errorf("getting request URL: %w", err)
	}

	if c.info.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.info.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	if err := c.adaptor.SetupRequestHeader(httpReq, c.info); err != nil {
		return nil, fmt.Errorf("setting up request headers: %w", err)
	}

	respBody, err := c.adaptor.DoRequest(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	resp, err := c.adaptor.DoResponse(respBody, c.info)
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return resp, nil
}

// ListModels returns the models served by the adaptor's endpoint.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	return c.adaptor.ListModels(ctx, c.info)
}
