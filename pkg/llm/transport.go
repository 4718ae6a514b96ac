package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrorParser turns a non-2xx response body into an error.
type ErrorParser func(statusCode int, body []byte) error

// NewHTTPClientWithProxy creates an http.Client configured with the given proxy URL.
// If proxyURL is empty, returns a default client with no proxy.
func NewHTTPClientWithProxy(proxyURL string) (*http.Client, error) {
	if proxyURL == "" {
		return &http.Client{}, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
	}

	return &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
	}, nil
}

// Do executes req with client and returns the body of a 2xx response.
// Other statuses are passed to parseErr.
func Do(ctx context.Context, client *http.Client, req *http.Request, parseErr ErrorParser) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parseErr == nil {
			return nil, &ErrorResponse{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return nil, parseErr(resp.StatusCode, body)
	}

	return body, nil
}

// Get issues a GET request to rawURL with the given headers.
func Get(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, parseErr ErrorParser) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return Do(ctx, client, req, parseErr)
}
