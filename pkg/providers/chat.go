package providers

import (
	"context"
	"errors"
	"time"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	_ "github.com/michaelcolletti/venue-research-agent/pkg/llm/adaptors"
)

// ChatClient is the part of *llm.Client the backends use.
type ChatClient interface {
	Chat(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// NewChatClient creates an llm client for adaptor with the shared timeout
// and proxy settings from cfg.
func NewChatClient(cfg *config.Config, adaptor string, info llm.RelayInfo) (*llm.Client, error) {
	if cfg != nil {
		if info.Timeout == 0 && cfg.SearchProvider.Timeout > 0 {
			info.Timeout = time.Duration(cfg.SearchProvider.Timeout) * time.Second
		}
		if info.Proxy == "" {
			info.Proxy = cfg.SearchProvider.Proxy
		}
	}
	info.ProviderName = adaptor
	return llm.NewClient(adaptor, &info)
}

// Chat runs req and returns the reply text. Failures come back as
// *BackendRequestError.
func Chat(ctx context.Context, provider string, client ChatClient, req *llm.Request) (string, error) {
	if client == nil {
		return "", &BackendRequestError{
			Provider: provider,
			Reason:   llm.ReasonAuth,
			Err:      errors.New("client not initialized"),
		}
	}

	resp, err := client.Chat(ctx, req)
	if err != nil {
		return "", NewBackendRequestError(provider, err)
	}
	return resp.Content, nil
}
