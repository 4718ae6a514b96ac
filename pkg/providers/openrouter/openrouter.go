// Package openrouter is the search backend for the OpenRouter gateway.
// Web search is enabled through the ":online" model suffix.
package openrouter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

const (
	// Name is the registry key.
	Name = "openrouter"

	// EnvAPIKey holds the OpenRouter key.
	EnvAPIKey = "OPENROUTER_API_KEY"

	onlineSuffix = ":online"
)

// Provider searches through OpenRouter's OpenAI-compatible endpoint.
type Provider struct {
	cfg    config.OpenRouterConfig
	env    providers.EnvSource
	log    *logger.Logger
	diag   *providers.Diagnostics
	client providers.ChatClient
}

// New creates the backend. A model without the ":online" suffix gets it
// appended, with a warning.
func New(cfg *config.Config, deps providers.Deps) (providers.Provider, error) {
	deps = deps.WithDefaults()
	p := &Provider{
		cfg:  cfg.SearchProvider.OpenRouter.WithDefaults(),
		env:  deps.Env,
		log:  deps.Log,
		diag: providers.NewDiagnostics(deps),
	}
	p.cfg.Model = p.onlineModel(p.cfg.Model)

	if key := providers.Getenv(deps.Env, EnvAPIKey); key != "" {
		headers := map[string]string{}
		if p.cfg.SiteURL != "" {
			headers["HTTP-Referer"] = p.cfg.SiteURL
		}
		if p.cfg.AppName != "" {
			headers["X-Title"] = p.cfg.AppName
		}

		client, err := providers.NewChatClient(cfg, "openai", llm.RelayInfo{
			APIKey:  key,
			APIBase: p.cfg.APIBase,
			Model:   p.cfg.Model,
			Headers: headers,
		})
		if err != nil {
			return nil, &providers.UnavailableError{Provider: Name, Capability: "api client", Reason: err.Error()}
		}
		p.client = client
	}
	return p, nil
}

func (p *Provider) onlineModel(model string) string {
	if strings.Contains(model, onlineSuffix) {
		return model
	}
	p.diag.Warn("Model '%s' doesn't have %s suffix. Adding it to enable web search.", model, onlineSuffix)
	return model + onlineSuffix
}

// Model returns the model actually requested.
func (p *Provider) Model() string { return p.cfg.Model }

// Name implements providers.Provider.
func (p *Provider) Name() string { return Name }

// RequiredEnvVars implements providers.Provider.
func (p *Provider) RequiredEnvVars() []string {
	return []string{EnvAPIKey}
}

// ValidateConfig implements providers.Provider.
func (p *Provider) ValidateConfig(ctx context.Context) bool {
	if !p.diag.RequireEnv(p.env, EnvAPIKey) {
		p.diag.Hint("To set up:",
			"1. Get API key from https://openrouter.ai/",
			"2. export OPENROUTER_API_KEY='sk-or-...'")
		return false
	}
	if p.client == nil {
		p.diag.Problem("OpenRouter client not initialized")
		return false
	}
	return true
}

// Search implements providers.Provider.
func (p *Provider) Search(ctx context.Context, query string, info providers.Query) providers.SearchResult {
	text, err := providers.Chat(ctx, Name, p.client, &llm.Request{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Messages: []llm.Message{
			{Role: "system", Content: providers.SystemPrompt},
			{Role: "user", Content: providers.UserMessage(query)},
		},
		Extra: map[string]interface{}{
			"plugins": []map[string]interface{}{
				{"id": "web", "max_results": p.cfg.MaxSearchResults},
			},
		},
	})
	if err != nil {
		p.log.Warn("Search failed", zap.String("query", query), zap.Error(err))
		return providers.Failed(info, err)
	}
	return providers.Succeeded(info, text)
}
