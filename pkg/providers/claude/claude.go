// Package claude is the search backend for Anthropic models with the
// built-in web search tool.
package claude

import (
	"context"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

const (
	// Name is the registry key.
	Name = "claude"

	// EnvAPIKey holds the Anthropic key.
	EnvAPIKey = "ANTHROPIC_API_KEY"

	webSearchToolName = "web_search"
)

// Provider searches with Claude and its server-side web search tool.
type Provider struct {
	cfg    config.ClaudeConfig
	env    providers.EnvSource
	log    *logger.Logger
	diag   *providers.Diagnostics
	client providers.ChatClient
}

// New creates the backend. The API client is only built when the key is
// present; ValidateConfig reports the gap otherwise.
func New(cfg *config.Config, deps providers.Deps) (providers.Provider, error) {
	deps = deps.WithDefaults()
	p := &Provider{
		cfg:  cfg.SearchProvider.Claude.WithDefaults(),
		env:  deps.Env,
		log:  deps.Log,
		diag: providers.NewDiagnostics(deps),
	}

	if key := providers.Getenv(deps.Env, EnvAPIKey); key != "" {
		client, err := providers.NewChatClient(cfg, "claude", llm.RelayInfo{
			APIKey:  key,
			APIBase: p.cfg.APIBase,
			Model:   p.cfg.Model,
		})
		if err != nil {
			return nil, &providers.UnavailableError{Provider: Name, Capability: "api client", Reason: err.Error()}
		}
		p.client = client
	}
	return p, nil
}

// Name implements providers.Provider.
func (p *Provider) Name() string { return Name }

// RequiredEnvVars implements providers.Provider.
func (p *Provider) RequiredEnvVars() []string {
	return []string{EnvAPIKey}
}

// ValidateConfig implements providers.Provider.
func (p *Provider) ValidateConfig(ctx context.Context) bool {
	if !p.diag.RequireEnv(p.env, EnvAPIKey) {
		p.diag.Hint("To set up:", "export ANTHROPIC_API_KEY='sk-ant-...'")
		return false
	}
	if p.client == nil {
		p.diag.Problem("Claude client not initialized")
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
		Tools: []llm.Tool{{Type: p.cfg.WebSearchToolVersion, Name: webSearchToolName}},
	})
	if err != nil {
		p.log.Warn("Search failed", zap.String("query", query), zap.Error(err))
		return providers.Failed(info, err)
	}
	return providers.Succeeded(info, text)
}
