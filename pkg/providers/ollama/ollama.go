// Package ollama is the search backend for a local Ollama server. It has no
// live web search: every result is marked as knowledge-only.
package ollama

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

// Name is the registry key.
const Name = "ollama"

// ModelLister enumerates installed models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type client interface {
	providers.ChatClient
	ModelLister
}

// Provider answers from a local model.
type Provider struct {
	cfg    config.OllamaConfig
	log    *logger.Logger
	diag   *providers.Diagnostics
	client client
}

// New creates the backend. A malformed base URL is reported as
// *providers.UnavailableError.
func New(cfg *config.Config, deps providers.Deps) (providers.Provider, error) {
	deps = deps.WithDefaults()
	oc := cfg.SearchProvider.Ollama.WithDefaults()

	if u, err := url.Parse(oc.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &providers.UnavailableError{
			Provider:   Name,
			Capability: "base_url",
			Reason:     fmt.Sprintf("invalid URL %q", oc.BaseURL),
		}
	}

	c, err := providers.NewChatClient(cfg, "ollama", llm.RelayInfo{
		APIBase: oc.BaseURL,
		Model:   oc.Model,
	})
	if err != nil {
		return nil, &providers.UnavailableError{Provider: Name, Capability: "api client", Reason: err.Error()}
	}

	return &Provider{
		cfg:    oc,
		log:    deps.Log,
		diag:   providers.NewDiagnostics(deps),
		client: c,
	}, nil
}

// Name implements providers.Provider.
func (p *Provider) Name() string { return Name }

// RequiredEnvVars implements providers.Provider. A local server needs no
// credentials.
func (p *Provider) RequiredEnvVars() []string {
	return []string{}
}

// ValidateConfig implements providers.Provider. It fails when the server is
// unreachable or the configured model is not installed.
func (p *Provider) ValidateConfig(ctx context.Context) bool {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		p.diag.Problem("Cannot connect to Ollama at %s: %v", p.cfg.BaseURL, err)
		p.diag.Hint("Make sure Ollama is running:",
			"1. Install Ollama from https://ollama.ai/",
			fmt.Sprintf("2. Pull a model: ollama pull %s", p.cfg.Model),
			"3. Start Ollama service")
		return false
	}
	p.diag.Info("Connected to Ollama at %s", p.cfg.BaseURL)

	for _, m := range models {
		if m == p.cfg.Model {
			return true
		}
	}
	p.diag.Problem("Model '%s' not found locally", p.cfg.Model)
	p.diag.Hint(fmt.Sprintf("Available models: %s", strings.Join(models, ", ")),
		fmt.Sprintf("Pull the model with: ollama pull %s", p.cfg.Model))
	return false
}

// Search implements providers.Provider.
func (p *Provider) Search(ctx context.Context, query string, info providers.Query) providers.SearchResult {
	text, err := providers.Chat(ctx, Name, p.client, &llm.Request{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Messages: []llm.Message{
			{Role: "system", Content: providers.KnowledgeSystemPrompt},
			{Role: "user", Content: providers.KnowledgeUserMessage(query)},
		},
	})
	if err != nil {
		p.log.Warn("Search failed", zap.String("query", query), zap.Error(err))
		return providers.Failed(info, err)
	}
	return providers.Succeeded(info, text+providers.KnowledgeOnlyNote)
}
