// Package mcp is the two-step search backend: a search tool gathers raw
// results and a separately chosen model summarizes them.
//
// The default server types (websearch-mcp, custom) do not speak the Model
// Context Protocol; their search step is a placeholder that returns
// simulated text. The serpapi, brave and duckduckgo server types perform
// real searches with their respective APIs.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/websearch"
)

// Name is the registry key.
const Name = "mcp"

// Summarizing model backends.
const (
	BackendClaude = "claude"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

var backendEnv = map[string]string{
	BackendClaude: "ANTHROPIC_API_KEY",
	BackendOpenAI: "OPENAI_API_KEY",
	BackendGemini: "GEMINI_API_KEY",
}

// DetectBackend picks the summarizing backend from a model name.
func DetectBackend(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "claude"):
		return BackendClaude
	case strings.Contains(m, "gpt"), strings.Contains(m, "openai"):
		return BackendOpenAI
	case strings.Contains(m, "gemini"), strings.Contains(m, "google"):
		// Google models are reached through an OpenAI-compatible endpoint
		// unless llm_backend selects the native API.
		return BackendOpenAI
	default:
		return BackendClaude
	}
}

// Provider runs search-then-summarize.
type Provider struct {
	cfg     config.MCPConfig
	backend string
	env     providers.EnvSource
	log     *logger.Logger
	diag    *providers.Diagnostics
	tool    websearch.Tool
	client  providers.ChatClient
}

// New creates the backend. Unknown server types and llm backends are
// reported as *providers.UnavailableError.
func New(cfg *config.Config, deps providers.Deps) (providers.Provider, error) {
	deps = deps.WithDefaults()
	mc := cfg.SearchProvider.MCP.WithDefaults()

	backend := strings.ToLower(strings.TrimSpace(mc.LLMBackend))
	if backend == "" {
		backend = DetectBackend(mc.Model)
	}
	if _, ok := backendEnv[backend]; !ok {
		return nil, &providers.UnavailableError{
			Provider:   Name,
			Capability: "llm_backend",
			Reason:     fmt.Sprintf("unsupported backend %q (expected claude, openai or gemini)", mc.LLMBackend),
		}
	}

	tool, err := websearch.New(websearch.Options{
		ServerType: mc.ServerType,
		APIKey:     providers.Getenv(deps.Env, websearch.RequiredEnvVar(mc.ServerType)),
		Executable: mc.ServerConfig.ServerExecutable,
		Args:       mc.ServerConfig.ServerArgs,
	})
	if err != nil {
		return nil, &providers.UnavailableError{Provider: Name, Capability: "server_type", Reason: err.Error()}
	}

	p := &Provider{
		cfg:     mc,
		backend: backend,
		env:     deps.Env,
		log:     deps.Log,
		diag:    providers.NewDiagnostics(deps),
		tool:    tool,
	}

	if key := providers.Getenv(deps.Env, backendEnv[backend]); key != "" {
		client, err := providers.NewChatClient(cfg, backend, llm.RelayInfo{
			APIKey:  key,
			APIBase: mc.APIBase,
			Model:   mc.Model,
		})
		if err != nil {
			return nil, &providers.UnavailableError{Provider: Name, Capability: "llm client", Reason: err.Error()}
		}
		p.client = client
	}
	return p, nil
}

// Name implements providers.Provider.
func (p *Provider) Name() string { return Name }

// Backend returns the summarizing backend in use.
func (p *Provider) Backend() string { return p.backend }

// RequiredEnvVars implements providers.Provider: the search server's key
// first, then the summarizing model's.
func (p *Provider) RequiredEnvVars() []string {
	var keys []string
	if key := websearch.RequiredEnvVar(p.cfg.ServerType); key != "" {
		keys = append(keys, key)
	}
	return append(keys, backendEnv[p.backend])
}

// ValidateConfig implements providers.Provider.
func (p *Provider) ValidateConfig(ctx context.Context) bool {
	if !p.diag.RequireEnv(p.env, p.RequiredEnvVars()...) {
		return false
	}
	if p.client == nil {
		p.diag.Problem("%s client not initialized", p.backend)
		return false
	}
	if stub, ok := p.tool.(*websearch.Stub); ok {
		p.diag.Warn("search step for %s is simulated; %q is not started", stub.Name(), stub.Command())
	}
	return true
}

// Search implements providers.Provider. A failed search step is passed on
// to the model as text; a failed model call fails the result.
func (p *Provider) Search(ctx context.Context, query string, info providers.Query) providers.SearchResult {
	results, err := p.tool.Search(ctx, query, p.cfg.MaxResults)
	if err != nil {
		p.log.Warn("Search step failed", zap.String("tool", p.tool.Name()), zap.Error(err))
		results = fmt.Sprintf("Error performing MCP search: %v", err)
	}

	text, err := providers.Chat(ctx, Name, p.client, &llm.Request{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Messages:  p.analysisMessages(query, results),
	})
	if err != nil {
		p.log.Warn("Analysis failed", zap.String("query", query), zap.Error(err))
		return providers.Failed(info, err)
	}
	return providers.Succeeded(info, text)
}

// analysisMessages sends one combined user turn to Claude and a
// system/user pair to the others.
func (p *Provider) analysisMessages(query, results string) []llm.Message {
	user := providers.AnalysisUserMessage(query, results)
	if p.backend == BackendClaude {
		return []llm.Message{{Role: "user", Content: providers.AnalysisSystemPrompt + "\n\n" + user}}
	}
	return []llm.Message{
		{Role: "system", Content: providers.AnalysisSystemPrompt},
		{Role: "user", Content: user},
	}
}
