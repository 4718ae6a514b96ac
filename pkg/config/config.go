// Package config loads the venuescout TOML configuration.
package config

import (
	"path/filepath"
	"sort"
	"strings"
)

// Provider defaults.
const (
	DefaultProviderName = "claude"

	DefaultClaudeModel          = "claude-sonnet-4-20250514"
	DefaultWebSearchToolVersion = "web_search_20250305"

	DefaultOpenRouterModel   = "openai/gpt-4o:online"
	DefaultOpenRouterAPIBase = "https://openrouter.ai/api/v1"

	DefaultOllamaModel   = "llama3.1:latest"
	DefaultOllamaBaseURL = "http://localhost:11434"

	DefaultMCPServerType = "websearch-mcp"
	DefaultMCPModel      = "claude-sonnet-4-20250514"

	DefaultMaxTokens        = 2000
	DefaultMaxSearchResults = 5
	DefaultMCPMaxResults    = 10
	DefaultTimeoutSeconds   = 120

	DefaultRegionPriority = 5
	DefaultMaxQueries     = 10
	DefaultState          = "NY"
	DefaultCronSchedule   = "0 6 * * *"
)

// Config is the root configuration document.
type Config struct {
	Settings        SettingsConfig          `mapstructure:"settings" json:"settings" toml:"settings"`
	SearchProvider  SearchProviderConfig    `mapstructure:"search_provider" json:"search_provider" toml:"search_provider"`
	Regions         map[string]RegionConfig `mapstructure:"regions" json:"regions" toml:"regions"`
	SearchTemplates map[string][]string     `mapstructure:"search_templates" json:"search_templates" toml:"search_templates"`
	Alerts          AlertsConfig            `mapstructure:"alerts" json:"alerts" toml:"alerts"`
	Acts            map[string]ActConfig    `mapstructure:"acts" json:"acts" toml:"acts"`
	Excluded        ExcludedConfig          `mapstructure:"excluded" json:"excluded" toml:"excluded"`
	Notifications   NotificationsConfig     `mapstructure:"notifications" json:"notifications" toml:"notifications"`
	State           StateConfig             `mapstructure:"state" json:"state" toml:"state"`
	Logger          LoggerConfig            `mapstructure:"logger" json:"logger" toml:"logger"`

	// RegionOrder lists region keys in document order. Empty when the
	// configuration was not read from a file.
	RegionOrder []string `mapstructure:"-" json:"-" toml:"-"`

	// ActOrder lists act keys in document order.
	ActOrder []string `mapstructure:"-" json:"-" toml:"-"`

	path string
}

// SettingsConfig holds paths and general behavior.
type SettingsConfig struct {
	State        string `mapstructure:"state" json:"state" toml:"state"`
	DataDir      string `mapstructure:"data_dir" json:"data_dir" toml:"data_dir"`
	ResultsDir   string `mapstructure:"results_dir" json:"results_dir" toml:"results_dir"`
	ReportsDir   string `mapstructure:"reports_dir" json:"reports_dir" toml:"reports_dir"`
	LogsDir      string `mapstructure:"logs_dir" json:"logs_dir" toml:"logs_dir"`
	Database     string `mapstructure:"database" json:"database" toml:"database"`
	EnvFile      string `mapstructure:"env_file" json:"env_file" toml:"env_file"`
	MaxQueries   int    `mapstructure:"max_queries" json:"max_queries" toml:"max_queries"`
	CronSchedule string `mapstructure:"cron_schedule" json:"cron_schedule" toml:"cron_schedule"`

	// Home base recorded by the setup wizard. Informational only.
	BaseZip     string `mapstructure:"base_zip" json:"base_zip,omitempty" toml:"base_zip,omitempty"`
	BaseRegion  string `mapstructure:"base_region" json:"base_region,omitempty" toml:"base_region,omitempty"`
	RadiusMiles int    `mapstructure:"default_radius_miles" json:"default_radius_miles,omitempty" toml:"default_radius_miles,omitempty"`
}

// SearchProviderConfig selects and configures the search backends.
type SearchProviderConfig struct {
	DefaultProvider   string           `mapstructure:"default_provider" json:"default_provider" toml:"default_provider"`
	FallbackProviders []string         `mapstructure:"fallback_providers" json:"fallback_providers" toml:"fallback_providers"`
	Timeout           int              `mapstructure:"timeout" json:"timeout" toml:"timeout"` // seconds per request
	Proxy             string           `mapstructure:"proxy" json:"proxy,omitempty" toml:"proxy,omitempty"`
	Claude            ClaudeConfig     `mapstructure:"claude" json:"claude" toml:"claude"`
	OpenRouter        OpenRouterConfig `mapstructure:"openrouter" json:"openrouter" toml:"openrouter"`
	Ollama            OllamaConfig     `mapstructure:"ollama" json:"ollama" toml:"ollama"`
	MCP               MCPConfig        `mapstructure:"mcp" json:"mcp" toml:"mcp"`
}

// ClaudeConfig configures the Anthropic backend.
type ClaudeConfig struct {
	Model                string `mapstructure:"model" json:"model" toml:"model"`
	MaxTokens            int    `mapstructure:"max_tokens" json:"max_tokens" toml:"max_tokens"`
	WebSearchToolVersion string `mapstructure:"web_search_tool_version" json:"web_search_tool_version" toml:"web_search_tool_version"`
	APIBase              string `mapstructure:"api_base" json:"api_base,omitempty" toml:"api_base,omitempty"`
}

// WithDefaults fills zero fields.
func (c ClaudeConfig) WithDefaults() ClaudeConfig {
	if c.Model == "" {
		c.Model = DefaultClaudeModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.WebSearchToolVersion == "" {
		c.WebSearchToolVersion = DefaultWebSearchToolVersion
	}
	return c
}

// OpenRouterConfig configures the OpenRouter gateway backend.
type OpenRouterConfig struct {
	Model            string `mapstructure:"model" json:"model" toml:"model"`
	MaxTokens        int    `mapstructure:"max_tokens" json:"max_tokens" toml:"max_tokens"`
	MaxSearchResults int    `mapstructure:"max_search_results" json:"max_search_results" toml:"max_search_results"`
	APIBase          string `mapstructure:"api_base" json:"api_base" toml:"api_base"`
	SiteURL          string `mapstructure:"site_url" json:"site_url,omitempty" toml:"site_url,omitempty"`
	AppName          string `mapstructure:"app_name" json:"app_name,omitempty" toml:"app_name,omitempty"`
}

// WithDefaults fills zero fields.
func (c OpenRouterConfig) WithDefaults() OpenRouterConfig {
	if c.Model == "" {
		c.Model = DefaultOpenRouterModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxSearchResults == 0 {
		c.MaxSearchResults = DefaultMaxSearchResults
	}
	if c.APIBase == "" {
		c.APIBase = DefaultOpenRouterAPIBase
	}
	return c
}

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	Model           string `mapstructure:"model" json:"model" toml:"model"`
	BaseURL         string `mapstructure:"base_url" json:"base_url" toml:"base_url"`
	MaxTokens       int    `mapstructure:"max_tokens" json:"max_tokens" toml:"max_tokens"`
	EnableWebSearch bool   `mapstructure:"enable_web_search" json:"enable_web_search" toml:"enable_web_search"`
}

// WithDefaults fills zero fields.
func (c OllamaConfig) WithDefaults() OllamaConfig {
	if c.Model == "" {
		c.Model = DefaultOllamaModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultOllamaBaseURL
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// MCPConfig configures the two-step search-then-summarize backend.
type MCPConfig struct {
	ServerType   string          `mapstructure:"server_type" json:"server_type" toml:"server_type"`
	Model        string          `mapstructure:"model" json:"model" toml:"model"`
	LLMBackend   string          `mapstructure:"llm_backend" json:"llm_backend,omitempty" toml:"llm_backend,omitempty"`
	MaxResults   int             `mapstructure:"max_results" json:"max_results" toml:"max_results"`
	MaxTokens    int             `mapstructure:"max_tokens" json:"max_tokens" toml:"max_tokens"`
	APIBase      string          `mapstructure:"api_base" json:"api_base,omitempty" toml:"api_base,omitempty"`
	ServerConfig MCPServerConfig `mapstructure:"server_config" json:"server_config" toml:"server_config"`
}

// MCPServerConfig describes how the search server would be launched.
type MCPServerConfig struct {
	ServerExecutable string   `mapstructure:"server_executable" json:"server_executable,omitempty" toml:"server_executable,omitempty"`
	ServerArgs       []string `mapstructure:"server_args" json:"server_args,omitempty" toml:"server_args,omitempty"`
}

// WithDefaults fills zero fields.
func (c MCPConfig) WithDefaults() MCPConfig {
	if c.ServerType == "" {
		c.ServerType = DefaultMCPServerType
	}
	if c.Model == "" {
		c.Model = DefaultMCPModel
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMCPMaxResults
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// RegionConfig describes one search region.
type RegionConfig struct {
	Name     string   `mapstructure:"name" json:"name" toml:"name"`
	Priority *int     `mapstructure:"priority" json:"priority,omitempty" toml:"priority,omitempty"`
	Cities   []string `mapstructure:"cities" json:"cities" toml:"cities"`
	Counties []string `mapstructure:"counties" json:"counties,omitempty" toml:"counties,omitempty"`
}

// DisplayName returns the region name, falling back to its key.
func (r RegionConfig) DisplayName(key string) string {
	if strings.TrimSpace(r.Name) != "" {
		return r.Name
	}
	return key
}

// PriorityOrDefault returns the configured priority or DefaultRegionPriority.
func (r RegionConfig) PriorityOrDefault() int {
	if r.Priority == nil {
		return DefaultRegionPriority
	}
	return *r.Priority
}

// AlertsConfig lists keywords that turn search text into opportunities.
type AlertsConfig struct {
	SeekingArtistsKeywords []string `mapstructure:"seeking_artists_keywords" json:"seeking_artists_keywords" toml:"seeking_artists_keywords"`
	FeeMentionKeywords     []string `mapstructure:"fee_mention_keywords" json:"fee_mention_keywords" toml:"fee_mention_keywords"`
}

// ActConfig describes one act looking for gigs.
type ActConfig struct {
	Name          string   `mapstructure:"name" json:"name" toml:"name"`
	Genres        []string `mapstructure:"genres" json:"genres" toml:"genres"`
	VenueTypes    []string `mapstructure:"venue_types" json:"venue_types" toml:"venue_types"`
	MinCapacity   int      `mapstructure:"min_capacity" json:"min_capacity,omitempty" toml:"min_capacity,omitempty"`
	MaxCapacity   int      `mapstructure:"max_capacity" json:"max_capacity,omitempty" toml:"max_capacity,omitempty"`
	IdealCapacity int      `mapstructure:"ideal_capacity" json:"ideal_capacity,omitempty" toml:"ideal_capacity,omitempty"`
	Members       int      `mapstructure:"members" json:"members,omitempty" toml:"members,omitempty"`
	MinFee        int      `mapstructure:"min_fee" json:"min_fee,omitempty" toml:"min_fee,omitempty"`
	MaxFee        int      `mapstructure:"max_fee" json:"max_fee,omitempty" toml:"max_fee,omitempty"`
	AvailableDays []string `mapstructure:"available_days" json:"available_days,omitempty" toml:"available_days,omitempty"`

	RequiresStage       *bool   `mapstructure:"requires_stage" json:"requires_stage,omitempty" toml:"requires_stage,omitempty"`
	RequiresSoundSystem *bool   `mapstructure:"requires_sound_system" json:"requires_sound_system,omitempty" toml:"requires_sound_system,omitempty"`
	SetLengthHours      float64 `mapstructure:"set_length_hours" json:"set_length_hours,omitempty" toml:"set_length_hours,omitempty"`

	Notes         string   `mapstructure:"notes" json:"notes,omitempty" toml:"notes,omitempty"`
}

// ExcludedConfig seeds the exclusion list.
type ExcludedConfig struct {
	Venues []ExcludedVenueConfig `mapstructure:"venues" json:"venues" toml:"venues"`
}

// ExcludedVenueConfig is one exclusion entry.
type ExcludedVenueConfig struct {
	Name         string `mapstructure:"name" json:"name" toml:"name"`
	City         string `mapstructure:"city" json:"city" toml:"city"`
	Reason       string `mapstructure:"reason" json:"reason" toml:"reason"`
	DateExcluded string `mapstructure:"date_excluded" json:"date_excluded,omitempty" toml:"date_excluded,omitempty"`
	Notes        string `mapstructure:"notes" json:"notes,omitempty" toml:"notes,omitempty"`
}

// NotificationsConfig configures opportunity notifications.
type NotificationsConfig struct {
	Slack    SlackConfig    `mapstructure:"slack" json:"slack" toml:"slack"`
	Telegram TelegramConfig `mapstructure:"telegram" json:"telegram" toml:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord" json:"discord" toml:"discord"`
}

// SlackConfig configures Slack notifications.
type SlackConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled" toml:"enabled"`
	BotToken string `mapstructure:"bot_token" json:"bot_token" toml:"bot_token"`
	Channel  string `mapstructure:"channel" json:"channel" toml:"channel"`
}

// TelegramConfig configures Telegram notifications.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled" toml:"enabled"`
	BotToken string `mapstructure:"bot_token" json:"bot_token" toml:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id" json:"chat_id" toml:"chat_id"`
}

// DiscordConfig configures Discord notifications.
type DiscordConfig struct {
	Enabled   bool   `mapstructure:"enabled" json:"enabled" toml:"enabled"`
	BotToken  string `mapstructure:"bot_token" json:"bot_token" toml:"bot_token"`
	ChannelID string `mapstructure:"channel_id" json:"channel_id" toml:"channel_id"`
}

// StateConfig configures where run state is kept.
type StateConfig struct {
	Backend  string      `mapstructure:"backend" json:"backend" toml:"backend"` // "file" or "redis"
	FilePath string      `mapstructure:"file_path" json:"file_path" toml:"file_path"`
	Redis    RedisConfig `mapstructure:"redis" json:"redis" toml:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" json:"addr" toml:"addr"`
	Password string `mapstructure:"password" json:"password,omitempty" toml:"password,omitempty"`
	DB       int    `mapstructure:"db" json:"db" toml:"db"`
	Prefix   string `mapstructure:"prefix" json:"prefix" toml:"prefix"`
}

// LoggerConfig mirrors logger.Config in file form.
type LoggerConfig struct {
	Level        string `mapstructure:"level" json:"level" toml:"level"`
	ConsoleLevel string `mapstructure:"console_level" json:"console_level" toml:"console_level"`
	OutputPath   string `mapstructure:"output_path" json:"output_path" toml:"output_path"`
	MaxSize      int    `mapstructure:"max_size" json:"max_size" toml:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups" json:"max_backups" toml:"max_backups"`
	MaxAge       int    `mapstructure:"max_age" json:"max_age" toml:"max_age"`
	Compress     bool   `mapstructure:"compress" json:"compress" toml:"compress"`
	Development  bool   `mapstructure:"development" json:"development" toml:"development"`
}

// DefaultConfig returns the configuration used when no file sets a value.
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			State:        DefaultState,
			DataDir:      "data",
			ResultsDir:   filepath.Join("data", "search_results"),
			ReportsDir:   "reports",
			LogsDir:      "logs",
			Database:     filepath.Join("data", "venues.db"),
			EnvFile:      ".env",
			MaxQueries:   DefaultMaxQueries,
			CronSchedule: DefaultCronSchedule,
		},
		SearchProvider: SearchProviderConfig{
			DefaultProvider: DefaultProviderName,
			Timeout:         DefaultTimeoutSeconds,
			Claude:          ClaudeConfig{}.WithDefaults(),
			OpenRouter:      OpenRouterConfig{}.WithDefaults(),
			Ollama:          OllamaConfig{}.WithDefaults(),
			MCP:             MCPConfig{}.WithDefaults(),
		},
		Regions:         map[string]RegionConfig{},
		SearchTemplates: map[string][]string{},
		Acts:            map[string]ActConfig{},
		State: StateConfig{
			Backend:  "file",
			FilePath: filepath.Join("data", "state.json"),
			Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "venuescout:"},
		},
		Logger: LoggerConfig{
			Level:        "info",
			ConsoleLevel: "warn",
			OutputPath:   filepath.Join("logs", "venuescout.log"),
			MaxSize:      20,
			MaxBackups:   5,
			MaxAge:       30,
			Compress:     true,
		},
	}
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// OrderedRegionKeys returns region keys in document order. Keys missing
// from RegionOrder (or all keys, when no order is known) follow, sorted.
func (c *Config) OrderedRegionKeys() []string {
	return orderedKeys(c.RegionOrder, c.Regions)
}

// OrderedActKeys returns act keys in document order, then sorted leftovers.
func (c *Config) OrderedActKeys() []string {
	return orderedKeys(c.ActOrder, c.Acts)
}

// ProviderCandidates returns the primary provider name followed by the
// fallback list. override wins over the configured default when non-empty.
func (c *Config) ProviderCandidates(override string) []string {
	primary := strings.TrimSpace(override)
	if primary == "" {
		primary = strings.TrimSpace(c.SearchProvider.DefaultProvider)
	}
	if primary == "" {
		primary = DefaultProviderName
	}

	out := make([]string, 0, 1+len(c.SearchProvider.FallbackProviders))
	out = append(out, primary)
	for _, name := range c.SearchProvider.FallbackProviders {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func orderedKeys[V any](order []string, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, key := range order {
		if _, ok := m[key]; ok && !seen[key] {
			out = append(out, key)
			seen[key] = true
		}
	}

	var rest []string
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
