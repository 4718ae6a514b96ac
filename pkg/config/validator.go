package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether an error was recorded for field.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validator validates configuration. Provider names are not checked here;
// the provider registry owns them.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	v.validateSettings(&cfg.Settings)
	v.validateSearchProvider(&cfg.SearchProvider)
	v.validateRegions(cfg.Regions)
	v.validateActs(cfg.Acts)
	v.validateNotifications(&cfg.Notifications)
	v.validateState(&cfg.State)
	v.validateLogger(&cfg.Logger)

	if len(v.errors) > 0 {
		return v.errors
	}

	return nil
}

func (v *Validator) validateSettings(cfg *SettingsConfig) {
	if cfg.MaxQueries < 0 {
		v.addError("settings.max_queries", "max_queries must be non-negative")
	}
	if strings.TrimSpace(cfg.ResultsDir) == "" {
		v.addError("settings.results_dir", "results_dir is required")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		v.addError("settings.database", "database path is required")
	}
}

func (v *Validator) validateSearchProvider(cfg *SearchProviderConfig) {
	if cfg.Timeout < 0 {
		v.addError("search_provider.timeout", "timeout must be non-negative")
	}
	if cfg.Proxy != "" {
		if _, err := url.Parse(cfg.Proxy); err != nil {
			v.addError("search_provider.proxy", fmt.Sprintf("invalid URL: %v", err))
		}
	}

	tokenLimits := []struct {
		field string
		value int
	}{
		{"search_provider.claude.max_tokens", cfg.Claude.MaxTokens},
		{"search_provider.openrouter.max_tokens", cfg.OpenRouter.MaxTokens},
		{"search_provider.ollama.max_tokens", cfg.Ollama.MaxTokens},
		{"search_provider.mcp.max_tokens", cfg.MCP.MaxTokens},
	}
	for _, limit := range tokenLimits {
		if limit.value < 0 {
			v.addError(limit.field, "max_tokens must be non-negative")
		}
	}

	if cfg.OpenRouter.MaxSearchResults < 0 {
		v.addError("search_provider.openrouter.max_search_results", "max_search_results must be non-negative")
	}
	if cfg.MCP.MaxResults < 0 {
		v.addError("search_provider.mcp.max_results", "max_results must be non-negative")
	}
	if base := cfg.Ollama.BaseURL; base != "" {
		if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
			v.addError("search_provider.ollama.base_url", "base_url must be an absolute URL")
		}
	}
}

func (v *Validator) validateRegions(regions map[string]RegionConfig) {
	for _, key := range orderedKeys(nil, regions) {
		region := regions[key]
		prefix := "regions." + key
		if region.Priority != nil && *region.Priority < 0 {
			v.addError(prefix+".priority", "priority must be non-negative")
		}
		if strings.TrimSpace(region.Name) != "" && len(region.Cities) == 0 {
			v.addError(prefix+".cities", "at least one city is required")
		}
		for i, city := range region.Cities {
			if strings.TrimSpace(city) == "" {
				v.addError(fmt.Sprintf("%s.cities[%d]", prefix, i), "city must not be empty")
			}
		}
	}
}

func (v *Validator) validateActs(acts map[string]ActConfig) {
	for _, key := range orderedKeys(nil, acts) {
		act := acts[key]
		prefix := "acts." + key
		if act.MinCapacity > 0 && act.MaxCapacity > 0 && act.MinCapacity > act.MaxCapacity {
			v.addError(prefix+".min_capacity", "min_capacity exceeds max_capacity")
		}
		if act.MinFee > 0 && act.MaxFee > 0 && act.MinFee > act.MaxFee {
			v.addError(prefix+".min_fee", "min_fee exceeds max_fee")
		}
	}
}

func (v *Validator) validateNotifications(cfg *NotificationsConfig) {
	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			v.addError("notifications.slack.bot_token", "bot_token is required when Slack is enabled")
		}
		if cfg.Slack.Channel == "" {
			v.addError("notifications.slack.channel", "channel is required when Slack is enabled")
		}
	}

	if cfg.Telegram.Enabled {
		if cfg.Telegram.BotToken == "" {
			v.addError("notifications.telegram.bot_token", "bot_token is required when Telegram is enabled")
		}
		if cfg.Telegram.ChatID == 0 {
			v.addError("notifications.telegram.chat_id", "chat_id is required when Telegram is enabled")
		}
	}

	if cfg.Discord.Enabled {
		if cfg.Discord.BotToken == "" {
			v.addError("notifications.discord.bot_token", "bot_token is required when Discord is enabled")
		}
		if cfg.Discord.ChannelID == "" {
			v.addError("notifications.discord.channel_id", "channel_id is required when Discord is enabled")
		}
	}
}

func (v *Validator) validateState(cfg *StateConfig) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		if strings.TrimSpace(cfg.FilePath) == "" {
			v.addError("state.file_path", "file_path is required for the file backend")
		}
	case "redis":
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			v.addError("state.redis.addr", "addr is required for the redis backend")
		}
		if cfg.Redis.DB < 0 {
			v.addError("state.redis.db", "db must be non-negative")
		}
	default:
		v.addError("state.backend", "backend must be one of: file, redis")
	}
}

func (v *Validator) validateLogger(cfg *LoggerConfig) {
	if !logger.ValidLevel(logger.Level(cfg.Level)) {
		v.addError("logger.level", "level must be one of: debug, info, warn, error")
	}
	if cfg.ConsoleLevel != "" && !logger.ValidLevel(logger.Level(cfg.ConsoleLevel)) {
		v.addError("logger.console_level", "console_level must be one of: debug, info, warn, error")
	}
	if cfg.MaxSize < 0 {
		v.addError("logger.max_size", "max_size must be non-negative")
	}
}

// addError adds a validation error.
func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// ValidateConfig is a convenience function to validate a configuration.
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.Validate(cfg)
}
