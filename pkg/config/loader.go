package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	tomlv2 "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
)

const (
	// ConfigPathEnv overrides the default configuration path.
	ConfigPathEnv = "VENUESCOUT_CONFIG_FILE"

	// EnvPrefix prefixes environment overrides, e.g.
	// VENUESCOUT_SEARCH_PROVIDER_DEFAULT_PROVIDER.
	EnvPrefix = "VENUESCOUT"
)

// DefaultPath is the configuration file used when none is given.
var DefaultPath = filepath.Join("config", "venues.toml")

// envKeys are the scalar settings that may be overridden from the environment.
var envKeys = []string{
	"settings.state",
	"settings.data_dir",
	"settings.results_dir",
	"settings.reports_dir",
	"settings.logs_dir",
	"settings.database",
	"settings.env_file",
	"settings.max_queries",
	"search_provider.default_provider",
	"search_provider.fallback_providers",
	"search_provider.timeout",
	"search_provider.proxy",
	"search_provider.claude.model",
	"search_provider.openrouter.model",
	"search_provider.ollama.model",
	"search_provider.ollama.base_url",
	"search_provider.mcp.server_type",
	"search_provider.mcp.model",
	"state.backend",
	"state.redis.addr",
	"state.redis.password",
	"logger.level",
}

// Loader handles configuration loading with Viper.
type Loader struct {
	viper *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	return &Loader{viper: v}
}

// Load reads the configuration at path over the defaults. An empty path
// falls back to $VENUESCOUT_CONFIG_FILE and then DefaultPath. A missing
// file is not an error: the defaults (with empty regions, templates and
// acts) are returned.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = ResolvePath(path)

	l.viper.SetConfigFile(cfg.path)
	if err := l.viper.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := l.viper.Unmarshal(cfg); err != nil {
				return nil, fmt.Errorf("unmarshaling config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := l.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	regionOrder, actOrder, err := documentOrder(cfg.path)
	if err != nil {
		return nil, err
	}
	cfg.RegionOrder = regionOrder
	cfg.ActOrder = actOrder

	normalize(cfg)
	return cfg, nil
}

// GetConfigPath returns the path of the loaded config file.
func (l *Loader) GetConfigPath() string {
	return l.viper.ConfigFileUsed()
}

// ResolvePath applies the path fallbacks used by Load.
func ResolvePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigPathEnv))
	}
	if path == "" {
		path = DefaultPath
	}
	return path
}

// Save writes cfg as TOML to path atomically.
func Save(path string, cfg *Config) error {
	data, err := tomlv2.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// documentOrder returns region and act keys in the order they appear in the
// file. Viper decodes tables into Go maps, which lose that order.
func documentOrder(path string) (regions, acts []string, err error) {
	var raw map[string]interface{}
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("reading key order: %w", err)
	}

	for _, key := range md.Keys() {
		if len(key) != 2 {
			continue
		}
		// Viper lowercases map keys.
		name := strings.ToLower(key[1])
		switch key[0] {
		case "regions":
			regions = append(regions, name)
		case "acts":
			acts = append(acts, name)
		}
	}
	return regions, acts, nil
}

// normalize cleans values that are valid but awkward to consume.
func normalize(cfg *Config) {
	if cfg.Regions == nil {
		cfg.Regions = map[string]RegionConfig{}
	}
	if cfg.SearchTemplates == nil {
		cfg.SearchTemplates = map[string][]string{}
	}
	if cfg.Acts == nil {
		cfg.Acts = map[string]ActConfig{}
	}
	cfg.SearchProvider.DefaultProvider = strings.TrimSpace(cfg.SearchProvider.DefaultProvider)
	cfg.State.Backend = strings.ToLower(strings.TrimSpace(cfg.State.Backend))
}
