package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CheckReport is the result of checking a configuration file.
type CheckReport struct {
	Path        string
	Exists      bool
	UnknownKeys []string
	Validation  ValidationErrors
}

// OK reports whether the file exists and has no problems.
func (r *CheckReport) OK() bool {
	return r.Exists && len(r.UnknownKeys) == 0 && len(r.Validation) == 0
}

// Check loads the file at path and reports keys that no setting consumes
// as well as validation errors. Misspelled keys are otherwise silently
// ignored by the loader.
func Check(path string) (*CheckReport, error) {
	report := &CheckReport{Path: ResolvePath(path)}

	if _, err := os.Stat(report.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}
	report.Exists = true

	var decoded Config
	md, err := toml.DecodeFile(report.Path, &decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	for _, key := range md.Undecoded() {
		report.UnknownKeys = append(report.UnknownKeys, key.String())
	}

	cfg, err := NewLoader().Load(report.Path)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		report.Validation = verrs
	}

	return report, nil
}

// WriteStarter writes StarterConfig to path. An existing file is kept
// unless force is set.
func WriteStarter(path string, force bool) (string, error) {
	path = ResolvePath(path)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config file already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, fmt.Errorf("creating config directory: %w", err)
	}
	return path, Save(path, StarterConfig())
}

// StarterConfig returns a small working configuration for one region and
// one act.
func StarterConfig() *Config {
	cfg := DefaultConfig()
	cfg.SearchProvider.FallbackProviders = []string{"openrouter", "ollama"}

	priority := 1
	cfg.Regions = map[string]RegionConfig{
		"hudson_valley": {
			Name:     "Hudson Valley",
			Priority: &priority,
			Cities:   []string{"Kingston", "Woodstock", "New Paltz", "Beacon"},
		},
	}
	cfg.SearchTemplates = map[string][]string{
		"new_venues": {
			"new live music venue {city} NY",
			"{city} NY bar live music opening",
		},
		"booking_opportunities": {
			"{city} NY venue seeking musicians",
			"{region} open mic booking",
		},
	}
	cfg.Alerts = AlertsConfig{
		SeekingArtistsKeywords: []string{"seeking musicians", "looking for bands", "booking now", "open mic"},
		FeeMentionKeywords:     []string{"paid gig", "guarantee", "door split"},
	}
	cfg.Acts = map[string]ActConfig{
		"acoustic_duo": {
			Name:          "Acoustic Duo",
			Genres:        []string{"folk", "acoustic", "americana"},
			VenueTypes:    []string{"bar", "restaurant", "brewery", "winery", "cafe"},
			MinCapacity:   20,
			MaxCapacity:   150,
			IdealCapacity: 60,
			Members:       2,
			MinFee:        200,
			MaxFee:        600,
			AvailableDays: []string{"Thursday", "Friday", "Saturday", "Sunday"},
		},
	}
	cfg.Excluded = ExcludedConfig{
		Venues: []ExcludedVenueConfig{{
			Name:   "Example Excluded Venue",
			City:   "Nowhere",
			Reason: "wrong_fit",
		}},
	}
	return cfg
}
