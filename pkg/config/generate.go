package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	tomlv2 "github.com/pelletier/go-toml/v2"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
)

// Setup form limits.
const (
	MinRadiusMiles     = 10
	MaxRadiusMiles     = 200
	DefaultSetLength   = 2.0
	customRegionKey    = "custom_region"
	customRegionName   = "Custom Region"
	backupTimeLayout   = "20060102_150405"
	generatedTimestamp = "2006-01-02 15:04"
)

// CountyRegion maps a county to the region its cities are searched under.
type CountyRegion struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// CountyRegions lists the counties the setup form recognizes. Cities in any
// other county land in a low-priority custom region.
var CountyRegions = map[string]CountyRegion{
	"Ulster":      {"hudson_valley", "Hudson Valley", 1},
	"Dutchess":    {"hudson_valley", "Hudson Valley", 1},
	"Columbia":    {"hudson_valley", "Hudson Valley", 1},
	"Greene":      {"hudson_valley", "Hudson Valley", 1},
	"Orange":      {"hudson_valley", "Hudson Valley", 1},
	"Sullivan":    {"hudson_valley", "Hudson Valley", 1},
	"Albany":      {"capital_district", "Capital District", 2},
	"Schenectady": {"capital_district", "Capital District", 2},
	"Rensselaer":  {"capital_district", "Capital District", 2},
	"Saratoga":    {"capital_district", "Capital District", 2},
	"Delaware":    {"catskills", "Catskills", 1},
	"Westchester": {"nyc_metro", "NYC Metro", 3},
	"Rockland":    {"nyc_metro", "NYC Metro", 3},
	"Putnam":      {"nyc_metro", "NYC Metro", 3},
}

// SetupForm is the input to GenerateConfig. Field names follow the JSON the
// setup wizard posts.
type SetupForm struct {
	ZipCode            string       `json:"zip_code"`
	BaseRegion         string       `json:"base_region"`
	Radius             int          `json:"radius"`
	Acts               []ActProfile `json:"acts"`
	CitiesWithCounties []CityCounty `json:"cities_with_counties"`
	InitDB             bool         `json:"init_db"`
}

// ActProfile is one act as entered in the setup form.
type ActProfile struct {
	Name                string   `json:"name"`
	Genres              []string `json:"genres"`
	Members             int      `json:"members"`
	MinCapacity         int      `json:"min_capacity"`
	MaxCapacity         int      `json:"max_capacity"`
	IdealCapacity       int      `json:"ideal_capacity"`
	MinFee              int      `json:"min_fee"`
	MaxFee              int      `json:"max_fee"`
	VenueTypes          []string `json:"venue_types"`
	AvailableDays       []string `json:"available_days"`
	RequiresStage       *bool    `json:"requires_stage,omitempty"`
	RequiresSoundSystem *bool    `json:"requires_sound_system,omitempty"`
	SetLengthHours      float64  `json:"set_length_hours,omitempty"`
	Notes               string   `json:"notes,omitempty"`
}

// CityCounty pairs a city with the county it lies in.
type CityCounty struct {
	City   string `json:"city"`
	County string `json:"county"`
}

// DetectedRegion is a region derived from the selected cities.
type DetectedRegion struct {
	Key      string
	Name     string
	Priority int
	Cities   []string
	Counties []string
}

// ValidateSettings checks the home base part of the form.
func ValidateSettings(form *SetupForm) error {
	switch {
	case strings.TrimSpace(form.ZipCode) == "":
		return errors.New("Missing required field: zip_code")
	case strings.TrimSpace(form.BaseRegion) == "":
		return errors.New("Missing required field: base_region")
	case form.Radius == 0:
		return errors.New("Missing required field: radius")
	}
	if !isZip(form.ZipCode) {
		return errors.New("Invalid zip code format (must be 5 digits)")
	}
	if form.Radius < MinRadiusMiles || form.Radius > MaxRadiusMiles {
		return fmt.Errorf("Radius must be between %d and %d miles", MinRadiusMiles, MaxRadiusMiles)
	}
	return nil
}

// ValidateActProfile checks one act from the form.
func ValidateActProfile(act *ActProfile) error {
	switch {
	case strings.TrimSpace(act.Name) == "":
		return errors.New("Act name cannot be empty")
	case len(act.Genres) == 0:
		return errors.New("At least one genre must be selected")
	case len(act.VenueTypes) == 0:
		return errors.New("At least one venue type must be selected")
	case len(act.AvailableDays) == 0:
		return errors.New("At least one available day must be selected")
	case act.Members < 1:
		return errors.New("Members must be at least 1")
	case act.MinCapacity < 0 || act.MaxCapacity < 0 || act.IdealCapacity < 0:
		return errors.New("Capacity values must be positive")
	case act.MinCapacity > act.MaxCapacity:
		return errors.New("Min capacity cannot exceed max capacity")
	case act.IdealCapacity < act.MinCapacity || act.IdealCapacity > act.MaxCapacity:
		return errors.New("Ideal capacity must be between min and max")
	case act.MinFee < 0 || act.MaxFee < 0:
		return errors.New("Fee values must be positive")
	case act.MinFee > act.MaxFee:
		return errors.New("Min fee cannot exceed max fee")
	}
	return nil
}

// ValidateForm checks the whole form and returns the first problem found.
func ValidateForm(form *SetupForm) error {
	if err := ValidateSettings(form); err != nil {
		return fmt.Errorf("Settings error: %w", err)
	}
	if len(form.Acts) == 0 {
		return errors.New("At least one act profile is required")
	}
	for i := range form.Acts {
		if err := ValidateActProfile(&form.Acts[i]); err != nil {
			return fmt.Errorf("Act #%d error: %w", i+1, err)
		}
	}
	if len(form.CitiesWithCounties) == 0 {
		return errors.New("At least one city must be selected")
	}
	return nil
}

// DetectRegions groups cities into regions by county. Regions keep the
// order in which their first city appears; counties are sorted.
func DetectRegions(cities []CityCounty) []DetectedRegion {
	var regions []DetectedRegion
	index := map[string]int{}
	counties := map[string]map[string]bool{}

	for _, item := range cities {
		city := strings.TrimSpace(item.City)
		if city == "" {
			continue
		}
		county := strings.TrimSpace(item.County)

		info, ok := CountyRegions[county]
		if !ok {
			info = CountyRegion{Key: customRegionKey, Name: customRegionName, Priority: DefaultRegionPriority}
		}

		i, seen := index[info.Key]
		if !seen {
			i = len(regions)
			index[info.Key] = i
			regions = append(regions, DetectedRegion{Key: info.Key, Name: info.Name, Priority: info.Priority})
			counties[info.Key] = map[string]bool{}
		}
		if !containsString(regions[i].Cities, city) {
			regions[i].Cities = append(regions[i].Cities, city)
		}
		if county != "" {
			counties[info.Key][county] = true
		}
	}

	for i := range regions {
		for county := range counties[regions[i].Key] {
			regions[i].Counties = append(regions[i].Counties, county)
		}
		sort.Strings(regions[i].Counties)
	}
	return regions
}

// ActKey derives a table key from an act name: lowercase, spaces and dashes
// become underscores, anything else that is not a letter or digit is dropped.
func ActKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ConfigFromForm builds a configuration from a validated form. Search
// templates, alert keywords and provider defaults come from StarterConfig.
func ConfigFromForm(form *SetupForm) *Config {
	cfg := StarterConfig()
	cfg.Settings.State = DefaultState
	cfg.Settings.BaseZip = strings.TrimSpace(form.ZipCode)
	cfg.Settings.BaseRegion = strings.TrimSpace(form.BaseRegion)
	cfg.Settings.RadiusMiles = form.Radius
	cfg.Excluded = ExcludedConfig{}

	cfg.Acts = map[string]ActConfig{}
	cfg.ActOrder = nil
	for i, act := range form.Acts {
		key := ActKey(act.Name)
		if key == "" {
			key = fmt.Sprintf("act_%d", i+1)
		}
		base := key
		for n := 2; ; n++ {
			if _, taken := cfg.Acts[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s_%d", base, n)
		}

		setLength := act.SetLengthHours
		if setLength <= 0 {
			setLength = DefaultSetLength
		}
		cfg.Acts[key] = ActConfig{
			Name:                strings.TrimSpace(act.Name),
			Genres:              act.Genres,
			VenueTypes:          act.VenueTypes,
			MinCapacity:         act.MinCapacity,
			MaxCapacity:         act.MaxCapacity,
			IdealCapacity:       act.IdealCapacity,
			Members:             act.Members,
			MinFee:              act.MinFee,
			MaxFee:              act.MaxFee,
			AvailableDays:       act.AvailableDays,
			RequiresStage:       boolOr(act.RequiresStage, true),
			RequiresSoundSystem: boolOr(act.RequiresSoundSystem, true),
			SetLengthHours:      setLength,
			Notes:               strings.TrimSpace(act.Notes),
		}
		cfg.ActOrder = append(cfg.ActOrder, key)
	}

	cfg.Regions = map[string]RegionConfig{}
	cfg.RegionOrder = nil
	for _, region := range DetectRegions(form.CitiesWithCounties) {
		priority := region.Priority
		cfg.Regions[region.Key] = RegionConfig{
			Name:     region.Name,
			Priority: &priority,
			Cities:   region.Cities,
			Counties: region.Counties,
		}
		cfg.RegionOrder = append(cfg.RegionOrder, region.Key)
	}
	return cfg
}

// GenerateConfig validates form and renders it as a TOML document.
func GenerateConfig(form *SetupForm, now time.Time) ([]byte, error) {
	if err := ValidateForm(form); err != nil {
		return nil, err
	}
	body, err := tomlv2.Marshal(ConfigFromForm(form))
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	header := fmt.Sprintf("# Venue Scout configuration\n# Generated by the setup wizard on %s\n\n", now.Format(generatedTimestamp))
	return append([]byte(header), body...), nil
}

// WriteGenerated writes data to path atomically. An existing file is first
// copied to <path>.backup_YYYYMMDD_HHMMSS and the backup path is returned.
func WriteGenerated(path string, data []byte, now time.Time) (string, error) {
	path = ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	var backup string
	if existing, err := os.ReadFile(path); err == nil {
		backup = path + ".backup_" + now.Format(backupTimeLayout)
		if err := fileutil.WriteFileAtomic(backup, existing, 0o644); err != nil {
			return "", fmt.Errorf("backing up config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading existing config: %w", err)
	}

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return backup, fmt.Errorf("writing config: %w", err)
	}
	return backup, nil
}

func isZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func boolOr(v *bool, def bool) *bool {
	if v != nil {
		return v
	}
	return &def
}
