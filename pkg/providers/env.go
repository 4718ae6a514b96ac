package providers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvSource looks up credential variables.
type EnvSource interface {
	Lookup(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

// Lookup implements EnvSource.
func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is a fixed set of variables.
type MapEnv map[string]string

// Lookup implements EnvSource.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// DotEnv layers a .env file under another source. Values from the base
// source win.
type DotEnv struct {
	base   EnvSource
	values map[string]string
}

// LoadDotEnv reads path with godotenv. A missing file gives an empty layer.
func LoadDotEnv(path string, base EnvSource) (*DotEnv, error) {
	if base == nil {
		base = OSEnv{}
	}
	env := &DotEnv{base: base, values: map[string]string{}}
	if path == "" {
		return env, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return env, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	env.values = values
	return env, nil
}

// Lookup implements EnvSource.
func (d *DotEnv) Lookup(key string) (string, bool) {
	if v, ok := d.base.Lookup(key); ok && v != "" {
		return v, true
	}
	v, ok := d.values[key]
	return v, ok
}

// Getenv returns the trimmed value of key, or "".
func Getenv(src EnvSource, key string) string {
	if src == nil {
		return ""
	}
	v, _ := src.Lookup(key)
	return strings.TrimSpace(v)
}

// MissingEnv returns the keys that are unset or blank in src.
func MissingEnv(src EnvSource, keys []string) []string {
	var missing []string
	for _, key := range keys {
		if Getenv(src, key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
