// Package state keeps small pieces of run state (the last search run) in a
// key-value store backed by a JSON file or redis.
package state

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("state: key not found")

// KV is a JSON-valued key-value store.
type KV interface {
	// Get decodes the value stored under key into out.
	Get(ctx context.Context, key string, out interface{}) error

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value interface{}) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys, sorted.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// BackendType names a KV implementation.
type BackendType string

const (
	BackendFile  BackendType = "file"
	BackendRedis BackendType = "redis"
)

// KeyLastRun holds the LastRun of the most recent batch.
const KeyLastRun = "last_run"

// LastRun summarizes the most recent search batch.
type LastRun struct {
	RunID      string `json:"run_id"`
	Date       string `json:"date"`
	Provider   string `json:"provider"`
	Path       string `json:"path"`
	QueriesRun int    `json:"queries_run"`
	Successful int    `json:"successful"`
}

// SaveLastRun records run under KeyLastRun.
func SaveLastRun(ctx context.Context, kv KV, run LastRun) error {
	if err := kv.Set(ctx, KeyLastRun, run); err != nil {
		return fmt.Errorf("saving last run: %w", err)
	}
	return nil
}

// LoadLastRun returns the recorded run. ok is false when no run was recorded.
func LoadLastRun(ctx context.Context, kv KV) (run LastRun, ok bool, err error) {
	err = kv.Get(ctx, KeyLastRun, &run)
	if errors.Is(err, ErrNotFound) {
		return LastRun{}, false, nil
	}
	if err != nil {
		return LastRun{}, false, fmt.Errorf("loading last run: %w", err)
	}
	return run, true, nil
}
