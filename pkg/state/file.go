package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// FileStore keeps every key in one JSON document. Each write replaces the
// file atomically.
type FileStore struct {
	log  *logger.Logger
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewFileStore opens the store at path. A missing file starts empty.
func NewFileStore(log *logger.Logger, path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("state file path is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &FileStore{
		log:  log,
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading state file: %w", err)
	case len(raw) > 0:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parsing state file %s: %w", path, err)
		}
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Get implements KV.
func (s *FileStore) Get(ctx context.Context, key string, out interface{}) error {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

// Set implements KV.
func (s *FileStore) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flush()
}

// Delete implements KV.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// Keys implements KV.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements KV. Writes are already on disk.
func (s *FileStore) Close() error { return nil }

// flush must be called with mu held.
func (s *FileStore) flush() error {
	if err := fileutil.WriteJSONAtomic(s.path, s.data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	s.log.Debug("State saved", zap.String("path", s.path), zap.Int("keys", len(s.data)))
	return nil
}
