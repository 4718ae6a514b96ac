package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

// BatchFileName returns the file name for a batch started at t.
func BatchFileName(t time.Time) string {
	return "daily_" + t.Format("20060102_150405") + ".json"
}

// WriteBatch writes batch into dir atomically and returns the path. The
// file is named after the batch date, or the current time if the date
// does not parse. An existing batch is never replaced: on a name clash the
// run id is added to the name.
func WriteBatch(dir string, batch providers.ResultBatch) (string, error) {
	started, err := time.Parse(time.RFC3339, batch.Date)
	if err != nil {
		started = providers.Now()
	}

	name := BatchFileName(started)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		suffix := batch.RunID
		if suffix == "" {
			suffix = fmt.Sprintf("%d", time.Now().UnixNano())
		}
		path = filepath.Join(dir, strings.TrimSuffix(name, ".json")+"_"+suffix+".json")
	}
	if err := fileutil.WriteJSONAtomic(path, batch, 0o644); err != nil {
		return "", fmt.Errorf("writing result batch: %w", err)
	}
	return path, nil
}

// ReadBatch loads a batch written by WriteBatch.
func ReadBatch(path string) (*providers.ResultBatch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result batch: %w", err)
	}
	var batch providers.ResultBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("parsing result batch %s: %w", path, err)
	}
	return &batch, nil
}
