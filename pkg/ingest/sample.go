package ingest

import (
	"path/filepath"
	"time"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

// SampleFileName is the name Sample writes under.
const SampleFileName = "sample_results.json"

// SampleBatch returns a two-result batch for trying the pipeline without
// an API key.
func SampleBatch(now time.Time) providers.ResultBatch {
	ts := now.Format(time.RFC3339)
	results := []providers.SearchResult{
		{
			Query: providers.Query{
				Text:     "Kingston NY live music venues",
				Category: providers.CategoryNewVenues,
				Region:   "Hudson Valley",
				City:     "Kingston",
				Priority: 1,
			},
			Text: "\nBSP Kingston - Kingston, NY - Live music venue featuring indie and alternative acts.\n" +
				"Keegan Ales - Kingston, NY - Brewery with live music on weekends.\n" +
				"The Anchor - Kingston, New York - Bar and music venue, seeking local musicians.\n" +
				"Stockade Tavern - Kingston - Historic tavern with occasional live music.\n",
			Success:   true,
			Timestamp: ts,
		},
		{
			Query: providers.Query{
				Text:     "Woodstock NY jazz clubs",
				Category: providers.CategoryNewVenues,
				Region:   "Hudson Valley",
				City:     "Woodstock",
				Priority: 1,
			},
			Text: "\nThe Colony - Woodstock, NY - Legendary music venue, all genres welcome.\n" +
				"Bearsville Theater - Woodstock - Concert venue booking live music acts.\n" +
				"Looking for musicians to play our new outdoor series this summer!\n",
			Success:   true,
			Timestamp: ts,
		},
	}
	return providers.ResultBatch{
		RunID:      "sample",
		Date:       ts,
		Provider:   "sample",
		QueriesRun: len(results),
		Successful: len(results),
		Results:    results,
	}
}

// Sample writes SampleBatch into dir and returns the path.
func Sample(dir string) (string, error) {
	path := filepath.Join(dir, SampleFileName)
	if err := fileutil.WriteJSONAtomic(path, SampleBatch(providers.Now()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
