// Package providers defines the search provider contract, the registry that
// constructs providers by name, and the result types every backend returns.
package providers

import (
	"context"
	"time"
)

// Provider executes venue searches against one backend.
type Provider interface {
	// Search runs one query. Backend failures are reported through the
	// returned result, never as a panic or separate error.
	Search(ctx context.Context, query string, info Query) SearchResult

	// ValidateConfig checks credentials, capabilities and reachable
	// services. Diagnostics go to the provider's diagnostic writer.
	ValidateConfig(ctx context.Context) bool

	// RequiredEnvVars lists the credential variables the backend reads.
	RequiredEnvVars() []string

	// Name is the registry key, also written into result batches.
	Name() string
}

// Query is one unit of search work.
type Query struct {
	Text     string `json:"query"`
	Category string `json:"type"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Priority int    `json:"priority"`
}

// Query categories.
const (
	CategoryNewVenues            = "new_venues"
	CategoryBookingOpportunities = "booking_opportunities"
	CategoryAdhoc                = "adhoc"
)

// SearchResult is the normalized outcome of one query.
type SearchResult struct {
	Query     Query  `json:"query_info"`
	Text      string `json:"text"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// ResultBatch is the serialized outcome of one run.
type ResultBatch struct {
	RunID      string         `json:"run_id"`
	Date       string         `json:"date"`
	Provider   string         `json:"provider"`
	QueriesRun int            `json:"queries_run"`
	Successful int            `json:"successful"`
	Results    []SearchResult `json:"results"`
}

// CountSuccessful returns the number of successful results.
func (b *ResultBatch) CountSuccessful() int {
	n := 0
	for _, r := range b.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// Now is the clock used for result timestamps.
var Now = time.Now

// Succeeded builds a successful result.
func Succeeded(info Query, text string) SearchResult {
	return SearchResult{
		Query:     info,
		Text:      text,
		Success:   true,
		Timestamp: Now().Format(time.RFC3339),
	}
}

// Failed builds a failed result carrying err's message.
func Failed(info Query, err error) SearchResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return SearchResult{
		Query:     info,
		Success:   false,
		Timestamp: Now().Format(time.RFC3339),
		Error:     msg,
	}
}
