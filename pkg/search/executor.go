// Package search runs query batches through a provider, writes result
// batches, and picks the provider through the fallback chain.
package search

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

const progressQueryWidth = 50

// Executor runs queries sequentially and reports progress.
type Executor struct {
	out io.Writer
	log *logger.Logger
}

// NewExecutor creates an executor. Progress lines go to out.
func NewExecutor(out io.Writer, log *logger.Logger) *Executor {
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{out: out, log: log}
}

// Execute runs queries in order with no retries and returns the batch.
func Execute(ctx context.Context, p providers.Provider, queries []providers.Query) providers.ResultBatch {
	return NewExecutor(nil, nil).Execute(ctx, p, queries)
}

// Execute runs every query once through p. Once ctx is done the remaining
// queries are recorded as failed without calling the provider.
func (e *Executor) Execute(ctx context.Context, p providers.Provider, queries []providers.Query) providers.ResultBatch {
	batch := providers.ResultBatch{
		RunID:      newRunID(),
		Date:       providers.Now().Format(time.RFC3339),
		Provider:   p.Name(),
		QueriesRun: len(queries),
		Results:    make([]providers.SearchResult, 0, len(queries)),
	}
	log := e.log.WithFields(zap.String("run_id", batch.RunID), zap.String("provider", batch.Provider))

	for i, q := range queries {
		fmt.Fprintf(e.out, "[%d/%d] Searching: %s...\n", i+1, len(queries), truncate(q.Text, progressQueryWidth))

		var res providers.SearchResult
		if err := ctx.Err(); err != nil {
			res = providers.Failed(q, err)
		} else {
			res = p.Search(ctx, q.Text, q)
		}
		batch.Results = append(batch.Results, res)

		if res.Success {
			fmt.Fprintf(e.out, "    ✓ Complete (%d chars)\n", len([]rune(res.Text)))
			log.Debug("Query complete", zap.Int("index", i+1), zap.String("query", q.Text), zap.Int("chars", len(res.Text)))
		} else {
			fmt.Fprintf(e.out, "    ✗ Error: %s\n", res.Error)
			log.Warn("Query failed", zap.Int("index", i+1), zap.String("query", q.Text), zap.String("error", res.Error))
		}
	}

	batch.Successful = batch.CountSuccessful()
	log.Info("Batch finished", zap.Int("queries", batch.QueriesRun), zap.Int("successful", batch.Successful))
	return batch
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
