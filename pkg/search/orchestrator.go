package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/query"
	"github.com/michaelcolletti/venue-research-agent/pkg/state"
)

// Options configures an Orchestrator. Zero fields get defaults.
type Options struct {
	// Registry resolves provider names. Defaults to providers.Default().
	Registry *providers.Registry

	// Deps is handed to every provider factory.
	Deps providers.Deps

	// State receives the last run record. Nil disables recording.
	State state.KV

	// Out receives progress and summary lines.
	Out io.Writer

	Log *logger.Logger
}

// RunReport describes a completed daily run.
type RunReport struct {
	Batch    providers.ResultBatch
	Path     string
	Attempts []providers.Attempt
}

// Orchestrator selects a provider from the fallback chain and runs batches
// through it.
type Orchestrator struct {
	cfg      *config.Config
	registry *providers.Registry
	deps     providers.Deps
	kv       state.KV
	out      io.Writer
	log      *logger.Logger
}

// NewOrchestrator creates an orchestrator for cfg.
func NewOrchestrator(cfg *config.Config, opts Options) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Registry == nil {
		opts.Registry = providers.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Deps.Out == nil {
		opts.Deps.Out = opts.Out
	}
	if opts.Deps.Log == nil {
		opts.Deps.Log = opts.Log
	}

	return &Orchestrator{
		cfg:      cfg,
		registry: opts.Registry,
		deps:     opts.Deps,
		kv:       opts.State,
		out:      opts.Out,
		log:      opts.Log.Named("search"),
	}
}

// Candidates returns the provider names to try, primary first, with
// case-insensitive duplicates removed.
func (o *Orchestrator) Candidates(override string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range o.cfg.ProviderCandidates(override) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Select returns the first candidate that constructs and validates. When
// every candidate fails it returns *providers.FatalOrchestrationError.
func (o *Orchestrator) Select(ctx context.Context, override string) (providers.Provider, error) {
	p, _, err := o.selectProvider(ctx, override)
	return p, err
}

func (o *Orchestrator) selectProvider(ctx context.Context, override string) (providers.Provider, []providers.Attempt, error) {
	var attempts []providers.Attempt
	for _, name := range o.Candidates(override) {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		p, rejected := o.tryProvider(ctx, name)
		if rejected != nil {
			attempts = append(attempts, *rejected)
			continue
		}
		o.log.Info("Using provider", zap.String("provider", p.Name()), zap.Int("rejected", len(attempts)))
		fmt.Fprintf(o.out, "✓ Using provider: %s\n", p.Name())
		return p, attempts, nil
	}

	return nil, attempts, &providers.FatalOrchestrationError{Attempts: attempts}
}

// tryProvider constructs and validates name. A non-nil Attempt says why the
// provider was rejected.
func (o *Orchestrator) tryProvider(ctx context.Context, name string) (providers.Provider, *providers.Attempt) {
	fmt.Fprintf(o.out, "Trying provider: %s\n", name)
	p, err := o.registry.Create(name, o.cfg, o.deps)
	if err != nil {
		o.log.Warn("Provider unavailable", zap.String("provider", name), zap.Error(err))
		fmt.Fprintf(o.out, "✗ Provider %s unavailable: %v\n", name, err)
		return nil, &providers.Attempt{Provider: name, Reason: rejectReason(err)}
	}

	if !p.ValidateConfig(ctx) {
		o.log.Warn("Provider failed validation", zap.String("provider", p.Name()))
		fmt.Fprintf(o.out, "✗ Provider %s failed validation\n", p.Name())
		return nil, &providers.Attempt{Provider: p.Name(), Reason: "validation failed"}
	}
	return p, nil
}

func rejectReason(err error) string {
	var unknown *providers.UnknownProviderError
	if errors.As(err, &unknown) {
		return "unknown provider"
	}
	return err.Error()
}

// RunDaily selects a provider, builds at most max queries (max <= 0 means
// all), runs them, writes the batch and records the run. No batch is
// written when selection fails.
func (o *Orchestrator) RunDaily(ctx context.Context, override string, max int) (*RunReport, error) {
	p, attempts, err := o.selectProvider(ctx, override)
	if err != nil {
		return nil, err
	}

	queries := query.Build(o.cfg, max)
	fmt.Fprintf(o.out, "Running %d searches with %s\n\n", len(queries), p.Name())

	batch := NewExecutor(o.out, o.log).Execute(ctx, p, queries)
	path, err := WriteBatch(o.cfg.Settings.ResultsDir, batch)
	if err != nil {
		return nil, err
	}

	if o.kv != nil {
		run := state.LastRun{
			RunID:      batch.RunID,
			Date:       batch.Date,
			Provider:   batch.Provider,
			Path:       path,
			QueriesRun: batch.QueriesRun,
			Successful: batch.Successful,
		}
		// The batch is on disk; a state failure only loses the status line.
		if err := state.SaveLastRun(ctx, o.kv, run); err != nil {
			o.log.Warn("Recording last run failed", zap.Error(err))
		}
	}

	fmt.Fprintf(o.out, "\nSearch complete: %d/%d successful\n", batch.Successful, batch.QueriesRun)
	fmt.Fprintf(o.out, "Results saved to: %s\n", path)
	o.log.Info("Daily run complete",
		zap.String("run_id", batch.RunID),
		zap.String("provider", batch.Provider),
		zap.Int("queries", batch.QueriesRun),
		zap.Int("successful", batch.Successful),
		zap.String("path", path))

	return &RunReport{Batch: batch, Path: path, Attempts: attempts}, nil
}

// RunSingle runs one ad-hoc query with the primary provider only: override
// when set, otherwise the configured default. The fallback chain is not
// consulted, so an unusable provider returns *providers.FatalOrchestrationError
// naming it. Nothing is written to the results directory.
func (o *Orchestrator) RunSingle(ctx context.Context, override, text string) (providers.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return providers.SearchResult{}, err
	}

	name := o.cfg.ProviderCandidates(override)[0]
	p, rejected := o.tryProvider(ctx, name)
	if rejected != nil {
		return providers.SearchResult{}, &providers.FatalOrchestrationError{Attempts: []providers.Attempt{*rejected}}
	}

	res := p.Search(ctx, text, query.Adhoc(text))
	if !res.Success {
		o.log.Warn("Ad-hoc query failed", zap.String("provider", p.Name()), zap.String("error", res.Error))
	}
	return res, nil
}
