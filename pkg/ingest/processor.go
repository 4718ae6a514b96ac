// Package ingest turns result batches into venues and booking
// opportunities in the venue database.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/search"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

// Notifier receives the opportunities found by a processing run.
type Notifier interface {
	NotifyOpportunities(ctx context.Context, opps []venues.Opportunity) error
}

// Stats summarizes one processing run.
type Stats struct {
	ResultsProcessed int
	VenuesFound      int
	NewVenues        int
	Opportunities    int
	ExcludedSkipped  int
}

// Processor parses batches into the store.
type Processor struct {
	store    *venues.Store
	state    string
	alerts   []Alert
	acts     []venues.Act
	notifier Notifier
	out      io.Writer
	log      *logger.Logger
}

// Options configures a Processor. Zero fields fall back to no notifier,
// os.Stdout and a no-op logger.
type Options struct {
	Notifier Notifier
	Out      io.Writer
	Log      *logger.Logger
}

// NewProcessor builds a Processor from cfg.
func NewProcessor(cfg *config.Config, store *venues.Store, opts Options) *Processor {
	state := strings.TrimSpace(cfg.Settings.State)
	if state == "" {
		state = config.DefaultState
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Processor{
		store: store,
		state: state,
		alerts: []Alert{
			{Type: venues.OpportunitySeekingArtists, Keywords: cfg.Alerts.SeekingArtistsKeywords},
			{Type: venues.OpportunityGoodPay, Keywords: cfg.Alerts.FeeMentionKeywords},
		},
		acts:     venues.ActsFromConfig(cfg),
		notifier: opts.Notifier,
		out:      opts.Out,
		log:      opts.Log,
	}
}

// ProcessFile reads the batch at path and processes it.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Stats, error) {
	fmt.Fprintf(p.out, "Processing results from: %s\n", path)
	batch, err := search.ReadBatch(path)
	if err != nil {
		return Stats{}, err
	}
	return p.Process(ctx, batch)
}

// Process stores the venues and opportunities found in batch. Found
// opportunities are handed to the notifier; a notification failure is
// logged and does not fail processing.
func (p *Processor) Process(ctx context.Context, batch *providers.ResultBatch) (Stats, error) {
	var (
		stats Stats
		found []venues.Opportunity
	)

	for _, result := range batch.Results {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.ResultsProcessed++

		parsed, newVenues, opps, err := p.processResult(ctx, result, &stats)
		if err != nil {
			return stats, err
		}
		found = append(found, opps...)

		if err := p.store.RecordSearch(ctx, venues.SearchRecord{
			Query:              result.Query.Text,
			ResultsCount:       parsed,
			NewVenuesFound:     newVenues,
			OpportunitiesFound: len(opps),
		}); err != nil {
			return stats, err
		}
	}

	fmt.Fprintln(p.out, "\nProcessing complete:")
	fmt.Fprintf(p.out, "  Results processed: %d\n", stats.ResultsProcessed)
	fmt.Fprintf(p.out, "  Venues found: %d\n", stats.VenuesFound)
	fmt.Fprintf(p.out, "  New venues: %d\n", stats.NewVenues)
	fmt.Fprintf(p.out, "  Excluded (skipped): %d\n", stats.ExcludedSkipped)
	fmt.Fprintf(p.out, "  Opportunities: %d\n", stats.Opportunities)

	p.log.Info("Batch processed",
		zap.String("run_id", batch.RunID),
		zap.Int("results", stats.ResultsProcessed),
		zap.Int("new_venues", stats.NewVenues),
		zap.Int("opportunities", stats.Opportunities))

	if p.notifier != nil && len(found) > 0 {
		if err := p.notifier.NotifyOpportunities(ctx, found); err != nil {
			p.log.Warn("Opportunity notification failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (p *Processor) processResult(ctx context.Context, result providers.SearchResult, stats *Stats) (parsedCount, newVenues int, opps []venues.Opportunity, err error) {
	parsed := ParseVenues(result.Text, result.Query)
	stats.VenuesFound += len(parsed)

	var ids []venueRef
	for _, pv := range parsed {
		excluded, err := p.store.IsExcluded(ctx, pv.Name, pv.City)
		if err != nil {
			return 0, 0, nil, err
		}
		if excluded {
			stats.ExcludedSkipped++
			p.log.Debug("Skipping excluded venue", zap.String("name", pv.Name), zap.String("city", pv.City))
			continue
		}

		id, created, err := p.store.SaveVenue(ctx, venues.Venue{
			Name:   pv.Name,
			City:   pv.City,
			Region: pv.Region,
			State:  p.state,
			Source: venues.SourceWebSearch,
			Notes:  pv.RawText,
		})
		if err != nil {
			return 0, 0, nil, err
		}
		if created {
			newVenues++
		}
		ids = append(ids, venueRef{id: id, name: pv.Name})
	}
	stats.NewVenues += newVenues

	opps = ExtractOpportunities(result.Text, p.alerts)
	suitable := p.suitableActs(result.Query.Text)
	for i := range opps {
		opps[i].SuitableActs = suitable
		for _, ref := range ids {
			if strings.Contains(strings.ToLower(opps[i].Description), strings.ToLower(ref.name)) {
				opps[i].VenueID = ref.id
				opps[i].VenueName = ref.name
				break
			}
		}
		if _, err := p.store.AddOpportunity(ctx, opps[i]); err != nil {
			return 0, 0, nil, err
		}
	}
	stats.Opportunities += len(opps)
	return len(parsed), newVenues, opps, nil
}

type venueRef struct {
	id   string
	name string
}

// suitableActs matches acts against the query text: an act fits when one
// of its genres or venue types appears in it.
func (p *Processor) suitableActs(queryText string) []string {
	lower := strings.ToLower(queryText)
	var mentioned []string
	for _, act := range p.acts {
		for _, g := range act.Genres {
			if g = strings.ToLower(strings.TrimSpace(g)); g != "" && strings.Contains(lower, g) {
				mentioned = append(mentioned, g)
			}
		}
	}
	return venues.MatchActs(p.acts, lower, mentioned)
}
