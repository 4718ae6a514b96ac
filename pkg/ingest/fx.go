package ingest

import (
	"go.uber.org/fx"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/notify"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

// Module provides the batch Processor for fx.
var Module = fx.Module("ingest",
	fx.Provide(ProvideProcessor),
)

// ProvideProcessor wires the processor to the store and notifier.
func ProvideProcessor(cfg *config.Config, store *venues.Store, n *notify.Notifier, log *logger.Logger) *Processor {
	return NewProcessor(cfg, store, Options{
		Notifier: n,
		Log:      log.Named("ingest"),
	})
}
