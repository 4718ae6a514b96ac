package venues

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// Module provides the venue store for fx. The schema is migrated and
// configured exclusions are seeded on start.
var Module = fx.Module("venues",
	fx.Provide(ProvideStore),
)

// ProvideStore opens the database at settings.database.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) (*Store, error) {
	store, err := Open(cfg.Settings.Database, log.Named("venues"))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Init(ctx, cfg); err != nil {
				return err
			}
			log.Debug("Venue database ready", zap.String("path", cfg.Settings.Database))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}
