package state

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// Module provides the KV store for fx.
var Module = fx.Module("state",
	fx.Provide(ProvideKV),
)

// ProvideKV opens the configured store and closes it on shutdown.
func ProvideKV(lc fx.Lifecycle, log *logger.Logger, cfg *config.Config) (KV, error) {
	store, err := NewKV(context.Background(), log.Named("state"), cfg.State)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Debug("State store initialized", zap.String("backend", cfg.State.Backend))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}
