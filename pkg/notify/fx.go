package notify

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// Module provides the Notifier for fx.
var Module = fx.Module("notify",
	fx.Provide(ProvideNotifier),
)

// ProvideNotifier builds the notifier from [notifications].
func ProvideNotifier(log *logger.Logger, cfg *config.Config) (*Notifier, error) {
	n, err := New(log.Named("notify"), cfg.Notifications)
	if err != nil {
		return nil, err
	}
	if channels := n.Channels(); len(channels) > 0 {
		log.Debug("Notifications enabled", zap.Strings("channels", channels))
	}
	return n, nil
}
