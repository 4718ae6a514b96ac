package state

import (
	"context"
	"fmt"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// NewKV opens the backend selected by cfg.Backend.
func NewKV(ctx context.Context, log *logger.Logger, cfg config.StateConfig) (KV, error) {
	switch BackendType(cfg.Backend) {
	case BackendFile, "":
		return NewFileStore(log, cfg.FilePath)
	case BackendRedis:
		return NewRedisStore(ctx, log, RedisStoreConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown state backend: %s", cfg.Backend)
	}
}
