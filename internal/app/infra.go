package app

import (
	"context"

	"github.com/Jacky-Bruse/movecar/internal/config"
	"github.com/Jacky-Bruse/movecar/internal/logger"
	"github.com/Jacky-Bruse/movecar/internal/status"
)

// setupInfra builds the status store: Redis when configured, otherwise
// an in-process store, which is fine for the single-instance,
// single-session scope as long as restarts dropping state is
// acceptable.
func setupInfra(ctx context.Context, cfg config.Config) (status.Store, func() error, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory status store", nil)
		return status.NewMemoryStore(), func() error { return nil }, nil
	}

	store, err := status.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("redis ready", nil)

	return store, store.Close, nil
}
