package bootstrap

import (
	"context"
	"fmt"
	"time"

	"gscgateway/internal/cfg"
	"gscgateway/pkg/cache"
)

const cachePingTimeout = 5 * time.Second

// InitCache connects to redis when it is configured. A nil cache means the
// process runs without shared state.
func InitCache(ctx context.Context, config *cfg.RedisConfig) (cache.Cache, error) {
	if !config.Enabled() {
		return nil, nil
	}

	c := cache.NewRedisCache(config.Addr, config.Password)

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", config.Addr, err)
	}

	return c, nil
}
