package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the product cache to fx graph.
var Module = fx.Provide(newProductCache)

type cacheParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newProductCache(p cacheParams) ProductCache {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("product cache disabled")
		return NopCache{}
	}

	client := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddr})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// An unreachable cache degrades to gateway reads.
			if err := client.Ping(ctx).Err(); err != nil {
				p.Logger.Warn("redis unreachable", slog.String("addr", p.Config.RedisAddr), slog.Any("error", err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	p.Logger.Info("product cache enabled", slog.String("addr", p.Config.RedisAddr), slog.Duration("ttl", p.Config.ProductCacheTTL))
	return NewRedisCache(client, p.Config.ProductCacheTTL)
}
