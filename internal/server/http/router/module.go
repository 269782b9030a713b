package router

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(
		Setup,
		newRateLimiter,
		func(v *pkgAuth.SignatureVerifier) handlers.SignatureVerifier { return v },
		func(v *pkgAuth.APIKeyVerifier) middleware.KeyVerifier { return v },
	),
	fx.Invoke(registerLimiter),
)

func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
}

func registerLimiter(lc fx.Lifecycle, limiter *middleware.RateLimiter) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			limiter.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			limiter.Stop()
			return nil
		},
	})
}
