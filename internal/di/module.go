package di

import (
	"github.com/polkiloo/storefront/internal/adapter/printify"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/cache"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		storage.Module,
		cache.Module,
		printify.Module,
		usecase.Module,
		fx.Provide(
			func(c printify.Client) usecase.FulfillmentGateway { return c },
			func(c printify.Client) usecase.ProductSource { return c },
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.StoreFacade) handlers.StoreFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
