package printify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module exposes the fulfillment client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.PrintifyAPIURL, p.Config.PrintifyShopID, p.Config.PrintifyAPIToken, p.Config.GatewayTimeout, p.Logger)
}
