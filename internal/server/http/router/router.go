package router

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade    handlers.StoreFacade
	Signature handlers.SignatureVerifier
	APIKey    middleware.KeyVerifier
	Limiter   *middleware.RateLimiter
	Config    *config.Config
	Logger    *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(cors.New(corsConfig(p.Config.AllowedOrigins)))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	cartHandler := handlers.NewCartHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	webhookHandler := handlers.NewWebhookHandler(p.Facade, p.Signature, p.Logger)
	productHandler := handlers.NewProductHandler(p.Facade)
	blogHandler := handlers.NewBlogHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)
	admin := middleware.RequireAPIKey(p.APIKey)

	api := engine.Group("/api")
	api.Use(p.Limiter.Handler())
	api.GET("/health", healthHandler.Check)

	cart := api.Group("/cart")
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:productId", cartHandler.UpdateItem)
	cart.DELETE("/items/:productId", cartHandler.RemoveItem)
	cart.POST("/sync", cartHandler.Sync)
	cart.POST("/merge", cartHandler.Merge)

	orders := api.Group("/orders")
	orders.POST("", orderHandler.Submit)
	orders.POST("/shipping/calculate", orderHandler.Shipping)
	orders.GET("/customer/:email", orderHandler.ByCustomer)
	orders.GET("/:orderId", orderHandler.Get)
	orders.POST("/:orderId/production", admin, orderHandler.Production)

	api.GET("/admin/orders", admin, orderHandler.List)

	webhooks := api.Group("/webhooks")
	webhooks.POST("/stripe", webhookHandler.Stripe)
	webhooks.POST("/printify", webhookHandler.Printify)

	products := api.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/search", productHandler.Search)
	products.GET("/category/:category", productHandler.Category)
	products.GET("/:id", productHandler.Get)
	products.POST("/cache/invalidate", admin, productHandler.Invalidate)

	blog := api.Group("/blog")
	blog.GET("/posts", blogHandler.List)
	blog.GET("/posts/:identifier", blogHandler.Get)
	blog.GET("/categories", blogHandler.Categories)
	blog.POST("/posts", admin, blogHandler.Create)
	blog.PUT("/posts/:id", admin, blogHandler.Update)
	blog.DELETE("/posts/:id", admin, blogHandler.Delete)

	engine.NoRoute(staticFallback(p.Config.StaticDir))

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.APIKeyHeader, handlers.SessionHeader, handlers.StripeSignatureHeader},
		ExposeHeaders: []string{handlers.SessionHeader},
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowOrigins = nil
			return cfg
		}
		if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowCredentials = true
	return cfg
}

// staticFallback serves front-end files for non-API paths, falling back to
// index.html for client side routes.
func staticFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if dir == "" || strings.HasPrefix(reqPath, "/api/") || reqPath == "/api" ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Route not found"})
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+reqPath)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Route not found"})
	}
}
