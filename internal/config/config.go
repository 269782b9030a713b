package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Blog storage backends.
const (
	BlogStoragePostgres = "postgres"
	BlogStorageFile     = "file"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	StaticDir   string

	PrintifyAPIURL   string
	PrintifyAPIToken string
	PrintifyShopID   string
	GatewayTimeout   time.Duration

	StripeWebhookSecret string
	WebhookTolerance    time.Duration
	AdminAPIKey         string

	BlogStorage  string
	BlogDataFile string

	MockProductsFile string
	RedisAddr        string
	ProductCacheTTL  time.Duration

	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration

	CartTTL           time.Duration
	CartSweepInterval time.Duration

	ProductionPollInterval time.Duration
	WorkerPoolSize         int
	ProductionBatch        int
	ProductionMaxAttempts  int

	ShutdownTimeout time.Duration
	LogLevel        string
}

const (
	defaultRunAddress             = ":8080"
	defaultLogLevel               = "info"
	defaultPrintifyAPIURL         = "https://api.printify.com/v1"
	defaultGatewayTimeout         = 15 * time.Second
	defaultWebhookTolerance       = 5 * time.Minute
	defaultBlogStorage            = BlogStoragePostgres
	defaultBlogDataFile           = "data/blog-posts.json"
	defaultProductCacheTTL        = time.Hour
	defaultAllowedOrigins         = "http://localhost:3000"
	defaultRateLimit              = 100
	defaultRateWindow             = time.Minute
	defaultCartTTL                = 30 * 24 * time.Hour
	defaultCartSweepInterval      = time.Hour
	defaultProductionPollInterval = 5 * time.Second
	defaultWorkerPoolSize         = 2
	defaultProductionBatch        = 16
	defaultProductionMaxAttempts  = 8
	defaultShutdownTimeout        = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		StaticDir:              getString(lookup, "STATIC_DIR", ""),
		PrintifyAPIURL:         getString(lookup, "PRINTIFY_API_URL", defaultPrintifyAPIURL),
		PrintifyAPIToken:       getString(lookup, "PRINTIFY_API_TOKEN", ""),
		PrintifyShopID:         getString(lookup, "PRINTIFY_SHOP_ID", ""),
		GatewayTimeout:         getDuration(lookup, "PRINTIFY_TIMEOUT", defaultGatewayTimeout),
		StripeWebhookSecret:    getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		WebhookTolerance:       getDuration(lookup, "WEBHOOK_TOLERANCE", defaultWebhookTolerance),
		AdminAPIKey:            getString(lookup, "BLOG_API_KEY", ""),
		BlogStorage:            getString(lookup, "BLOG_STORAGE", defaultBlogStorage),
		BlogDataFile:           getString(lookup, "BLOG_DATA_FILE", defaultBlogDataFile),
		MockProductsFile:       getString(lookup, "MOCK_PRODUCTS_FILE", ""),
		RedisAddr:              getString(lookup, "REDIS_ADDR", ""),
		ProductCacheTTL:        getDuration(lookup, "PRODUCT_CACHE_TTL", defaultProductCacheTTL),
		AllowedOrigins:         splitList(getString(lookup, "ALLOWED_ORIGINS", defaultAllowedOrigins)),
		RateLimit:              getInt(lookup, "RATE_LIMIT", defaultRateLimit),
		RateWindow:             getDuration(lookup, "RATE_WINDOW", defaultRateWindow),
		CartTTL:                getDuration(lookup, "CART_TTL", defaultCartTTL),
		CartSweepInterval:      getDuration(lookup, "CART_SWEEP_INTERVAL", defaultCartSweepInterval),
		ProductionPollInterval: getDuration(lookup, "PRODUCTION_POLL_INTERVAL", defaultProductionPollInterval),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ProductionBatch:        getInt(lookup, "PRODUCTION_BATCH", defaultProductionBatch),
		ProductionMaxAttempts:  getInt(lookup, "PRODUCTION_MAX_ATTEMPTS", defaultProductionMaxAttempts),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:               getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.ProductionPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		gatewayTimeoutStr  = cfg.GatewayTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.PrintifyAPIURL, "p", cfg.PrintifyAPIURL, "Fulfillment API base URL")
	fs.StringVar(&cfg.PrintifyShopID, "shop", cfg.PrintifyShopID, "Fulfillment shop identifier")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Timeout for fulfillment API calls")
	fs.StringVar(&cfg.BlogStorage, "blog-storage", cfg.BlogStorage, "Blog storage backend (postgres or file)")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for product cache")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory with front-end files")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent production workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between production queue polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.IntVar(&cfg.ProductionBatch, "poll-batch", cfg.ProductionBatch, "Maximum production tasks per poll")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ProductionPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.GatewayTimeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	secrets := []struct {
		key    string
		target *string
	}{
		{"PRINTIFY_API_TOKEN_FILE", &cfg.PrintifyAPIToken},
		{"STRIPE_WEBHOOK_SECRET_FILE", &cfg.StripeWebhookSecret},
		{"BLOG_API_KEY_FILE", &cfg.AdminAPIKey},
	}
	for _, s := range secrets {
		if file, ok := lookup(s.key); ok && file != "" {
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", strings.ToLower(s.key), err)
			}
			*s.target = strings.TrimSpace(string(content))
		}
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.ProductionBatch <= 0 {
		cfg.ProductionBatch = defaultProductionBatch
	}
	if cfg.ProductionMaxAttempts <= 0 {
		cfg.ProductionMaxAttempts = defaultProductionMaxAttempts
	}
	if cfg.ProductionPollInterval <= 0 {
		cfg.ProductionPollInterval = defaultProductionPollInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}
	if cfg.WebhookTolerance <= 0 {
		cfg.WebhookTolerance = defaultWebhookTolerance
	}
	if cfg.ProductCacheTTL <= 0 {
		cfg.ProductCacheTTL = defaultProductCacheTTL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = defaultRateWindow
	}
	if cfg.CartTTL <= 0 {
		cfg.CartTTL = defaultCartTTL
	}
	if cfg.CartSweepInterval <= 0 {
		cfg.CartSweepInterval = defaultCartSweepInterval
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	cfg.BlogStorage = strings.ToLower(strings.TrimSpace(cfg.BlogStorage))
	switch cfg.BlogStorage {
	case BlogStoragePostgres:
	case BlogStorageFile:
		if cfg.BlogDataFile == "" {
			return nil, fmt.Errorf("blog data file must be provided for file storage")
		}
	default:
		return nil, fmt.Errorf("unknown blog storage %q", cfg.BlogStorage)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
