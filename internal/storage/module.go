// Package storage selects the blog backend configured for the process.
package storage

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/storage/file"
)

// Module provides repository.BlogRepository backed by either PostgreSQL or a JSON file.
var Module = fx.Provide(NewBlogRepository)

type blogParams struct {
	fx.In

	Config  *config.Config
	Factory repository.Factory
	Logger  *slog.Logger
}

// NewBlogRepository picks the blog backend named by configuration.
func NewBlogRepository(p blogParams) repository.BlogRepository {
	if p.Config.BlogStorage == config.BlogStorageFile {
		p.Logger.Info("blog storage selected", slog.String("backend", "file"), slog.String("path", p.Config.BlogDataFile))
		return file.NewBlogRepository(p.Config.BlogDataFile)
	}
	p.Logger.Info("blog storage selected", slog.String("backend", "postgres"))
	return p.Factory.BlogPosts()
}
