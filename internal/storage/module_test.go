package storage

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/storage/file"
	"github.com/polkiloo/storefront/internal/test"
)

func TestNewBlogRepositorySelectsBackend(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	factory := test.NewMemoryFactory()

	repo := NewBlogRepository(blogParams{
		Config:  &config.Config{BlogStorage: config.BlogStorageFile, BlogDataFile: filepath.Join(t.TempDir(), "blog.json")},
		Factory: factory,
		Logger:  logger,
	})
	if _, ok := repo.(*file.BlogRepository); !ok {
		t.Fatalf("expected file repository, got %T", repo)
	}

	repo = NewBlogRepository(blogParams{
		Config:  &config.Config{BlogStorage: config.BlogStoragePostgres},
		Factory: factory,
		Logger:  logger,
	})
	if repo != repository.BlogRepository(factory.Blog) {
		t.Fatalf("expected factory blog repository, got %T", repo)
	}
}
