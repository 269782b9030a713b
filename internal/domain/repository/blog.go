package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// BlogRepository stores blog posts. Get accepts a numeric id or a slug.
type BlogRepository interface {
	List(ctx context.Context, filter model.BlogFilter) (*model.BlogList, error)
	Get(ctx context.Context, identifier string) (*model.BlogPost, error)
	Create(ctx context.Context, post model.BlogPost) (*model.BlogPost, error)
	Update(ctx context.Context, id int64, update model.BlogPostUpdate) (*model.BlogPost, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}
