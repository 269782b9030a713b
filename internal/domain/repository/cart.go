package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CartRepository persists cart sessions. Reads only ever return live sessions.
type CartRepository interface {
	GetOrCreate(ctx context.Context, sessionID string, expiresAt time.Time) (*model.CartSession, error)
	Get(ctx context.Context, sessionID string) (*model.CartSession, error)
	FindByCustomer(ctx context.Context, email string) (*model.CartSession, error)
	Save(ctx context.Context, cart *model.CartSession) error
	Merge(ctx context.Context, survivor *model.CartSession, absorbedID string) error
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
