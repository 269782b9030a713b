package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type cartRepository struct {
	storage *Storage
}

// cartLineRecord is the JSONB shape of a cart line.
type cartLineRecord struct {
	ProductID    string          `json:"productId"`
	VariantID    string          `json:"variantId,omitempty"`
	Title        string          `json:"title"`
	VariantLabel string          `json:"variantTitle,omitempty"`
	Image        string          `json:"image,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	AddedAt      time.Time       `json:"addedAt"`
}

const cartColumns = `session_id, customer_email, items, expires_at, created_at, updated_at`

func encodeCartLines(lines []model.CartLine) ([]byte, error) {
	records := make([]cartLineRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, cartLineRecord{
			ProductID:    l.ProductID,
			VariantID:    l.VariantID,
			Title:        l.Title,
			VariantLabel: l.VariantLabel,
			Image:        l.Image,
			Price:        l.Price,
			Quantity:     l.Quantity,
			AddedAt:      l.AddedAt,
		})
	}
	return json.Marshal(records)
}

func decodeCartLines(raw []byte) ([]model.CartLine, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []cartLineRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	lines := make([]model.CartLine, 0, len(records))
	for _, r := range records {
		lines = append(lines, model.CartLine{
			ProductID:    r.ProductID,
			VariantID:    r.VariantID,
			Title:        r.Title,
			VariantLabel: r.VariantLabel,
			Image:        r.Image,
			Price:        r.Price,
			Quantity:     r.Quantity,
			AddedAt:      r.AddedAt,
		})
	}
	return lines, nil
}

func scanCart(row scanner) (*model.CartSession, error) {
	var (
		cart  model.CartSession
		email *string
		items []byte
	)
	if err := row.Scan(&cart.ID, &email, &items, &cart.ExpiresAt, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, err
	}
	cart.CustomerEmail = derefString(email)
	lines, err := decodeCartLines(items)
	if err != nil {
		return nil, err
	}
	cart.Items = lines
	return &cart, nil
}

// GetOrCreate returns the live session or starts a fresh one. An expired row
// under the same token is reset in place.
func (r *cartRepository) GetOrCreate(ctx context.Context, sessionID string, expiresAt time.Time) (*model.CartSession, error) {
	const query = `INSERT INTO cart_sessions (session_id, items, expires_at)
                   VALUES ($1, '[]'::jsonb, $2)
                   ON CONFLICT (session_id) DO UPDATE
                   SET items='[]'::jsonb, customer_email=NULL, expires_at=EXCLUDED.expires_at,
                       created_at=NOW(), updated_at=NOW()
                   WHERE cart_sessions.expires_at <= NOW()
                   RETURNING ` + cartColumns
	cart, err := scanCart(r.storage.pool.QueryRow(ctx, query, sessionID, expiresAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.Get(ctx, sessionID)
		}
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) Get(ctx context.Context, sessionID string) (*model.CartSession, error) {
	const query = `SELECT ` + cartColumns + ` FROM cart_sessions WHERE session_id=$1 AND expires_at > NOW()`
	cart, err := scanCart(r.storage.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		return nil, notFound(err)
	}
	return cart, nil
}

// FindByCustomer returns the most recently touched live cart of a customer.
func (r *cartRepository) FindByCustomer(ctx context.Context, email string) (*model.CartSession, error) {
	const query = `SELECT ` + cartColumns + ` FROM cart_sessions
                   WHERE customer_email=$1 AND expires_at > NOW()
                   ORDER BY updated_at DESC LIMIT 1`
	cart, err := scanCart(r.storage.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, notFound(err)
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *model.CartSession) error {
	return saveCart(ctx, r.storage.pool, cart)
}

func saveCart(ctx context.Context, q querier, cart *model.CartSession) error {
	items, err := encodeCartLines(cart.Items)
	if err != nil {
		return err
	}
	const query = `UPDATE cart_sessions
                   SET items=$2, customer_email=$3, expires_at=$4, updated_at=NOW()
                   WHERE session_id=$1
                   RETURNING updated_at`
	err = q.QueryRow(ctx, query, cart.ID, items, nullString(cart.CustomerEmail), cart.ExpiresAt).Scan(&cart.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

// Merge persists the surviving cart and removes the absorbed one atomically.
func (r *cartRepository) Merge(ctx context.Context, survivor *model.CartSession, absorbedID string) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := saveCart(ctx, tx, survivor); err != nil {
			return err
		}
		if absorbedID == "" || absorbedID == survivor.ID {
			return nil
		}
		_, err := tx.Exec(ctx, `DELETE FROM cart_sessions WHERE session_id=$1`, absorbedID)
		return err
	})
}

func (r *cartRepository) Delete(ctx context.Context, sessionID string) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM cart_sessions WHERE session_id=$1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *cartRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM cart_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
