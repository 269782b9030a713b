package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// CartLineInput is a line added to a cart.
type CartLineInput struct {
	ProductID    string           `field:"productId" validate:"required"`
	VariantID    string           `field:"variantId"`
	Title        string           `field:"title" validate:"required"`
	VariantLabel string           `field:"variantTitle"`
	Image        string           `field:"image"`
	Price        *decimal.Decimal `field:"price" validate:"-"`
	Quantity     int              `field:"quantity" validate:"max=999"`
}

// CartUseCase implements session carts. Concurrent mutations of one session
// are last-writer-wins.
type CartUseCase struct {
	carts repository.CartRepository
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(carts repository.CartRepository, cfg *config.Config) *CartUseCase {
	return &CartUseCase{
		carts: carts,
		ttl:   cfg.CartTTL,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Session returns the live session for sessionID or a new empty one. A
// malformed or missing id gets a freshly minted token.
func (u *CartUseCase) Session(ctx context.Context, sessionID string) (*model.CartSession, error) {
	if !model.ValidSessionID(sessionID) {
		sessionID = u.newID()
	}
	return u.carts.GetOrCreate(ctx, sessionID, u.expiry())
}

// AddItem increments a matching line or appends a new one.
func (u *CartUseCase) AddItem(ctx context.Context, sessionID string, in CartLineInput) (*model.CartSession, error) {
	verr := validateInput(in)
	if in.Price == nil {
		verr.Add("price", "is required")
	} else if in.Price.IsNegative() {
		verr.Add("price", "must not be negative")
	}
	if err := failed(verr); err != nil {
		return nil, err
	}

	cart, err := u.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.AddLine(model.CartLine{
		ProductID:    in.ProductID,
		VariantID:    in.VariantID,
		Title:        in.Title,
		VariantLabel: in.VariantLabel,
		Image:        in.Image,
		Price:        *in.Price,
		Quantity:     in.Quantity,
	}, u.now())
	return cart, u.save(ctx, cart)
}

// UpdateQuantity replaces the quantity of a line; quantity <= 0 removes it.
// A missing line leaves the cart untouched.
func (u *CartUseCase) UpdateQuantity(ctx context.Context, sessionID string, key model.LineKey, quantity int) (*model.CartSession, error) {
	if quantity > model.MaxLineQuantity {
		verr := &domainErrors.ValidationError{}
		verr.Add("quantity", fmt.Sprintf("must be at most %d", model.MaxLineQuantity))
		return nil, verr
	}
	cart, err := u.existing(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cart.SetQuantity(key, quantity) {
		return cart, nil
	}
	return cart, u.save(ctx, cart)
}

// RemoveItem drops a line. Removing an absent line is not an error.
func (u *CartUseCase) RemoveItem(ctx context.Context, sessionID string, key model.LineKey) (*model.CartSession, error) {
	cart, err := u.existing(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cart.RemoveLine(key) {
		return cart, nil
	}
	return cart, u.save(ctx, cart)
}

// Clear empties the cart but keeps the session.
func (u *CartUseCase) Clear(ctx context.Context, sessionID string) (*model.CartSession, error) {
	cart, err := u.existing(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return cart, u.save(ctx, cart)
}

// Sync folds a client held cart into the server copy using max-wins.
func (u *CartUseCase) Sync(ctx context.Context, sessionID string, lines []CartLineInput) (*model.CartSession, error) {
	cart, err := u.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	incoming := make([]model.CartLine, 0, len(lines))
	for _, in := range lines {
		line := model.CartLine{
			ProductID:    in.ProductID,
			VariantID:    in.VariantID,
			Title:        in.Title,
			VariantLabel: in.VariantLabel,
			Image:        in.Image,
			Quantity:     in.Quantity,
		}
		if in.Price != nil {
			line.Price = *in.Price
		}
		incoming = append(incoming, line)
	}
	cart.Sync(incoming, u.now())
	return cart, u.save(ctx, cart)
}

// Merge attributes an anonymous session to a customer. When the customer
// already has a live cart, both are unioned with max-wins into that cart and
// the anonymous session is deleted. Otherwise the anonymous session is
// relabelled.
func (u *CartUseCase) Merge(ctx context.Context, sessionID, email string) (*model.CartSession, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		verr := &domainErrors.ValidationError{}
		verr.Add("email", "must be a valid email address")
		return nil, verr
	}

	anonymous, err := u.existing(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	survivor, err := u.carts.FindByCustomer(ctx, email)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	if survivor == nil || survivor.ID == anonymous.ID {
		anonymous.CustomerEmail = email
		return anonymous, u.save(ctx, anonymous)
	}

	survivor.Items, _ = model.MergeMaxWins(survivor.Items, anonymous.Items)
	survivor.ExpiresAt = u.expiry()
	if err := u.carts.Merge(ctx, survivor, anonymous.ID); err != nil {
		return nil, err
	}
	return survivor, nil
}

// SweepExpired deletes lapsed sessions.
func (u *CartUseCase) SweepExpired(ctx context.Context) (int64, error) {
	return u.carts.DeleteExpired(ctx, u.now())
}

func (u *CartUseCase) existing(ctx context.Context, sessionID string) (*model.CartSession, error) {
	if !model.ValidSessionID(sessionID) {
		return nil, domainErrors.ErrInvalidSession
	}
	cart, err := u.carts.Get(ctx, sessionID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.ErrInvalidSession
	}
	return cart, err
}

// save extends the sliding expiry and persists the cart.
func (u *CartUseCase) save(ctx context.Context, cart *model.CartSession) error {
	cart.ExpiresAt = u.expiry()
	if err := u.carts.Save(ctx, cart); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrInvalidSession
		}
		return err
	}
	return nil
}

func (u *CartUseCase) expiry() time.Time {
	return u.now().Add(u.ttl)
}
