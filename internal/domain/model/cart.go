package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxSessionIDLength bounds client supplied cart tokens.
	MaxSessionIDLength = 128
	// MaxLineQuantity caps the quantity of a single cart line.
	MaxLineQuantity = 999
)

// CartLine is a product snapshot held in a cart.
type CartLine struct {
	ProductID    string
	VariantID    string
	Title        string
	VariantLabel string
	Image        string
	Price        decimal.Decimal
	Quantity     int
	AddedAt      time.Time
}

// LineKey identifies a cart line within a session.
type LineKey struct {
	ProductID string
	VariantID string
}

// Key returns the identity of the line.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, VariantID: l.VariantID}
}

// CartSession is a server held cart addressed by an opaque token.
type CartSession struct {
	ID            string
	CustomerEmail string
	Items         []CartLine
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemCount sums quantities over all lines.
func (c *CartSession) ItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums price times quantity over all lines.
func (c *CartSession) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Expired reports whether the session lapsed at the given instant.
func (c *CartSession) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

func (c *CartSession) indexOf(key LineKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// AddLine increments an existing line or appends a new one. A non-positive
// quantity counts as one; the line total saturates at MaxLineQuantity.
func (c *CartSession) AddLine(line CartLine, now time.Time) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	line.Quantity = capQuantity(line.Quantity)
	if i := c.indexOf(line.Key()); i >= 0 {
		// Both operands are capped before adding so the sum cannot overflow.
		c.Items[i].Quantity = capQuantity(capQuantity(c.Items[i].Quantity) + line.Quantity)
		return
	}
	line.AddedAt = now
	c.Items = append(c.Items, line)
}

func capQuantity(q int) int {
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

// SetQuantity replaces the quantity of a line, removing it when quantity <= 0
// and capping it at MaxLineQuantity.
// It reports whether the line existed.
func (c *CartSession) SetQuantity(key LineKey, quantity int) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = capQuantity(quantity)
	return true
}

// RemoveLine drops the matching line and reports whether one was present.
func (c *CartSession) RemoveLine(key LineKey) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart and reports whether anything was removed.
func (c *CartSession) Clear() bool {
	if len(c.Items) == 0 {
		return false
	}
	c.Items = nil
	return true
}

// Sync folds client lines into the session using max-wins.
// Lines without a product or with a non-positive quantity are skipped;
// larger quantities are capped at MaxLineQuantity.
func (c *CartSession) Sync(lines []CartLine, now time.Time) bool {
	incoming := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			continue
		}
		if line.AddedAt.IsZero() {
			line.AddedAt = now
		}
		line.Quantity = capQuantity(line.Quantity)
		incoming = append(incoming, line)
	}
	merged, changed := MergeMaxWins(c.Items, incoming)
	c.Items = merged
	return changed
}

// MergeMaxWins unions two line lists. For a shared key the larger quantity
// survives and the base line keeps its snapshot and addedAt. Incoming lines
// that collide with each other are folded the same way. The second result
// reports whether base changed.
func MergeMaxWins(base, incoming []CartLine) ([]CartLine, bool) {
	out := make([]CartLine, 0, len(base)+len(incoming))
	index := make(map[LineKey]int, len(base)+len(incoming))
	for _, line := range base {
		if i, ok := index[line.Key()]; ok {
			if line.Quantity > out[i].Quantity {
				out[i].Quantity = line.Quantity
			}
			continue
		}
		index[line.Key()] = len(out)
		out = append(out, line)
	}

	changed := len(out) != len(base)
	for _, line := range incoming {
		if i, ok := index[line.Key()]; ok {
			if line.Quantity > out[i].Quantity {
				out[i].Quantity = line.Quantity
				changed = true
			}
			continue
		}
		index[line.Key()] = len(out)
		out = append(out, line)
		changed = true
	}
	return out, changed
}

// ValidSessionID reports whether a client token is well formed.
func ValidSessionID(id string) bool {
	if id == "" || len(id) > MaxSessionIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
