package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfillment progress.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// Valid reports whether the status is known.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// Advances reports whether moving from s to next is forward progress.
func (s OrderStatus) Advances(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return next.Valid()
	}
	to, ok := orderStatusRank[next]
	return ok && to > from
}

// Preceding lists the statuses ranked below s. Storage uses it to make a
// status write conditional on the stored value.
func (s OrderStatus) Preceding() []string {
	to, ok := orderStatusRank[s]
	if !ok {
		return nil
	}
	out := make([]string, 0, to)
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered} {
		if orderStatusRank[status] < to {
			out = append(out, string(status))
		}
	}
	return out
}

// PaymentStatus describes payment confirmation state.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid reports whether the payment status is known.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// Address is a postal address used for shipping and billing.
type Address struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Country   string
	Region    string
	Address1  string
	Address2  string
	City      string
	Zip       string
}

// OrderItem is an immutable line snapshot taken at submission.
type OrderItem struct {
	ProductID    string
	VariantID    string
	Title        string
	VariantLabel string
	Image        string
	Price        decimal.Decimal
	Quantity     int
}

// Order is the local record of a fulfillment order.
type Order struct {
	ID              int64
	ExternalOrderID string
	ReferenceToken  string
	CustomerEmail   string
	CustomerName    string
	ShippingAddress Address
	BillingAddress  *Address
	Items           []OrderItem
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	TrackingNumber  string
	TrackingURL     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder carries the fields written when an order is first recorded.
type NewOrder struct {
	ExternalOrderID string
	ReferenceToken  string
	CustomerEmail   string
	CustomerName    string
	ShippingAddress Address
	BillingAddress  *Address
	Items           []OrderItem
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	PaymentStatus   PaymentStatus
	PaymentIntentID string
}

// OrderUpdate lists the only fields that may change through an external id
// lookup. Nil fields are left untouched.
type OrderUpdate struct {
	Status         *OrderStatus
	PaymentStatus  *PaymentStatus
	TrackingNumber *string
	TrackingURL    *string
}

// Empty reports whether the update carries no fields.
func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.TrackingNumber == nil && u.TrackingURL == nil
}

// OrderFilter narrows administrative listings.
type OrderFilter struct {
	Status OrderStatus
	Page   int
	Limit  int
}

// OrderList is one page of orders.
type OrderList struct {
	Orders []Order
	Page   Page
}
