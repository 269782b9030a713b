package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	referencePrefix        = "SM"
	standardShippingMethod = 1
)

// Order lookup sources.
const (
	SourceLocal  = "database"
	SourceRemote = "printify"
)

// OrderItemInput is one submitted line.
type OrderItemInput struct {
	ProductID    string          `field:"productId" validate:"required"`
	VariantID    string          `field:"variantId"`
	Title        string          `field:"title"`
	VariantLabel string          `field:"variantTitle"`
	Image        string          `field:"image"`
	Price        decimal.Decimal `field:"price"`
	Quantity     int             `field:"quantity" validate:"gt=0,max=999"`
}

// AddressInput is a submitted postal address.
type AddressInput struct {
	FirstName string `field:"firstName" validate:"required"`
	LastName  string `field:"lastName" validate:"required"`
	Email     string `field:"email"`
	Phone     string `field:"phone"`
	Country   string `field:"country" validate:"required"`
	Region    string `field:"state"`
	Address1  string `field:"address1" validate:"required"`
	Address2  string `field:"address2"`
	City      string `field:"city" validate:"required"`
	Zip       string `field:"zip" validate:"required"`
}

// CustomerInput identifies the buyer.
type CustomerInput struct {
	Email string `field:"email" validate:"required,email"`
	Name  string `field:"name" validate:"required"`
	Phone string `field:"phone"`
}

// AmountsInput carries client computed amounts. Nil values are derived.
type AmountsInput struct {
	Subtotal     *decimal.Decimal
	ShippingCost *decimal.Decimal
	Tax          *decimal.Decimal
	Total        *decimal.Decimal
}

// SubmitOrderInput is a checkout request.
type SubmitOrderInput struct {
	Items            []OrderItemInput `field:"items" validate:"required,min=1,dive"`
	Shipping         AddressInput     `field:"shipping"`
	Billing          *AddressInput    `field:"billing" validate:"-"`
	Customer         CustomerInput    `field:"customer"`
	PaymentConfirmed bool             `field:"paymentConfirmed"`
	PaymentIntentID  string           `field:"paymentIntentId"`
	Amounts          AmountsInput     `field:"-" validate:"-"`
}

// SubmitResult describes a placed order.
type SubmitResult struct {
	OrderID          int64
	ExternalOrderID  string
	Reference        string
	Status           model.OrderStatus
	PaymentStatus    model.PaymentStatus
	ProductionQueued bool
}

// OrderLookup is an order found locally or only at the fulfillment service.
type OrderLookup struct {
	Order  *model.Order
	Remote *model.RemoteOrder
	Source string
}

// ShippingQuoteInput asks for shipping prices. Missing address parts are
// filled with placeholders since only the destination country matters.
type ShippingQuoteInput struct {
	Items   []OrderItemInput     `field:"items" validate:"required,min=1,dive"`
	Address ShippingAddressInput `field:"address"`
}

// ShippingAddressInput is a partial address used for quotes.
type ShippingAddressInput struct {
	FirstName string `field:"firstName"`
	LastName  string `field:"lastName"`
	Country   string `field:"country" validate:"required"`
	Region    string `field:"state"`
	Address1  string `field:"address1"`
	City      string `field:"city"`
	Zip       string `field:"zip"`
}

type orderAmounts struct {
	subtotal decimal.Decimal
	shipping decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
}

// OrderUseCase turns checkout requests into remote and local orders.
type OrderUseCase struct {
	orders     repository.OrderRepository
	gateway    FulfillmentGateway
	production *ProductionUseCase
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, gateway FulfillmentGateway, production *ProductionUseCase, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:     orders,
		gateway:    gateway,
		production: production,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit validates the request, creates the remote order and records it
// locally. The local record is written only after the remote call succeeded.
// With a confirmed payment production is requested right away; a failure
// there is queued for retry and does not fail the submission.
func (u *OrderUseCase) Submit(ctx context.Context, in SubmitOrderInput) (*SubmitResult, error) {
	amounts, err := in.check()
	if err != nil {
		return nil, err
	}

	reference := newReference(u.now())
	remote, err := u.gateway.CreateOrder(ctx, in.remoteRequest(reference))
	if err != nil {
		return nil, fmt.Errorf("create remote order: %w", err)
	}

	paymentStatus := model.PaymentStatusPending
	if in.PaymentConfirmed {
		paymentStatus = model.PaymentStatusPaid
	}

	order, err := u.orders.Create(ctx, model.NewOrder{
		ExternalOrderID: remote.ID,
		ReferenceToken:  reference,
		CustomerEmail:   strings.TrimSpace(in.Customer.Email),
		CustomerName:    strings.TrimSpace(in.Customer.Name),
		ShippingAddress: in.Shipping.model(in.Customer),
		BillingAddress:  in.billing(),
		Items:           in.items(),
		Subtotal:        amounts.subtotal,
		ShippingCost:    amounts.shipping,
		Tax:             amounts.tax,
		Total:           amounts.total,
		PaymentStatus:   paymentStatus,
		PaymentIntentID: in.PaymentIntentID,
	})
	if err != nil {
		u.logger.Error("remote order has no local record",
			slog.String("external_id", remote.ID),
			slog.String("reference", reference),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("record order: %w", err)
	}

	result := &SubmitResult{
		OrderID:         order.ID,
		ExternalOrderID: order.ExternalOrderID,
		Reference:       reference,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
	}
	if in.PaymentConfirmed {
		result.ProductionQueued = u.production.DispatchOrQueue(ctx, order)
		result.Status = order.Status
	}
	return result, nil
}

// Lookup finds an order by local id, then by external id, falling back to the
// fulfillment service when no local record exists.
func (u *OrderUseCase) Lookup(ctx context.Context, identifier string) (*OrderLookup, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domainErrors.ErrNotFound
	}

	var (
		order *model.Order
		err   = domainErrors.ErrNotFound
	)
	if id, convErr := strconv.ParseInt(identifier, 10, 64); convErr == nil && id > 0 {
		order, err = u.orders.GetByID(ctx, id)
	}
	// External ids may be all digits too.
	if errors.Is(err, domainErrors.ErrNotFound) {
		order, err = u.orders.GetByExternalID(ctx, identifier)
	}
	if err == nil {
		return &OrderLookup{Order: order, Source: SourceLocal}, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	remote, err := u.gateway.GetOrder(ctx, identifier)
	if err != nil {
		var gwErr *domainErrors.GatewayError
		if errors.As(err, &gwErr) && gwErr.NotFound() {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("fetch remote order: %w", err)
	}
	return &OrderLookup{Remote: remote, Source: SourceRemote}, nil
}

// ListByCustomer returns one page of a customer's orders, newest first.
func (u *OrderUseCase) ListByCustomer(ctx context.Context, email string, page, limit int) (*model.OrderList, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		verr := &domainErrors.ValidationError{}
		verr.Add("email", "must be a valid email address")
		return nil, verr
	}
	page, limit = model.NormalizePage(page, limit)
	return u.orders.ListByCustomerEmail(ctx, email, page, limit)
}

// List returns one page of orders optionally filtered by status.
func (u *OrderUseCase) List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		verr := &domainErrors.ValidationError{}
		verr.Add("status", "is not a known order status")
		return nil, verr
	}
	filter.Page, filter.Limit = model.NormalizePage(filter.Page, filter.Limit)
	return u.orders.List(ctx, filter)
}

// ShippingQuote prices shipping for the given lines.
func (u *OrderUseCase) ShippingQuote(ctx context.Context, in ShippingQuoteInput) (model.ShippingQuote, error) {
	if err := failed(validateInput(in)); err != nil {
		return nil, err
	}
	quote, err := u.gateway.ShippingQuote(ctx, model.ShippingQuoteRequest{
		LineItems: lineItems(in.Items),
		AddressTo: in.Address.model(),
	})
	if err != nil {
		return nil, fmt.Errorf("quote shipping: %w", err)
	}
	return quote, nil
}

func (in SubmitOrderInput) check() (orderAmounts, error) {
	verr := validateInput(in)

	subtotal := decimal.Zero
	for i, item := range in.Items {
		field := fmt.Sprintf("items[%d].price", i)
		if item.Price.IsNegative() {
			verr.Add(field, "must not be negative")
		}
		checkCents(verr, field, &item.Price)
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	checkNonNegative(verr, "amounts.subtotal", in.Amounts.Subtotal)
	checkNonNegative(verr, "amounts.shippingCost", in.Amounts.ShippingCost)
	checkNonNegative(verr, "amounts.tax", in.Amounts.Tax)
	checkNonNegative(verr, "amounts.total", in.Amounts.Total)
	checkCents(verr, "amounts.subtotal", in.Amounts.Subtotal)
	checkCents(verr, "amounts.shippingCost", in.Amounts.ShippingCost)
	checkCents(verr, "amounts.tax", in.Amounts.Tax)
	checkCents(verr, "amounts.total", in.Amounts.Total)

	amounts := orderAmounts{
		subtotal: valueOr(in.Amounts.Subtotal, subtotal),
		shipping: valueOr(in.Amounts.ShippingCost, decimal.Zero),
		tax:      valueOr(in.Amounts.Tax, decimal.Zero),
	}
	expected := amounts.subtotal.Add(amounts.shipping).Add(amounts.tax)
	amounts.total = valueOr(in.Amounts.Total, expected)
	if amounts.total.Sub(expected).Abs().GreaterThan(totalTolerance) {
		verr.Add("amounts.total", "must equal subtotal + shippingCost + tax")
	}

	if err := failed(verr); err != nil {
		return orderAmounts{}, err
	}
	return amounts, nil
}

func (in SubmitOrderInput) remoteRequest(reference string) model.RemoteOrderRequest {
	return model.RemoteOrderRequest{
		ExternalID:               reference,
		Label:                    strings.TrimSpace(in.Customer.Email),
		LineItems:                lineItems(in.Items),
		ShippingMethod:           standardShippingMethod,
		SendShippingNotification: true,
		AddressTo:                in.Shipping.model(in.Customer),
	}
}

func (in SubmitOrderInput) items() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.OrderItem{
			ProductID:    it.ProductID,
			VariantID:    it.VariantID,
			Title:        it.Title,
			VariantLabel: it.VariantLabel,
			Image:        it.Image,
			Price:        it.Price,
			Quantity:     it.Quantity,
		})
	}
	return items
}

func (in SubmitOrderInput) billing() *model.Address {
	if in.Billing == nil {
		return nil
	}
	addr := in.Billing.model(in.Customer)
	return &addr
}

func (a AddressInput) model(customer CustomerInput) model.Address {
	addr := model.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Country:   a.Country,
		Region:    a.Region,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		Zip:       a.Zip,
	}
	if addr.Email == "" {
		addr.Email = customer.Email
	}
	if addr.Phone == "" {
		addr.Phone = customer.Phone
	}
	return addr
}

func (a ShippingAddressInput) model() model.Address {
	return model.Address{
		FirstName: stringOr(a.FirstName, "Customer"),
		LastName:  stringOr(a.LastName, "Name"),
		Country:   a.Country,
		Region:    a.Region,
		Address1:  stringOr(a.Address1, "123 Main St"),
		City:      stringOr(a.City, "City"),
		Zip:       stringOr(a.Zip, "00000"),
	}
}

func lineItems(items []OrderItemInput) []model.RemoteLineItem {
	out := make([]model.RemoteLineItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.RemoteLineItem{ProductID: it.ProductID, VariantID: it.VariantID, Quantity: it.Quantity})
	}
	return out
}

// newReference builds the externally visible order token, e.g. SM-1714564800000-4F9C2A7B1.
func newReference(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s-%d-%s", referencePrefix, now.UnixMilli(), token[:9])
}

func valueOr(v *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if v == nil {
		return fallback
	}
	return *v
}

func stringOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
