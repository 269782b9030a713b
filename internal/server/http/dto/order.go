package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// OrderItemRequest is a submitted order line.
type OrderItemRequest struct {
	ProductID    FlexibleID      `json:"productId"`
	ProductIDAlt FlexibleID      `json:"product_id"`
	VariantID    FlexibleID      `json:"variantId"`
	VariantIDAlt FlexibleID      `json:"variant_id"`
	Title        string          `json:"title"`
	Variant      string          `json:"variant"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

func (r OrderItemRequest) input() usecase.OrderItemInput {
	return usecase.OrderItemInput{
		ProductID:    firstOf(r.ProductID.String(), r.ProductIDAlt.String()),
		VariantID:    firstOf(r.VariantID.String(), r.VariantIDAlt.String()),
		Title:        r.Title,
		VariantLabel: r.Variant,
		Image:        r.Image,
		Price:        r.Price,
		Quantity:     r.Quantity,
	}
}

func orderItemInputs(items []OrderItemRequest) []usecase.OrderItemInput {
	out := make([]usecase.OrderItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, item.input())
	}
	return out
}

// AddressRequest is a postal address in camel or snake case.
type AddressRequest struct {
	FirstName    string `json:"firstName"`
	FirstNameAlt string `json:"first_name"`
	LastName     string `json:"lastName"`
	LastNameAlt  string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	State        string `json:"state"`
	Region       string `json:"region"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	PostalCode   string `json:"postal_code"`
}

func (r *AddressRequest) input() usecase.AddressInput {
	if r == nil {
		return usecase.AddressInput{}
	}
	return usecase.AddressInput{
		FirstName: firstOf(r.FirstName, r.FirstNameAlt),
		LastName:  firstOf(r.LastName, r.LastNameAlt),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		Country:   strings.TrimSpace(r.Country),
		Region:    firstOf(r.State, r.Region),
		Address1:  strings.TrimSpace(r.Address1),
		Address2:  strings.TrimSpace(r.Address2),
		City:      strings.TrimSpace(r.City),
		Zip:       firstOf(r.Zip, r.PostalCode),
	}
}

// CustomerRequest identifies the buyer. A missing name is built from first
// and last name.
type CustomerRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (r *CustomerRequest) input() usecase.CustomerInput {
	if r == nil {
		return usecase.CustomerInput{}
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	}
	return usecase.CustomerInput{Email: strings.TrimSpace(r.Email), Name: name, Phone: strings.TrimSpace(r.Phone)}
}

// SubmitOrderRequest is the checkout payload.
type SubmitOrderRequest struct {
	Items            []OrderItemRequest `json:"items"`
	Shipping         *AddressRequest    `json:"shipping"`
	Billing          *AddressRequest    `json:"billing"`
	Customer         *CustomerRequest   `json:"customer"`
	PaymentConfirmed bool               `json:"paymentConfirmed"`
	PaymentIntentID  string             `json:"paymentIntentId"`
	Subtotal         *decimal.Decimal   `json:"subtotal"`
	ShippingCost     *decimal.Decimal   `json:"shippingCost"`
	Tax              *decimal.Decimal   `json:"tax"`
	Total            *decimal.Decimal   `json:"total"`
}

// Input converts the request.
func (r SubmitOrderRequest) Input() usecase.SubmitOrderInput {
	in := usecase.SubmitOrderInput{
		Items:            orderItemInputs(r.Items),
		Shipping:         r.Shipping.input(),
		Customer:         r.Customer.input(),
		PaymentConfirmed: r.PaymentConfirmed,
		PaymentIntentID:  strings.TrimSpace(r.PaymentIntentID),
		Amounts: usecase.AmountsInput{
			Subtotal:     r.Subtotal,
			ShippingCost: r.ShippingCost,
			Tax:          r.Tax,
			Total:        r.Total,
		},
	}
	if r.Billing != nil {
		billing := r.Billing.input()
		in.Billing = &billing
	}
	return in
}

// ShippingQuoteRequest asks for shipping prices.
type ShippingQuoteRequest struct {
	Items   []OrderItemRequest `json:"items"`
	Address *AddressRequest    `json:"address"`
}

// Input converts the request.
func (r ShippingQuoteRequest) Input() usecase.ShippingQuoteInput {
	addr := r.Address.input()
	return usecase.ShippingQuoteInput{
		Items: orderItemInputs(r.Items),
		Address: usecase.ShippingAddressInput{
			FirstName: addr.FirstName,
			LastName:  addr.LastName,
			Country:   addr.Country,
			Region:    addr.Region,
			Address1:  addr.Address1,
			City:      addr.City,
			Zip:       addr.Zip,
		},
	}
}

// SubmitOrderResponse describes a placed order.
type SubmitOrderResponse struct {
	Success          bool   `json:"success"`
	OrderID          int64  `json:"orderId"`
	ExternalID       string `json:"externalId"`
	PrintifyOrderID  string `json:"printifyOrderId"`
	Status           string `json:"status"`
	PaymentStatus    string `json:"paymentStatus"`
	ProductionQueued bool   `json:"productionQueued"`
	Message          string `json:"message"`
}

// NewSubmitOrderResponse converts a submission result.
func NewSubmitOrderResponse(res *usecase.SubmitResult) SubmitOrderResponse {
	return SubmitOrderResponse{
		Success:          true,
		OrderID:          res.OrderID,
		ExternalID:       res.Reference,
		PrintifyOrderID:  res.ExternalOrderID,
		Status:           string(res.Status),
		PaymentStatus:    string(res.PaymentStatus),
		ProductionQueued: res.ProductionQueued,
		Message:          "Order created successfully",
	}
}

// Address is a postal address in responses.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

func newAddress(a model.Address) Address {
	return Address{
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
}

// OrderItem is an order line in responses.
type OrderItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Title     string `json:"title,omitempty"`
	Variant   string `json:"variant,omitempty"`
	Image     string `json:"image,omitempty"`
	Price     Amount `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is the local order record in responses.
type Order struct {
	ID              int64       `json:"id"`
	PrintifyOrderID string      `json:"printify_order_id"`
	ExternalID      string      `json:"external_id"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerName    string      `json:"customer_name"`
	ShippingAddress Address     `json:"shipping_address"`
	BillingAddress  *Address    `json:"billing_address,omitempty"`
	Items           []OrderItem `json:"items"`
	Subtotal        Amount      `json:"subtotal"`
	ShippingCost    Amount      `json:"shipping_cost"`
	Tax             Amount      `json:"tax"`
	Total           Amount      `json:"total"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	TrackingNumber  string      `json:"tracking_number,omitempty"`
	TrackingURL     string      `json:"tracking_url,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewOrder converts an order record.
func NewOrder(o model.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Title:     it.Title,
			Variant:   it.VariantLabel,
			Image:     it.Image,
			Price:     Amount(it.Price),
			Quantity:  it.Quantity,
		})
	}
	out := Order{
		ID:              o.ID,
		PrintifyOrderID: o.ExternalOrderID,
		ExternalID:      o.ReferenceToken,
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		ShippingAddress: newAddress(o.ShippingAddress),
		Items:           items,
		Subtotal:        Amount(o.Subtotal),
		ShippingCost:    Amount(o.ShippingCost),
		Tax:             Amount(o.Tax),
		Total:           Amount(o.Total),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentIntentID: o.PaymentIntentID,
		TrackingNumber:  o.TrackingNumber,
		TrackingURL:     o.TrackingURL,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.BillingAddress != nil {
		billing := newAddress(*o.BillingAddress)
		out.BillingAddress = &billing
	}
	return out
}

// NewOrders converts a list of order records.
func NewOrders(orders []model.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrder(o))
	}
	return out
}

// OrderLookupResponse tags an order with where it was found.
type OrderLookupResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Source  string `json:"source"`
}

// NewOrderLookupResponse converts a lookup result. Remote orders are passed
// through as the fulfillment service returned them.
func NewOrderLookupResponse(res *usecase.OrderLookup) OrderLookupResponse {
	if res.Order != nil {
		return OrderLookupResponse{Success: true, Data: NewOrder(*res.Order), Source: res.Source}
	}
	var data any = res.Remote
	if res.Remote != nil && len(res.Remote.Raw) > 0 {
		data = json.RawMessage(res.Remote.Raw)
	} else if res.Remote != nil {
		data = map[string]string{"id": res.Remote.ID, "external_id": res.Remote.ExternalID, "status": res.Remote.Status}
	}
	return OrderLookupResponse{Success: true, Data: data, Source: res.Source}
}
