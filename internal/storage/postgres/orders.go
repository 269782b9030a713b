package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

type addressRecord struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

type orderItemRecord struct {
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id,omitempty"`
	Title        string          `json:"title"`
	VariantLabel string          `json:"variant_title,omitempty"`
	Image        string          `json:"image,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
}

func toAddressRecord(a model.Address) addressRecord {
	return addressRecord(a)
}

func (r addressRecord) model() model.Address {
	return model.Address(r)
}

func encodeAddress(a *model.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(toAddressRecord(*a))
}

func encodeOrderItems(items []model.OrderItem) ([]byte, error) {
	records := make([]orderItemRecord, 0, len(items))
	for _, it := range items {
		records = append(records, orderItemRecord(it))
	}
	return json.Marshal(records)
}

const orderColumns = `id, external_order_id, reference_token, customer_email, customer_name,
                      shipping_address, billing_address, items, subtotal, shipping_cost, tax, total,
                      status, payment_status, payment_intent_id, tracking_number, tracking_url,
                      created_at, updated_at`

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o                      model.Order
		shipping, billing, raw []byte
		intent, number, url    *string
	)
	err := row.Scan(&o.ID, &o.ExternalOrderID, &o.ReferenceToken, &o.CustomerEmail, &o.CustomerName,
		&shipping, &billing, &raw, &o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
		&o.Status, &o.PaymentStatus, &intent, &number, &url, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var ship addressRecord
	if err := json.Unmarshal(shipping, &ship); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	o.ShippingAddress = ship.model()

	if len(billing) > 0 && string(billing) != "null" {
		var bill addressRecord
		if err := json.Unmarshal(billing, &bill); err != nil {
			return nil, fmt.Errorf("decode billing address: %w", err)
		}
		addr := bill.model()
		o.BillingAddress = &addr
	}

	var items []orderItemRecord
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	for _, it := range items {
		o.Items = append(o.Items, model.OrderItem(it))
	}

	o.PaymentIntentID = derefString(intent)
	o.TrackingNumber = derefString(number)
	o.TrackingURL = derefString(url)
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	shipping, err := encodeAddress(&order.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billing, err := encodeAddress(order.BillingAddress)
	if err != nil {
		return nil, err
	}
	items, err := encodeOrderItems(order.Items)
	if err != nil {
		return nil, err
	}
	paymentStatus := order.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = model.PaymentStatusPending
	}

	const query = `INSERT INTO orders (external_order_id, reference_token, customer_email, customer_name,
                       shipping_address, billing_address, items, subtotal, shipping_cost, tax, total,
                       payment_status, payment_intent_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                   RETURNING id, status, created_at, updated_at`

	created := model.Order{
		ExternalOrderID: order.ExternalOrderID,
		ReferenceToken:  order.ReferenceToken,
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		Items:           order.Items,
		Subtotal:        order.Subtotal,
		ShippingCost:    order.ShippingCost,
		Tax:             order.Tax,
		Total:           order.Total,
		PaymentStatus:   paymentStatus,
		PaymentIntentID: order.PaymentIntentID,
	}
	err = r.storage.pool.QueryRow(ctx, query,
		order.ExternalOrderID, order.ReferenceToken, order.CustomerEmail, order.CustomerName,
		shipping, billing, items, order.Subtotal, order.ShippingCost, order.Tax, order.Total,
		paymentStatus, nullString(order.PaymentIntentID),
	).Scan(&created.ID, &created.Status, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE external_order_id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepository) ListByCustomerEmail(ctx context.Context, email string, page, limit int) (*model.OrderList, error) {
	page, limit = model.NormalizePage(page, limit)

	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_email=$1`, email).Scan(&total); err != nil {
		return nil, err
	}

	meta := model.NewPage(page, limit, total)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_email=$1
              ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	orders, err := r.listOrders(ctx, query, email, limit, meta.Offset())
	if err != nil {
		return nil, err
	}
	return &model.OrderList{Orders: orders, Page: meta}, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	page, limit := model.NormalizePage(filter.Page, filter.Limit)
	status := string(filter.Status)

	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, status).Scan(&total); err != nil {
		return nil, err
	}

	meta := model.NewPage(page, limit, total)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ($1 = '' OR status = $1)
              ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	orders, err := r.listOrders(ctx, query, status, limit, meta.Offset())
	if err != nil {
		return nil, err
	}
	return &model.OrderList{Orders: orders, Page: meta}, nil
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (bool, error) {
	tag, err := r.storage.pool.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1 AND status = ANY($3)`,
		id, status, status.Preceding())
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domainErrors.ErrNotFound
	}
	return false, nil
}

// UpdatePaymentStatus keeps the stored intent id when none is given.
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus, paymentIntentID string) error {
	const query = `UPDATE orders
                   SET payment_status=$2, payment_intent_id=COALESCE($3, payment_intent_id), updated_at=NOW()
                   WHERE id=$1`
	return r.execAffecting(ctx, query, id, status, nullString(paymentIntentID))
}

// UpdateTracking records shipment details. The first tracking number moves a
// pending or processing order to shipped.
func (r *orderRepository) UpdateTracking(ctx context.Context, id int64, trackingNumber, trackingURL string) error {
	const query = `UPDATE orders
                   SET status = CASE WHEN tracking_number IS NULL AND status IN ('pending', 'processing') THEN 'shipped' ELSE status END,
                       tracking_number=$2, tracking_url=COALESCE($3, tracking_url), updated_at=NOW()
                   WHERE id=$1`
	return r.execAffecting(ctx, query, id, trackingNumber, nullString(trackingURL))
}

func (r *orderRepository) execAffecting(ctx context.Context, query string, args ...any) error {
	tag, err := r.storage.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// UpdateByExternalID applies the set fields of update and returns the stored order.
func (r *orderRepository) UpdateByExternalID(ctx context.Context, externalID string, update model.OrderUpdate) (*model.Order, error) {
	if update.Empty() {
		return r.GetByExternalID(ctx, externalID)
	}

	sets := make([]string, 0, 5)
	args := []any{externalID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	if update.Status != nil {
		args = append(args, *update.Status, update.Status.Preceding())
		n := len(args)
		sets = append(sets, "status=CASE WHEN status = ANY($"+strconv.Itoa(n)+") THEN $"+strconv.Itoa(n-1)+" ELSE status END")
	}
	if update.PaymentStatus != nil {
		add("payment_status", *update.PaymentStatus)
	}
	if update.TrackingNumber != nil {
		add("tracking_number", *update.TrackingNumber)
	}
	if update.TrackingURL != nil {
		add("tracking_url", *update.TrackingURL)
	}
	sets = append(sets, "updated_at=NOW()")

	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE external_order_id=$1 RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}
