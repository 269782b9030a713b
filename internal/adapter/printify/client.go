package printify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const maxErrorBody = 4 << 10

// Client exposes the fulfillment service operations the storefront relies on.
type Client interface {
	CreateOrder(ctx context.Context, req model.RemoteOrderRequest) (*model.RemoteOrder, error)
	SendToProduction(ctx context.Context, remoteOrderID string) error
	ShippingQuote(ctx context.Context, req model.ShippingQuoteRequest) (model.ShippingQuote, error)
	GetOrder(ctx context.Context, remoteOrderID string) (*model.RemoteOrder, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

// HTTPClient implements Client via the Printify REST API.
type HTTPClient struct {
	baseURL    *url.URL
	shopID     string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type addressPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}

type lineItemPayload struct {
	ProductID string `json:"product_id"`
	VariantID any    `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type orderPayload struct {
	ExternalID               string            `json:"external_id"`
	Label                    string            `json:"label"`
	LineItems                []lineItemPayload `json:"line_items"`
	ShippingMethod           int               `json:"shipping_method"`
	SendShippingNotification bool              `json:"send_shipping_notification"`
	AddressTo                addressPayload    `json:"address_to"`
}

type shippingPayload struct {
	LineItems []lineItemPayload `json:"line_items"`
	AddressTo addressPayload    `json:"address_to"`
}

type orderResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

type productResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Images      []model.ProductImage   `json:"images"`
	Variants    []model.ProductVariant `json:"variants"`
	Tags        []string               `json:"tags"`
	Visible     *bool                  `json:"visible"`
	CreatedAt   string                 `json:"created_at"`
}

type productPage struct {
	Data []productResponse `json:"data"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewHTTPClient creates a client bound to one shop. Every call is limited by timeout.
func NewHTTPClient(baseURL, shopID, token string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse printify url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("printify url must be absolute")
	}
	if shopID == "" || token == "" {
		logger.Warn("printify credentials not configured")
	}
	return &HTTPClient{
		baseURL: parsed,
		shopID:  shopID,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) CreateOrder(ctx context.Context, req model.RemoteOrderRequest) (*model.RemoteOrder, error) {
	payload := orderPayload{
		ExternalID:               req.ExternalID,
		Label:                    req.Label,
		LineItems:                toLineItems(req.LineItems),
		ShippingMethod:           req.ShippingMethod,
		SendShippingNotification: req.SendShippingNotification,
		AddressTo:                toAddress(req.AddressTo),
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "orders.json", payload, &raw); err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *HTTPClient) SendToProduction(ctx context.Context, remoteOrderID string) error {
	return c.do(ctx, http.MethodPost, path.Join("orders", url.PathEscape(remoteOrderID), "send_to_production.json"), struct{}{}, nil)
}

func (c *HTTPClient) ShippingQuote(ctx context.Context, req model.ShippingQuoteRequest) (model.ShippingQuote, error) {
	payload := shippingPayload{LineItems: toLineItems(req.LineItems), AddressTo: toAddress(req.AddressTo)}
	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPost, "orders/shipping.json", payload, &raw); err != nil {
		return nil, err
	}
	quote := make(model.ShippingQuote, len(raw))
	for method, value := range raw {
		var cents int64
		if err := json.Unmarshal(value, &cents); err == nil {
			quote[method] = cents
		}
	}
	return quote, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, remoteOrderID string) (*model.RemoteOrder, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path.Join("orders", url.PathEscape(remoteOrderID)+".json"), nil, &raw); err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// ListProducts returns the shop catalog untransformed. Products flagged
// invisible keep Visible false.
func (c *HTTPClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "products.json", nil, &raw); err != nil {
		return nil, err
	}

	var items []productResponse
	var page productPage
	if err := json.Unmarshal(raw, &page); err == nil && page.Data != nil {
		items = page.Data
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]model.Product, 0, len(items))
	for _, p := range items {
		products = append(products, p.model())
	}
	return products, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	var p productResponse
	if err := c.do(ctx, http.MethodGet, path.Join("products", url.PathEscape(productID)+".json"), nil, &p); err != nil {
		return nil, err
	}
	product := p.model()
	return &product, nil
}

func (p productResponse) model() model.Product {
	visible := p.Visible == nil || *p.Visible
	return model.Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Images:      p.Images,
		Variants:    p.Variants,
		Tags:        p.Tags,
		Visible:     visible,
		CreatedAt:   p.CreatedAt,
	}
}

func decodeOrder(raw json.RawMessage) (*model.RemoteOrder, error) {
	var resp orderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &model.RemoteOrder{ID: resp.ID, ExternalID: resp.ExternalID, Status: resp.Status, Raw: raw}, nil
}

func toLineItems(items []model.RemoteLineItem) []lineItemPayload {
	out := make([]lineItemPayload, 0, len(items))
	for _, it := range items {
		line := lineItemPayload{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.VariantID != "" {
			// Printify variant ids are numeric.
			if n, err := strconv.ParseInt(it.VariantID, 10, 64); err == nil {
				line.VariantID = n
			} else {
				line.VariantID = it.VariantID
			}
		}
		out = append(out, line)
	}
	return out
}

func toAddress(a model.Address) addressPayload {
	return addressPayload{
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

func (c *HTTPClient) endpoint(resource string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "shops", url.PathEscape(c.shopID), resource)
	return endpoint.String()
}

func (c *HTTPClient) do(ctx context.Context, method, resource string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(resource), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("printify request failed",
			slog.String("method", method),
			slog.String("resource", resource),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		gwErr := &domainErrors.GatewayError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			gwErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return gwErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode printify response: %w", err)
	}
	return nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domainErrors.GatewayError{Timeout: true, Message: err.Error()}
	}
	return &domainErrors.GatewayError{Message: err.Error()}
}

func errorMessage(body []byte, status string) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		switch {
		case resp.Message != "":
			return resp.Message
		case resp.Error != "":
			return resp.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
