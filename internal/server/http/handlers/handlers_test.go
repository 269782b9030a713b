package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, pattern, target string, handler gin.HandlerFunc, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, handler)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const sessionID = "3f2b8c1e-9d4a-4e6b-8a7c-1b2d3e4f5a6b"

func sampleCart() *model.CartSession {
	return &model.CartSession{
		ID: sessionID,
		Items: []model.CartLine{
			{ProductID: "p1", VariantID: "v1", Title: "Mug", Price: decimal.RequireFromString("12.5"), Quantity: 2},
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSessionID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?session_id=from-query", nil)
	if got := SessionID(c); got != "from-query" {
		t.Fatalf("expected query session, got %q", got)
	}
	c.Request.Header.Set(SessionHeader, "from-header")
	if got := SessionID(c); got != "from-header" {
		t.Fatalf("expected header to win, got %q", got)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	verr := &domainErrors.ValidationError{}
	verr.Add("items", "is required")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", verr, http.StatusBadRequest},
		{"session", domainErrors.ErrInvalidSession, http.StatusNotFound},
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound},
		{"conflict", domainErrors.ErrAlreadyExists, http.StatusConflict},
		{"gateway timeout", &domainErrors.GatewayError{Timeout: true}, http.StatusGatewayTimeout},
		{"gateway unavailable", &domainErrors.GatewayError{Message: "dial"}, http.StatusBadGateway},
		{"gateway 500", &domainErrors.GatewayError{StatusCode: 500}, http.StatusBadGateway},
		{"gateway unauthorized", &domainErrors.GatewayError{StatusCode: 401}, http.StatusBadGateway},
		{"gateway 422", &domainErrors.GatewayError{StatusCode: 422, Message: "bad address"}, http.StatusUnprocessableEntity},
		{"wrapped gateway", errors.Join(errors.New("create"), &domainErrors.GatewayError{StatusCode: 429}), http.StatusTooManyRequests},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tt.err)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
			body := decodeBody(t, w)
			if body["success"] != false {
				t.Fatalf("expected success=false, got %v", body["success"])
			}
		})
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, verr)
	body := decodeBody(t, w)
	fields, _ := body["errors"].([]any)
	if len(fields) != 1 || fields[0].(map[string]any)["field"] != "items" {
		t.Fatalf("expected field list, got %v", body["errors"])
	}
}

func TestCartHandlerGetEchoesSession(t *testing.T) {
	var gotSession string
	handler := NewCartHandler(storeStub{cartFn: func(_ context.Context, sid string) (*model.CartSession, error) {
		gotSession = sid
		return sampleCart(), nil
	}})
	resp := performRequest(t, http.MethodGet, "/api/cart", "/api/cart?session_id=abc", handler.Get, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotSession != "abc" {
		t.Fatalf("expected query session passed through, got %q", gotSession)
	}
	if resp.Header().Get(SessionHeader) != sessionID {
		t.Fatalf("expected minted session echoed, got %q", resp.Header().Get(SessionHeader))
	}
	data := decodeBody(t, resp)["data"].(map[string]any)
	if data["session_id"] != sessionID || data["item_count"].(float64) != 2 || data["subtotal"].(float64) != 25 {
		t.Fatalf("unexpected cart body %v", data)
	}
}

func TestCartHandlerAddItem(t *testing.T) {
	var got usecase.CartLineInput
	handler := NewCartHandler(storeStub{addFn: func(_ context.Context, sid string, in usecase.CartLineInput) (*model.CartSession, error) {
		if sid != sessionID {
			t.Fatalf("unexpected session %q", sid)
		}
		got = in
		return sampleCart(), nil
	}})
	body := []byte(`{"product_id": 42, "variant_id": "7", "title": "Mug", "price": 12.5, "quantity": 2}`)
	resp := performRequest(t, http.MethodPost, "/api/cart/items", "/api/cart/items", handler.AddItem, body, map[string]string{SessionHeader: sessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.ProductID != "42" || got.VariantID != "7" || got.Quantity != 2 || got.Price == nil || !got.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected input %+v", got)
	}
}

func TestCartHandlerAddItemFailures(t *testing.T) {
	verr := &domainErrors.ValidationError{}
	verr.Add("price", "is required")
	handler := NewCartHandler(storeStub{addFn: func(context.Context, string, usecase.CartLineInput) (*model.CartSession, error) {
		return nil, verr
	}})

	resp := performRequest(t, http.MethodPost, "/api/cart/items", "/api/cart/items", handler.AddItem, []byte("{"), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/api/cart/items", "/api/cart/items", handler.AddItem, []byte(`{"productId":"p1","title":"Mug"}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation error, got %d", resp.Code)
	}
	if _, ok := decodeBody(t, resp)["errors"]; !ok {
		t.Fatal("expected field errors in body")
	}
}

func TestCartHandlerUpdateItem(t *testing.T) {
	var (
		gotKey model.LineKey
		gotQty int
	)
	handler := NewCartHandler(storeStub{updateFn: func(_ context.Context, _ string, key model.LineKey, qty int) (*model.CartSession, error) {
		gotKey, gotQty = key, qty
		return sampleCart(), nil
	}})

	resp := performRequest(t, http.MethodPut, "/api/cart/items/:productId", "/api/cart/items/p1", handler.UpdateItem, []byte(`{"variantId":"v1"}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without quantity, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/api/cart/items/:productId", "/api/cart/items/p1", handler.UpdateItem, []byte(`{"variantId":"v1","quantity":0}`), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotKey != (model.LineKey{ProductID: "p1", VariantID: "v1"}) || gotQty != 0 {
		t.Fatalf("unexpected update %+v %d", gotKey, gotQty)
	}
}

func TestCartHandlerRemoveItem(t *testing.T) {
	var gotKey model.LineKey
	handler := NewCartHandler(storeStub{removeFn: func(_ context.Context, sid string, key model.LineKey) (*model.CartSession, error) {
		gotKey = key
		if sid == "" {
			return nil, domainErrors.ErrInvalidSession
		}
		return sampleCart(), nil
	}})

	resp := performRequest(t, http.MethodDelete, "/api/cart/items/:productId", "/api/cart/items/p1?variantId=v1", handler.RemoveItem, nil, map[string]string{SessionHeader: sessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotKey != (model.LineKey{ProductID: "p1", VariantID: "v1"}) {
		t.Fatalf("unexpected key %+v", gotKey)
	}

	resp = performRequest(t, http.MethodDelete, "/api/cart/items/:productId", "/api/cart/items/p1", handler.RemoveItem, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing session, got %d", resp.Code)
	}
}

func TestCartHandlerClearSyncMerge(t *testing.T) {
	var (
		synced []usecase.CartLineInput
		email  string
	)
	handler := NewCartHandler(storeStub{
		clearFn: func(context.Context, string) (*model.CartSession, error) {
			cart := sampleCart()
			cart.Items = nil
			return cart, nil
		},
		syncFn: func(_ context.Context, _ string, lines []usecase.CartLineInput) (*model.CartSession, error) {
			synced = lines
			return sampleCart(), nil
		},
		mergeFn: func(_ context.Context, _ string, e string) (*model.CartSession, error) {
			email = e
			cart := sampleCart()
			cart.CustomerEmail = e
			return cart, nil
		},
	})

	resp := performRequest(t, http.MethodDelete, "/api/cart", "/api/cart", handler.Clear, nil, map[string]string{SessionHeader: sessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Cart cleared" {
		t.Fatalf("unexpected clear body %v", body)
	}
	if items := body["data"].(map[string]any)["items"].([]any); len(items) != 0 {
		t.Fatalf("expected empty items, got %v", items)
	}

	resp = performRequest(t, http.MethodPost, "/api/cart/sync", "/api/cart/sync", handler.Sync, []byte(`{"items":[{"productId":"p1","title":"Mug","price":"3","quantity":4},{"productId":"p2","title":"Tee","price":9,"quantity":1}]}`), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(synced) != 2 || synced[0].Quantity != 4 || synced[1].ProductID != "p2" {
		t.Fatalf("unexpected synced lines %+v", synced)
	}

	resp = performRequest(t, http.MethodPost, "/api/cart/merge", "/api/cart/merge", handler.Merge, []byte(`{"email":"ann@example.com"}`), nil)
	if resp.Code != http.StatusOK || email != "ann@example.com" {
		t.Fatalf("unexpected merge result %d %q", resp.Code, email)
	}
	if got := decodeBody(t, resp)["data"].(map[string]any)["customer_email"]; got != "ann@example.com" {
		t.Fatalf("expected customer email in body, got %v", got)
	}
}

func TestOrderHandlerSubmit(t *testing.T) {
	var got usecase.SubmitOrderInput
	handler := NewOrderHandler(storeStub{submitFn: func(_ context.Context, in usecase.SubmitOrderInput) (*usecase.SubmitResult, error) {
		got = in
		return &usecase.SubmitResult{
			OrderID:         7,
			ExternalOrderID: "pf-1",
			Reference:       "ORDER-1",
			Status:          model.OrderStatusProcessing,
			PaymentStatus:   model.PaymentStatusPaid,
		}, nil
	}})
	body := []byte(`{
		"items": [{"product_id": "p1", "variant_id": 11, "quantity": 2, "price": 10}],
		"shipping": {"first_name": "Ann", "last_name": "Lee", "email": "ann@example.com", "country": "US", "region": "CA", "address1": "1 Main", "city": "LA", "postal_code": "90001"},
		"customer": {"email": "ann@example.com", "firstName": "Ann", "lastName": "Lee"},
		"paymentConfirmed": true,
		"paymentIntentId": "pi_1",
		"total": 20
	}`)
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	out := decodeBody(t, resp)
	if out["orderId"].(float64) != 7 || out["externalId"] != "ORDER-1" || out["printifyOrderId"] != "pf-1" || out["status"] != "processing" {
		t.Fatalf("unexpected response %v", out)
	}
	if got.Items[0].ProductID != "p1" || got.Items[0].VariantID != "11" {
		t.Fatalf("unexpected items %+v", got.Items)
	}
	if got.Shipping.FirstName != "Ann" || got.Shipping.Zip != "90001" || got.Shipping.Region != "CA" {
		t.Fatalf("unexpected shipping %+v", got.Shipping)
	}
	if got.Customer.Name != "Ann Lee" || !got.PaymentConfirmed || got.PaymentIntentID != "pi_1" {
		t.Fatalf("unexpected customer/payment %+v", got)
	}
	if got.Amounts.Total == nil || !got.Amounts.Total.Equal(decimal.NewFromInt(20)) || got.Amounts.Subtotal != nil {
		t.Fatalf("unexpected amounts %+v", got.Amounts)
	}
	if got.Billing != nil {
		t.Fatalf("expected no billing address, got %+v", got.Billing)
	}
}

func TestOrderHandlerSubmitFailures(t *testing.T) {
	verr := &domainErrors.ValidationError{}
	verr.Add("items", "is required")
	verr.Add("shipping.country", "is required")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", verr, http.StatusBadRequest},
		{"gateway", &domainErrors.GatewayError{StatusCode: 500, Message: "upstream"}, http.StatusBadGateway},
		{"timeout", &domainErrors.GatewayError{Timeout: true}, http.StatusGatewayTimeout},
		{"store", errors.New("insert failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOrderHandler(storeStub{submitFn: func(context.Context, usecase.SubmitOrderInput) (*usecase.SubmitResult, error) {
				return nil, tt.err
			}})
			resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, []byte(`{}`), nil)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
		})
	}

	handler := NewOrderHandler(storeStub{submitFn: func(context.Context, usecase.SubmitOrderInput) (*usecase.SubmitResult, error) {
		return nil, verr
	}})
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Submit, []byte(`{}`), nil)
	if fields := decodeBody(t, resp)["errors"].([]any); len(fields) != 2 {
		t.Fatalf("expected every field reported, got %v", fields)
	}
}

func TestOrderHandlerGet(t *testing.T) {
	handler := NewOrderHandler(storeStub{lookupFn: func(_ context.Context, id string) (*usecase.OrderLookup, error) {
		switch id {
		case "7":
			return &usecase.OrderLookup{Order: &model.Order{ID: 7, ExternalOrderID: "pf-7", Total: decimal.NewFromInt(20)}, Source: usecase.SourceLocal}, nil
		case "pf-9":
			return &usecase.OrderLookup{Remote: &model.RemoteOrder{ID: "pf-9", Raw: json.RawMessage(`{"id":"pf-9","status":"on-hold"}`)}, Source: usecase.SourceRemote}, nil
		}
		return nil, domainErrors.ErrNotFound
	}})

	resp := performRequest(t, http.MethodGet, "/api/orders/:orderId", "/api/orders/7", handler.Get, nil, nil)
	body := decodeBody(t, resp)
	if resp.Code != http.StatusOK || body["source"] != "database" {
		t.Fatalf("unexpected local lookup %d %v", resp.Code, body)
	}
	if data := body["data"].(map[string]any); data["printify_order_id"] != "pf-7" || data["total"].(float64) != 20 {
		t.Fatalf("unexpected order body %v", data)
	}

	resp = performRequest(t, http.MethodGet, "/api/orders/:orderId", "/api/orders/pf-9", handler.Get, nil, nil)
	body = decodeBody(t, resp)
	if body["source"] != "printify" || body["data"].(map[string]any)["status"] != "on-hold" {
		t.Fatalf("unexpected remote lookup %v", body)
	}

	resp = performRequest(t, http.MethodGet, "/api/orders/:orderId", "/api/orders/nope", handler.Get, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestOrderHandlerListings(t *testing.T) {
	var (
		gotEmail  string
		gotPage   int
		gotLimit  int
		gotFilter model.OrderFilter
	)
	list := &model.OrderList{Orders: []model.Order{{ID: 1}, {ID: 2}}, Page: model.NewPage(2, 2, 5)}
	handler := NewOrderHandler(storeStub{
		customerFn: func(_ context.Context, email string, page, limit int) (*model.OrderList, error) {
			gotEmail, gotPage, gotLimit = email, page, limit
			return list, nil
		},
		listOrdersFn: func(_ context.Context, filter model.OrderFilter) (*model.OrderList, error) {
			gotFilter = filter
			return list, nil
		},
	})

	resp := performRequest(t, http.MethodGet, "/api/orders/customer/:email", "/api/orders/customer/ann@example.com?page=2&limit=2", handler.ByCustomer, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotEmail != "ann@example.com" || gotPage != 2 || gotLimit != 2 {
		t.Fatalf("unexpected args %q %d %d", gotEmail, gotPage, gotLimit)
	}
	pagination := decodeBody(t, resp)["pagination"].(map[string]any)
	if pagination["total"].(float64) != 5 || pagination["totalPages"].(float64) != 3 {
		t.Fatalf("unexpected pagination %v", pagination)
	}

	resp = performRequest(t, http.MethodGet, "/api/admin/orders", "/api/admin/orders?status=shipped", handler.List, nil, nil)
	if resp.Code != http.StatusOK || gotFilter.Status != model.OrderStatusShipped {
		t.Fatalf("unexpected admin listing %d %+v", resp.Code, gotFilter)
	}
}

func TestOrderHandlerShipping(t *testing.T) {
	var got usecase.ShippingQuoteInput
	handler := NewOrderHandler(storeStub{quoteFn: func(_ context.Context, in usecase.ShippingQuoteInput) (model.ShippingQuote, error) {
		got = in
		return model.ShippingQuote{"standard": 499}, nil
	}})
	body := []byte(`{"items":[{"productId":"p1","variantId":2,"quantity":1}],"address":{"country":"DE","zip":"10115"}}`)
	resp := performRequest(t, http.MethodPost, "/api/orders/shipping/calculate", "/api/orders/shipping/calculate", handler.Shipping, body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got.Address.Country != "DE" || got.Items[0].VariantID != "2" {
		t.Fatalf("unexpected quote input %+v", got)
	}
	if data := decodeBody(t, resp)["data"].(map[string]any); data["standard"].(float64) != 499 {
		t.Fatalf("unexpected quote %v", data)
	}
}

func TestOrderHandlerProduction(t *testing.T) {
	handler := NewOrderHandler(storeStub{retryFn: func(_ context.Context, id int64) (*model.Order, error) {
		if id != 7 {
			return nil, domainErrors.ErrNotFound
		}
		return &model.Order{ID: 7, Status: model.OrderStatusProcessing}, nil
	}})

	resp := performRequest(t, http.MethodPost, "/api/orders/:orderId/production", "/api/orders/abc/production", handler.Production, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPost, "/api/orders/:orderId/production", "/api/orders/8/production", handler.Production, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPost, "/api/orders/:orderId/production", "/api/orders/7/production", handler.Production, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestWebhookHandlerStripe(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"orderId":"42"}}}}`)

	handler := NewWebhookHandler(storeStub{}, testhelpers.SignatureVerifierStub{Unconfigured: true}, discardLogger())
	resp := performRequest(t, http.MethodPost, "/", "/", handler.Stripe, payload, map[string]string{StripeSignatureHeader: "valid"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without secret, got %d", resp.Code)
	}

	called := false
	handler = NewWebhookHandler(storeStub{paymentFn: func(context.Context, model.PaymentEvent) (model.ReconcileOutcome, error) {
		called = true
		return model.OutcomeApplied, nil
	}}, testhelpers.SignatureVerifierStub{}, discardLogger())
	resp = performRequest(t, http.MethodPost, "/", "/", handler.Stripe, payload, map[string]string{StripeSignatureHeader: "forged"})
	if resp.Code != http.StatusBadRequest || called {
		t.Fatalf("expected rejected signature without processing, got %d called=%v", resp.Code, called)
	}

	var got model.PaymentEvent
	var verifiedPayload []byte
	handler = NewWebhookHandler(storeStub{paymentFn: func(_ context.Context, evt model.PaymentEvent) (model.ReconcileOutcome, error) {
		got = evt
		return model.OutcomeApplied, nil
	}}, testhelpers.SignatureVerifierStub{VerifyFn: func(p []byte, header string) error {
		verifiedPayload = p
		return nil
	}}, discardLogger())
	resp = performRequest(t, http.MethodPost, "/", "/", handler.Stripe, payload, map[string]string{StripeSignatureHeader: "t=1,v1=ab"})
	if resp.Code != http.StatusOK || decodeBody(t, resp)["received"] != true {
		t.Fatalf("expected ack, got %d %s", resp.Code, resp.Body.String())
	}
	if !bytes.Equal(verifiedPayload, payload) {
		t.Fatalf("expected raw payload verified, got %s", verifiedPayload)
	}
	if got.ID != "evt_1" || got.OrderID != 42 || got.PaymentIntentID != "pi_1" || got.Type != model.PaymentEventSucceeded {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestWebhookHandlerStripeAcknowledgesProcessingFailure(t *testing.T) {
	handler := NewWebhookHandler(storeStub{paymentFn: func(context.Context, model.PaymentEvent) (model.ReconcileOutcome, error) {
		return "", errors.New("db down")
	}}, testhelpers.SignatureVerifierStub{}, discardLogger())
	resp := performRequest(t, http.MethodPost, "/", "/", handler.Stripe, []byte(`{"type":"payment_intent.succeeded","data":{"object":{"metadata":{"orderId":"x"}}}}`), map[string]string{StripeSignatureHeader: "valid"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected ack despite failure, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/", "/", handler.Stripe, []byte(`not json`), map[string]string{StripeSignatureHeader: "valid"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed event, got %d", resp.Code)
	}
}

func TestWebhookHandlerPrintify(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		expect model.FulfillmentEvent
	}{
		{
			name:   "shipment tracking",
			body:   `{"type":"order:shipment:created","resource":{"id":"pf-1","shipments":[{"tracking_number":"TN1","tracking_url":"https://t/1"}]}}`,
			expect: model.FulfillmentEvent{Type: model.FulfillmentEventShipmentCreated, ExternalOrderID: "pf-1", TrackingNumber: "TN1", TrackingURL: "https://t/1"},
		},
		{
			name:   "carrier tracking",
			body:   `{"type":"order:shipment:created","resource":{"id":"pf-2","data":{"carrier":{"code":"usps","tracking_number":"TN2","tracking_url":"https://t/2"}}}}`,
			expect: model.FulfillmentEvent{Type: model.FulfillmentEventShipmentCreated, ExternalOrderID: "pf-2", TrackingNumber: "TN2", TrackingURL: "https://t/2"},
		},
		{
			name:   "numeric id",
			body:   `{"type":"order:sent-to-production","resource":{"id":123}}`,
			expect: model.FulfillmentEvent{Type: model.FulfillmentEventSentToProduction, ExternalOrderID: "123"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.FulfillmentEvent
			handler := NewWebhookHandler(storeStub{fulfillFn: func(_ context.Context, evt model.FulfillmentEvent) (model.ReconcileOutcome, error) {
				got = evt
				return model.OutcomeUnknownOrder, nil
			}}, testhelpers.SignatureVerifierStub{}, discardLogger())
			resp := performRequest(t, http.MethodPost, "/", "/", handler.Printify, []byte(tt.body), nil)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.Code)
			}
			if got != tt.expect {
				t.Fatalf("expected %+v, got %+v", tt.expect, got)
			}
		})
	}

	handler := NewWebhookHandler(storeStub{}, testhelpers.SignatureVerifierStub{}, discardLogger())
	resp := performRequest(t, http.MethodPost, "/", "/", handler.Printify, []byte(`{`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}
}

func TestProductHandler(t *testing.T) {
	products := []model.Product{{ID: "p1", Title: "Mug"}, {ID: "p2", Title: "Tee"}}
	verr := &domainErrors.ValidationError{}
	verr.Add("q", "is required")
	invalidated := false
	handler := NewProductHandler(storeStub{
		productsFn: func(context.Context) ([]model.Product, bool, error) { return products, true, nil },
		productFn: func(_ context.Context, id string) (*model.Product, bool, error) {
			if id == "p1" {
				return &products[0], false, nil
			}
			return nil, false, domainErrors.ErrNotFound
		},
		categoryFn: func(_ context.Context, category string) ([]model.Product, error) { return products[:1], nil },
		searchFn: func(_ context.Context, q string) ([]model.Product, error) {
			if q == "" {
				return nil, verr
			}
			return products[1:], nil
		},
		invalidateFn: func(context.Context) error {
			invalidated = true
			return nil
		},
	})

	resp := performRequest(t, http.MethodGet, "/api/products", "/api/products", handler.List, nil, nil)
	body := decodeBody(t, resp)
	if body["cached"] != true || body["count"].(float64) != 2 {
		t.Fatalf("unexpected list body %v", body)
	}

	resp = performRequest(t, http.MethodGet, "/api/products/:id", "/api/products/p1", handler.Get, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/api/products/:id", "/api/products/zz", handler.Get, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/api/products/category/:category", "/api/products/category/mugs", handler.Category, nil, nil)
	if body := decodeBody(t, resp); body["category"] != "mugs" || body["count"].(float64) != 1 {
		t.Fatalf("unexpected category body %v", body)
	}

	resp = performRequest(t, http.MethodGet, "/api/products/search", "/api/products/search?q=tee", handler.Search, nil, nil)
	if body := decodeBody(t, resp); body["query"] != "tee" || body["count"].(float64) != 1 {
		t.Fatalf("unexpected search body %v", body)
	}
	resp = performRequest(t, http.MethodGet, "/api/products/search", "/api/products/search", handler.Search, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/api/products/cache/invalidate", "/api/products/cache/invalidate", handler.Invalidate, nil, nil)
	if resp.Code != http.StatusOK || !invalidated || decodeBody(t, resp)["message"] != "Product cache cleared" {
		t.Fatalf("unexpected invalidate result %d %v", resp.Code, invalidated)
	}
}

func TestBlogHandler(t *testing.T) {
	post := &model.BlogPost{ID: 3, Slug: "hello-world", Title: "Hello World", Category: "general", IsPublished: true}
	var (
		gotCategory string
		gotInput    usecase.BlogPostInput
		gotUpdate   model.BlogPostUpdate
		deleted     string
	)
	handler := NewBlogHandler(storeStub{
		postsFn: func(_ context.Context, page, limit int, category string) (*model.BlogList, error) {
			gotCategory = category
			return &model.BlogList{Posts: []model.BlogPost{*post}, Page: model.NewPage(page, limit, 1)}, nil
		},
		postFn: func(_ context.Context, identifier string) (*model.BlogPost, error) {
			if identifier == "hello-world" {
				return post, nil
			}
			return nil, domainErrors.ErrNotFound
		},
		categoriesFn: func(context.Context) ([]string, error) { return nil, nil },
		createPostFn: func(_ context.Context, in usecase.BlogPostInput) (*model.BlogPost, error) {
			gotInput = in
			if in.Title == "Dup" {
				return nil, domainErrors.ErrAlreadyExists
			}
			return post, nil
		},
		updatePostFn: func(_ context.Context, id string, update model.BlogPostUpdate) (*model.BlogPost, error) {
			gotUpdate = update
			return post, nil
		},
		deletePostFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	})

	resp := performRequest(t, http.MethodGet, "/api/blog/posts", "/api/blog/posts?category=news&page=1&limit=5", handler.List, nil, nil)
	if resp.Code != http.StatusOK || gotCategory != "news" {
		t.Fatalf("unexpected list %d %q", resp.Code, gotCategory)
	}
	if data := decodeBody(t, resp)["data"].([]any); data[0].(map[string]any)["slug"] != "hello-world" {
		t.Fatalf("unexpected posts %v", data)
	}

	resp = performRequest(t, http.MethodGet, "/api/blog/posts/:identifier", "/api/blog/posts/missing", handler.Get, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/api/blog/categories", "/api/blog/categories", handler.Categories, nil, nil)
	if data := decodeBody(t, resp)["data"].([]any); len(data) != 0 {
		t.Fatalf("expected empty category list, got %v", data)
	}

	resp = performRequest(t, http.MethodPost, "/api/blog/posts", "/api/blog/posts", handler.Create, []byte(`{"title":"Hello World","content":"<p>hi</p>","tags":["a"]}`), nil)
	if resp.Code != http.StatusCreated || gotInput.Title != "Hello World" || len(gotInput.Tags) != 1 {
		t.Fatalf("unexpected create %d %+v", resp.Code, gotInput)
	}
	resp = performRequest(t, http.MethodPost, "/api/blog/posts", "/api/blog/posts", handler.Create, []byte(`{"title":"Dup","content":"x"}`), nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPut, "/api/blog/posts/:id", "/api/blog/posts/3", handler.Update, []byte(`{"title":"New","slug":"ignored","is_published":false}`), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotUpdate.Title == nil || *gotUpdate.Title != "New" || gotUpdate.Slug != nil || gotUpdate.IsPublished == nil || *gotUpdate.IsPublished {
		t.Fatalf("unexpected update %+v", gotUpdate)
	}

	resp = performRequest(t, http.MethodDelete, "/api/blog/posts/:id", "/api/blog/posts/3", handler.Delete, nil, nil)
	if resp.Code != http.StatusOK || deleted != "3" {
		t.Fatalf("unexpected delete %d %q", resp.Code, deleted)
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(storeStub{})
	resp := performRequest(t, http.MethodGet, "/api/health", "/api/health", handler.Check, nil, nil)
	if resp.Code != http.StatusOK || decodeBody(t, resp)["status"] != "healthy" {
		t.Fatalf("unexpected health %d %s", resp.Code, resp.Body.String())
	}

	handler = NewHealthHandler(storeStub{pingFn: func(context.Context) error { return errors.New("down") }})
	resp = performRequest(t, http.MethodGet, "/api/health", "/api/health", handler.Check, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
