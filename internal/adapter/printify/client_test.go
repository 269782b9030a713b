package printify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL+"/v1", "42", "secret", time.Second, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "1", "t", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "1", "t", time.Second, testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
	if _, err := NewHTTPClient("https://api.printify.com/v1", "", "", time.Second, testLogger()); err != nil {
		t.Fatalf("missing credentials should only warn, got %v", err)
	}
}

func TestCreateOrderSendsPayload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/shops/42/orders.json" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"remote-1","external_id":"SM-1-ABC","status":"on-hold"}`))
	})

	order, err := client.CreateOrder(context.Background(), model.RemoteOrderRequest{
		ExternalID:               "SM-1-ABC",
		Label:                    "ada@example.com",
		LineItems:                []model.RemoteLineItem{{ProductID: "p1", VariantID: "17", Quantity: 2}},
		ShippingMethod:           1,
		SendShippingNotification: true,
		AddressTo:                model.Address{FirstName: "Ada", LastName: "L", Country: "US", Address1: "1 Main", City: "X", Zip: "1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "remote-1" || order.Status != "on-hold" || len(order.Raw) == 0 {
		t.Fatalf("unexpected order: %+v", order)
	}

	if got["external_id"] != "SM-1-ABC" || got["shipping_method"] != float64(1) || got["send_shipping_notification"] != true {
		t.Fatalf("unexpected payload: %v", got)
	}
	items := got["line_items"].([]any)
	line := items[0].(map[string]any)
	if line["variant_id"] != float64(17) || line["quantity"] != float64(2) {
		t.Fatalf("expected numeric variant id, got %v", line)
	}
	address := got["address_to"].(map[string]any)
	if address["first_name"] != "Ada" || address["zip"] != "1" {
		t.Fatalf("unexpected address: %v", address)
	}
}

func TestGatewayErrors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		retryAfter string
		wantMsg    string
		wantRetry  time.Duration
	}{
		{name: "client error", status: http.StatusBadRequest, body: `{"message":"bad address"}`, wantMsg: "bad address"},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantMsg: "oops"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, retryAfter: "7", wantMsg: "slow down", wantRetry: 7 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.retryAfter != "" {
					w.Header().Set("Retry-After", tc.retryAfter)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.CreateOrder(context.Background(), model.RemoteOrderRequest{ExternalID: "x"})
			var gwErr *domainErrors.GatewayError
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected gateway error, got %v", err)
			}
			if gwErr.StatusCode != tc.status || gwErr.Message != tc.wantMsg || gwErr.RetryAfter != tc.wantRetry {
				t.Fatalf("unexpected gateway error: %+v", gwErr)
			}
		})
	}
}

func TestTimeoutBecomesGatewayError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client, err := NewHTTPClient(srv.URL, "42", "secret", 50*time.Millisecond, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.CreateOrder(context.Background(), model.RemoteOrderRequest{ExternalID: "x"})
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) || !gwErr.Timeout {
		t.Fatalf("expected timeout gateway error, got %v", err)
	}
}

func TestSendToProductionAndGetOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/shops/42/orders/remote-1/send_to_production.json":
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			_, _ = w.Write([]byte(`{"id":"remote-1"}`))
		case "/v1/shops/42/orders/remote-1.json":
			_, _ = w.Write([]byte(`{"id":"remote-1","external_id":"SM-1","status":"in-production"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	if err := client.SendToProduction(context.Background(), "remote-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order, err := client.GetOrder(context.Background(), "remote-1")
	if err != nil || order.Status != "in-production" || order.ExternalID != "SM-1" {
		t.Fatalf("unexpected order %+v err=%v", order, err)
	}

	_, err = client.GetOrder(context.Background(), "missing")
	var gwErr *domainErrors.GatewayError
	if !errors.As(err, &gwErr) || !gwErr.NotFound() {
		t.Fatalf("expected not found gateway error, got %v", err)
	}
}

func TestShippingQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/shops/42/orders/shipping.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"standard":499,"express":999,"note":"ignored"}`))
	})

	quote, err := client.ShippingQuote(context.Background(), model.ShippingQuoteRequest{
		LineItems: []model.RemoteLineItem{{ProductID: "p1", Quantity: 1}},
		AddressTo: model.Address{Country: "US"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quote) != 2 || quote["standard"] != 499 || quote["express"] != 999 {
		t.Fatalf("unexpected quote: %v", quote)
	}
}

func TestListAndGetProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/shops/42/products.json":
			_, _ = w.Write([]byte(`{"current_page":1,"data":[
				{"id":"p1","title":"Mug","tags":["coffee"],"variants":[{"id":1,"price":1599,"is_enabled":true}]},
				{"id":"p2","title":"Hidden","visible":false}
			]}`))
		case "/v1/shops/42/products/p1.json":
			_, _ = w.Write([]byte(`{"id":"p1","title":"Mug","created_at":"2024-01-01"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 || !products[0].Visible || products[1].Visible {
		t.Fatalf("unexpected products: %+v", products)
	}
	if products[0].Variants[0].Price != 1599 {
		t.Fatalf("expected variant price in cents, got %+v", products[0].Variants)
	}

	product, err := client.GetProduct(context.Background(), "p1")
	if err != nil || product.CreatedAt != "2024-01-01" {
		t.Fatalf("unexpected product %+v err=%v", product, err)
	}
}

func TestListProductsAcceptsBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"p1","title":"Mug"}]`))
	})
	products, err := client.ListProducts(context.Background())
	if err != nil || len(products) != 1 {
		t.Fatalf("unexpected products %+v err=%v", products, err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter(""); d != 0 {
		t.Fatalf("expected zero, got %v", d)
	}
	if d := parseRetryAfter("3"); d != 3*time.Second {
		t.Fatalf("expected 3s, got %v", d)
	}
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	if d := parseRetryAfter(future); d <= 0 || d > 10*time.Second {
		t.Fatalf("unexpected date duration %v", d)
	}
	if d := parseRetryAfter("soon"); d != 0 {
		t.Fatalf("expected zero for garbage, got %v", d)
	}
}
