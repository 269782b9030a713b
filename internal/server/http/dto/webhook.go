package dto

import (
	"strconv"
	"strings"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// WebhookAck is returned for every accepted webhook.
type WebhookAck struct {
	Received bool `json:"received"`
}

// StripeEvent is the subset of a payment provider event the store reads.
type StripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentEvent extracts the local order id from the object metadata.
func (e StripeEvent) PaymentEvent() model.PaymentEvent {
	evt := model.PaymentEvent{ID: e.ID, Type: e.Type, PaymentIntentID: e.Data.Object.ID}
	if raw := strings.TrimSpace(e.Data.Object.Metadata["orderId"]); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			evt.OrderID = id
		}
	}
	return evt
}

// PrintifyTracking is a shipment tracking reference.
type PrintifyTracking struct {
	Carrier         string `json:"carrier"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingNumber2 string `json:"number"`
	TrackingURL     string `json:"tracking_url"`
	TrackingURL2    string `json:"url"`
}

// PrintifyEvent is a fulfillment provider notification.
type PrintifyEvent struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Resource struct {
		ID        FlexibleID         `json:"id"`
		Type      string             `json:"type"`
		Shipments []PrintifyTracking `json:"shipments"`
		Data      struct {
			ShopID  FlexibleID       `json:"shop_id"`
			Carrier PrintifyTracking `json:"carrier"`
		} `json:"data"`
	} `json:"resource"`
}

// FulfillmentEvent picks tracking from the first shipment or the carrier block.
func (e PrintifyEvent) FulfillmentEvent() model.FulfillmentEvent {
	evt := model.FulfillmentEvent{Type: e.Type, ExternalOrderID: e.Resource.ID.String()}
	if len(e.Resource.Shipments) > 0 {
		s := e.Resource.Shipments[0]
		evt.TrackingNumber = firstOf(s.TrackingNumber, s.TrackingNumber2)
		evt.TrackingURL = firstOf(s.TrackingURL, s.TrackingURL2)
	}
	if evt.TrackingNumber == "" {
		c := e.Resource.Data.Carrier
		evt.TrackingNumber = firstOf(c.TrackingNumber, c.TrackingNumber2)
		evt.TrackingURL = firstOf(evt.TrackingURL, c.TrackingURL, c.TrackingURL2)
	}
	return evt
}
