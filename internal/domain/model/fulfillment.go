package model

import (
	"encoding/json"
	"time"
)

// RemoteLineItem is a line sent to the fulfillment service.
type RemoteLineItem struct {
	ProductID string
	VariantID string
	Quantity  int
}

// RemoteOrderRequest describes an order to be created remotely.
type RemoteOrderRequest struct {
	ExternalID               string
	Label                    string
	LineItems                []RemoteLineItem
	ShippingMethod           int
	SendShippingNotification bool
	AddressTo                Address
}

// RemoteOrder is the fulfillment service view of an order.
type RemoteOrder struct {
	ID         string
	ExternalID string
	Status     string
	Raw        json.RawMessage
}

// ShippingQuoteRequest asks for shipping prices.
type ShippingQuoteRequest struct {
	LineItems []RemoteLineItem
	AddressTo Address
}

// ShippingQuote maps a shipping method to its price in minor units.
type ShippingQuote map[string]int64

// ProductionTaskStatus tracks a queued send-to-production request.
type ProductionTaskStatus string

const (
	ProductionTaskQueued ProductionTaskStatus = "queued"
	ProductionTaskDone   ProductionTaskStatus = "done"
	ProductionTaskParked ProductionTaskStatus = "parked"
)

// ProductionTask is a retryable follow-up to start production of an order.
type ProductionTask struct {
	ID              int64
	OrderID         int64
	ExternalOrderID string
	Status          ProductionTaskStatus
	Attempts        int
	LastError       string
	NextAttemptAt   time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
