package model

// Payment provider event types.
const (
	PaymentEventSucceeded       = "payment_intent.succeeded"
	PaymentEventFailed          = "payment_intent.payment_failed"
	PaymentEventCheckoutSession = "checkout.session.completed"
)

// Fulfillment provider event types.
const (
	FulfillmentEventCreated           = "order:created"
	FulfillmentEventSentToProduction  = "order:sent-to-production"
	FulfillmentEventShipmentCreated   = "order:shipment:created"
	FulfillmentEventShipmentDelivered = "order:shipment:delivered"
)

// PaymentEvent is a verified payment notification.
type PaymentEvent struct {
	ID              string
	Type            string
	OrderID         int64
	PaymentIntentID string
}

// FulfillmentEvent is a fulfillment progress notification.
type FulfillmentEvent struct {
	Type            string
	ExternalOrderID string
	TrackingNumber  string
	TrackingURL     string
}

// ReconcileOutcome reports what a webhook did to local state.
type ReconcileOutcome string

const (
	OutcomeApplied      ReconcileOutcome = "applied"
	OutcomeUnchanged    ReconcileOutcome = "unchanged"
	OutcomeIgnored      ReconcileOutcome = "ignored"
	OutcomeUnknownOrder ReconcileOutcome = "unknown_order"
)
