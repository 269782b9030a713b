package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// StripeSignatureHeader carries the payment provider signature.
const StripeSignatureHeader = "Stripe-Signature"

const maxWebhookBody = 1 << 20

// SignatureVerifier checks payment webhook signatures.
type SignatureVerifier interface {
	Configured() bool
	Verify(payload []byte, header string) error
}

// WebhookHandler receives provider notifications. Accepted notifications are
// always acknowledged; processing failures are only logged since providers
// redeliver on their own schedule.
type WebhookHandler struct {
	facade   WebhookFacade
	verifier SignatureVerifier
	logger   *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade, verifier SignatureVerifier, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, verifier: verifier, logger: logger}
}

// Stripe handles POST /api/webhooks/stripe.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	if !h.verifier.Configured() {
		h.logger.Error("payment webhook secret is not configured")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Webhook secret not configured"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "unable to read body")
		return
	}
	if err := h.verifier.Verify(payload, c.GetHeader(StripeSignatureHeader)); err != nil {
		h.logger.Warn("payment webhook rejected", slog.String("error", err.Error()))
		badRequest(c, "Webhook signature verification failed")
		return
	}

	var event dto.StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		badRequest(c, "invalid event payload")
		return
	}

	evt := event.PaymentEvent()
	outcome, err := h.facade.ApplyPaymentEvent(c.Request.Context(), evt)
	if err != nil {
		h.logger.Error("payment webhook processing failed",
			slog.String("event", evt.Type),
			slog.Int64("order_id", evt.OrderID),
			slog.String("error", err.Error()),
		)
	} else {
		h.logger.Info("payment webhook processed",
			slog.String("event", evt.Type),
			slog.Int64("order_id", evt.OrderID),
			slog.String("outcome", string(outcome)),
		)
	}
	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}

// Printify handles POST /api/webhooks/printify.
func (h *WebhookHandler) Printify(c *gin.Context) {
	var event dto.PrintifyEvent
	if err := json.NewDecoder(io.LimitReader(c.Request.Body, maxWebhookBody)).Decode(&event); err != nil {
		badRequest(c, "invalid event payload")
		return
	}

	evt := event.FulfillmentEvent()
	outcome, err := h.facade.ApplyFulfillmentEvent(c.Request.Context(), evt)
	if err != nil {
		h.logger.Error("fulfillment webhook processing failed",
			slog.String("event", evt.Type),
			slog.String("external_id", evt.ExternalOrderID),
			slog.String("error", err.Error()),
		)
	} else {
		h.logger.Info("fulfillment webhook processed",
			slog.String("event", evt.Type),
			slog.String("external_id", evt.ExternalOrderID),
			slog.String("outcome", string(outcome)),
		)
	}
	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
