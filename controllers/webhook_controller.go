package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/services"
)

// MaxWebhookBodySize caps the webhook payload at 64KB
const MaxWebhookBodySize = 64 << 10

// WebhookController receives payment gateway events
type WebhookController struct {
	gateway     services.PaymentGateway
	fulfillment *services.FulfillmentService
	dedup       services.EventDeduper
}

// NewWebhookController creates a webhook controller; dedup may be nil
func NewWebhookController(gateway services.PaymentGateway, fulfillment *services.FulfillmentService, dedup services.EventDeduper) *WebhookController {
	return &WebhookController{gateway: gateway, fulfillment: fulfillment, dedup: dedup}
}

// HandleStripeEvent handles POST /stripe/webhook. Unverifiable payloads get
// 400; anything verified is acknowledged with 200 unless the database fails,
// in which case 500 asks the gateway to redeliver.
func (wc *WebhookController) HandleStripeEvent(c *gin.Context) {
	ctx := c.Request.Context()

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		webhookError(c, http.StatusBadRequest, "MISSING_SIGNATURE", "Stripe-Signature header is required")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodySize))
	if err != nil {
		webhookError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Could not read request body")
		return
	}

	event, err := wc.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		slog.Warn("Rejected webhook", "error", err)
		code := "INVALID_PAYLOAD"
		if errors.Is(err, services.ErrInvalidSignature) {
			code = "INVALID_SIGNATURE"
		}
		webhookError(c, http.StatusBadRequest, code, "Webhook could not be verified")
		return
	}

	if wc.dedup != nil && event.ID != "" {
		seen, err := wc.dedup.Seen(ctx, event.ID)
		if err != nil {
			slog.Warn("Dedup lookup failed, processing event anyway", "event_id", event.ID, "error", err)
		} else if seen {
			c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true})
			return
		}
	}

	result := "ignored"
	switch event.Type {
	case services.EventCheckoutCompleted:
		orderID, ok := event.OrderID()
		if !ok {
			slog.Warn("Completed checkout without order reference", "event_id", event.ID, "session_id", event.SessionID)
			break
		}
		res, err := wc.fulfillment.CompleteCheckout(ctx, orderID, event.SessionID, event.PaymentIntentID)
		if err != nil {
			slog.Error("Fulfillment failed", "event_id", event.ID, "order_id", orderID, "error", err)
			webhookError(c, http.StatusInternalServerError, "FULFILLMENT_ERROR", "Could not process event")
			return
		}
		result = string(res)

	case services.EventCheckoutExpired, services.EventCheckoutAsyncPaymentFailed:
		orderID, ok := event.OrderID()
		if !ok {
			break
		}
		transition := wc.fulfillment.CancelCheckout
		if event.Type == services.EventCheckoutAsyncPaymentFailed {
			transition = wc.fulfillment.FailCheckout
		}
		changed, err := transition(ctx, orderID)
		if err != nil {
			slog.Error("Order update failed", "event_id", event.ID, "order_id", orderID, "error", err)
			webhookError(c, http.StatusInternalServerError, "FULFILLMENT_ERROR", "Could not process event")
			return
		}
		if changed {
			result = "updated"
		}
	}

	if wc.dedup != nil && event.ID != "" {
		if err := wc.dedup.MarkProcessed(ctx, event.ID); err != nil {
			slog.Warn("Failed to record processed event", "event_id", event.ID, "error", err)
		}
	}

	slog.Info("Webhook processed", "event_id", event.ID, "type", event.Type, "result", result)
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func webhookError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
