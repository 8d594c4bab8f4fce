package services

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrGatewayNotConfigured is returned when no gateway credential is present
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	// ErrInvalidSignature is returned when a webhook payload fails verification
	ErrInvalidSignature = errors.New("webhook signature verification failed")
)

// Gateway event kinds the webhook reacts to
const (
	EventCheckoutCompleted          = "checkout.session.completed"
	EventCheckoutExpired            = "checkout.session.expired"
	EventCheckoutAsyncPaymentFailed = "checkout.session.async_payment_failed"
)

// OrderMetadataKey carries the order ID through the hosted checkout
const OrderMetadataKey = "order_id"

// CheckoutRequest describes a single-item hosted checkout
type CheckoutRequest struct {
	OrderID       uint
	ItemName      string
	Currency      string
	UnitAmount    int64 // minor units
	Quantity      int64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the gateway's answer to a CheckoutRequest
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified gateway callback reduced to the fields we use
type WebhookEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	OrderRef        string // raw correlation metadata
}

// OrderID parses the correlation metadata back into an order ID.
func (e *WebhookEvent) OrderID() (uint, bool) {
	id, err := strconv.ParseUint(e.OrderRef, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// PaymentGateway is the hosted-checkout provider
type PaymentGateway interface {
	// Configured reports whether checkout sessions can be created
	Configured() bool

	// CreateCheckoutSession starts a hosted payment page for one order
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)

	// ParseWebhookEvent verifies the signature header and decodes the event
	ParseWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
