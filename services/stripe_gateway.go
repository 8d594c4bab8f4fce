package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements PaymentGateway with Stripe Checkout
type StripeGateway struct {
	sessions      session.Client
	webhookSecret string
}

// NewStripeGateway creates a gateway bound to one secret key. An empty key
// leaves the gateway unconfigured rather than failing at startup.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	return &StripeGateway{
		sessions: session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: secretKey,
		},
		webhookSecret: webhookSecret,
	}
}

// Configured reports whether a secret key was supplied
func (g *StripeGateway) Configured() bool {
	return g.sessions.Key != ""
}

// CreateCheckoutSession creates a payment-mode Checkout Session with one line item
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if !g.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	orderRef := strconv.FormatUint(uint64(req.OrderID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ItemName),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(req.Quantity),
			},
		},
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(orderRef),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(OrderMetadataKey, orderRef)
	params.SetIdempotencyKey(checkoutIdempotencyKey(orderRef))

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ParseWebhookEvent verifies the Stripe-Signature header and decodes checkout session events
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if signatureHeader == "" || g.webhookSecret == "" {
		return nil, ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	out.SessionID = cs.ID
	out.OrderRef = cs.Metadata[OrderMetadataKey]
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}

	return out, nil
}

// checkoutIdempotencyKey is unique per call; stripe-go resends it on its own
// network retries. Order IDs alone repeat across databases sharing one account.
func checkoutIdempotencyKey(orderRef string) string {
	return "checkout-order-" + orderRef + "-" + uuid.NewString()
}
