package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockSignature is the only signature header MockPaymentGateway accepts
const MockSignature = "mock-signature"

// MockPaymentGateway is a mock implementation of PaymentGateway for testing
type MockPaymentGateway struct {
	NotConfigured bool
	CreateErr     error

	requests []CheckoutRequest
	mu       sync.Mutex
}

// NewMockPaymentGateway creates a configured mock gateway
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

// Configured reports the opposite of NotConfigured
func (m *MockPaymentGateway) Configured() bool {
	return !m.NotConfigured
}

// CreateCheckoutSession records the request and returns a predictable session
func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if m.NotConfigured {
		return nil, ErrGatewayNotConfigured
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	n := len(m.requests)
	m.mu.Unlock()

	id := fmt.Sprintf("cs_test_%d", n)
	return &CheckoutSession{
		ID:  id,
		URL: "https://checkout.test/pay/" + id,
	}, nil
}

// ParseWebhookEvent accepts MockSignature and a JSON-encoded WebhookEvent
func (m *MockPaymentGateway) ParseWebhookEvent(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if signatureHeader != MockSignature {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode mock event: %w", err)
	}
	return &event, nil
}

// Requests returns a copy of every checkout request seen so far
func (m *MockPaymentGateway) Requests() []CheckoutRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]CheckoutRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
