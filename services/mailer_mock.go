package services

import (
	"context"
	"sync"
)

// MockMailer records messages instead of sending them
type MockMailer struct {
	Err error

	sent []Email
	mu   sync.Mutex
}

// NewMockMailer creates an empty mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message, or returns Err when set
func (m *MockMailer) Send(ctx context.Context, email *Email) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.sent = append(m.sent, *email)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of the recorded messages
func (m *MockMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}
