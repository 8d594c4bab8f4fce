package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Attachment is a file carried by an Email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email is a plain-text message
type Email struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// SMTPMailer delivers mail through an SMTP relay
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer configures an SMTP client. Authentication is only enabled
// when a username is given.
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

// Send builds and delivers one message
func (m *SMTPMailer) Send(ctx context.Context, email *Email) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	for _, a := range email.Attachments {
		msg.AttachReadSeeker(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(a.ContentType)))
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

// Send logs the message
func (LogMailer) Send(ctx context.Context, email *Email) error {
	names := make([]string, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		names = append(names, a.Filename)
	}
	slog.InfoContext(ctx, "Email (not sent, SMTP not configured)",
		"to", email.To,
		"subject", email.Subject,
		"attachments", names,
	)
	slog.Debug("Email body", "body", email.Body)
	return nil
}
