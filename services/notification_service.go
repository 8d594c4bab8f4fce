package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/ppe-pickup-api/models"
)

// PickupTimeLayout is how pickup times are shown to customers
const PickupTimeLayout = "2006-01-02 15:04"

// OrderNotifier tells a customer their order is confirmed
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

// EmailNotifier sends confirmations through a Mailer
type EmailNotifier struct {
	mailer   Mailer
	location *time.Location
}

// NewEmailNotifier creates a notifier that shows pickup times in loc
func NewEmailNotifier(mailer Mailer, loc *time.Location) *EmailNotifier {
	if loc == nil {
		loc = time.UTC
	}
	return &EmailNotifier{mailer: mailer, location: loc}
}

// SendOrderConfirmation emails the customer, attaching a calendar invite when
// the order has a pickup slot
func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	email, err := BuildConfirmationEmail(order, n.location)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, email)
}

// BuildConfirmationEmail renders the confirmation message for order. The
// order must have Item and PickupHub loaded.
func BuildConfirmationEmail(order *models.Order, loc *time.Location) (*Email, error) {
	if order.CustomerEmail == "" {
		return nil, errors.New("order has no customer email")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", order.CustomerName)
	b.WriteString("Thank you for your order. Your payment has been received.\n\n")
	fmt.Fprintf(&b, "Order: #%d\n", order.ID)
	fmt.Fprintf(&b, "Item: %s x %d\n", order.Item.Name, order.Quantity)
	if order.PickupHub != nil {
		fmt.Fprintf(&b, "Pickup hub: %s\n", order.PickupHub.Name)
		fmt.Fprintf(&b, "Address: %s\n", order.PickupHub.Address)
	} else {
		b.WriteString("Pickup hub: to be confirmed\n")
	}
	if order.PickupAt != nil {
		fmt.Fprintf(&b, "Pickup time: %s\n", order.PickupAt.In(loc).Format(PickupTimeLayout))
	} else {
		b.WriteString("Pickup time: to be confirmed\n")
	}

	email := &Email{
		To:      []string{order.CustomerEmail},
		Subject: "PPE Pickup Confirmation - " + order.Item.Name,
	}

	invite, err := NewPickupInvite(order)
	if err == nil {
		b.WriteString("\nA calendar invite for your pickup is attached.\n")
		email.Attachments = append(email.Attachments, Attachment{
			Filename:    fmt.Sprintf("ppe_pickup_order_%d.ics", order.ID),
			ContentType: "text/calendar",
			Data:        invite.ICS(),
		})
	}
	b.WriteString("\nYour order helps us get protective equipment to the people who need it.\n\nThank you!\n")
	email.Body = b.String()

	return email, nil
}
