package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmationOrder(withSlot bool) *models.Order {
	order := &models.Order{
		ID:            7,
		CustomerName:  "Sam",
		CustomerEmail: "sam@example.com",
		Quantity:      3,
		Item:          models.Item{Name: "Face Shield", Price: decimal.RequireFromString("4.50")},
	}
	if withSlot {
		at := time.Date(2030, 3, 4, 14, 30, 0, 0, time.UTC)
		order.PickupAt = &at
		order.PickupHub = &models.PickupHub{Name: "North Hub", Address: "9 River Rd"}
	}
	return order
}

func TestBuildConfirmationEmail_WithSlot(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	email, err := BuildConfirmationEmail(confirmationOrder(true), loc)
	require.NoError(t, err)

	assert.Equal(t, "PPE Pickup Confirmation - Face Shield", email.Subject)
	assert.Equal(t, []string{"sam@example.com"}, email.To)
	assert.Contains(t, email.Body, "Face Shield x 3")
	assert.Contains(t, email.Body, "North Hub")
	assert.Contains(t, email.Body, "9 River Rd")
	assert.Contains(t, email.Body, "2030-03-04 15:30")

	require.Len(t, email.Attachments, 1)
	att := email.Attachments[0]
	assert.Equal(t, "ppe_pickup_order_7.ics", att.Filename)
	assert.Equal(t, "text/calendar", att.ContentType)

	cal, err := ics.ParseCalendar(bytes.NewReader(att.Data))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2030, 3, 4, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, PickupDuration, end.Sub(start))

	summary := events[0].GetProperty(ics.ComponentPropertySummary)
	require.NotNil(t, summary)
	assert.Equal(t, "PPE Pickup: Face Shield", summary.Value)

	location := events[0].GetProperty(ics.ComponentPropertyLocation)
	require.NotNil(t, location)
	assert.Equal(t, "9 River Rd", location.Value)
}

func TestBuildConfirmationEmail_WithoutSlot(t *testing.T) {
	email, err := BuildConfirmationEmail(confirmationOrder(false), time.UTC)
	require.NoError(t, err)

	assert.Empty(t, email.Attachments)
	assert.Contains(t, email.Body, "to be confirmed")
}

func TestBuildConfirmationEmail_RequiresRecipient(t *testing.T) {
	order := confirmationOrder(true)
	order.CustomerEmail = ""

	_, err := BuildConfirmationEmail(order, time.UTC)
	assert.Error(t, err)
}

func TestNewPickupInvite_RequiresSlot(t *testing.T) {
	_, err := NewPickupInvite(confirmationOrder(false))
	assert.ErrorIs(t, err, ErrNoPickupSlot)
}

func TestEmailNotifier_SendsThroughMailer(t *testing.T) {
	mailer := NewMockMailer()
	notifier := NewEmailNotifier(mailer, time.UTC)

	require.NoError(t, notifier.SendOrderConfirmation(context.Background(), confirmationOrder(true)))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "PPE Pickup Confirmation - Face Shield", sent[0].Subject)
}

func TestLogMailer_NeverFails(t *testing.T) {
	email, err := BuildConfirmationEmail(confirmationOrder(true), time.UTC)
	require.NoError(t, err)
	assert.NoError(t, LogMailer{}.Send(context.Background(), email))
}
