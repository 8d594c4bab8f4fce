package services

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/kendall-kelly/ppe-pickup-api/models"
)

// PickupDuration is the length of the calendar event for a pickup
const PickupDuration = 30 * time.Minute

// ErrNoPickupSlot is returned for orders without both a hub and a pickup time
var ErrNoPickupSlot = errors.New("order has no pickup slot")

// PickupInvite is a calendar event for collecting an order
type PickupInvite struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Stamp       time.Time
}

// NewPickupInvite builds the invite for order. The order must have its Item
// and PickupHub loaded.
func NewPickupInvite(order *models.Order) (*PickupInvite, error) {
	if order.PickupHub == nil || order.PickupAt == nil {
		return nil, ErrNoPickupSlot
	}

	start := order.PickupAt.UTC()
	return &PickupInvite{
		UID:         fmt.Sprintf("order-%d-%s@ppe-pickup", order.ID, uuid.NewString()),
		Summary:     "PPE Pickup: " + order.Item.Name,
		Description: fmt.Sprintf("Order #%d: %s x %d", order.ID, order.Item.Name, order.Quantity),
		Location:    order.PickupHub.Address,
		Start:       start,
		End:         start.Add(PickupDuration),
		Stamp:       time.Now().UTC(),
	}, nil
}

// ICS serializes the invite as a single-event iCalendar request
func (p *PickupInvite) ICS() []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//PPE Pickup//Order Confirmation//EN")

	event := cal.AddEvent(p.UID)
	event.SetDtStampTime(p.Stamp)
	event.SetStartAt(p.Start)
	event.SetEndAt(p.End)
	event.SetSummary(p.Summary)
	event.SetLocation(p.Location)
	event.SetDescription(p.Description)

	return []byte(cal.Serialize())
}
