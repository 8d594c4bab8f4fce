package models

import (
	"time"
)

// PaymentStatus tracks where an order is in the checkout flow
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentCanceled PaymentStatus = "canceled"
	PaymentFailed   PaymentStatus = "failed"
)

// IsFinal reports whether no further gateway event may change the status.
// A canceled checkout can still be completed if the customer returns to the
// hosted page before it expires, so only paid and failed are final.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// Order is a customer's request for an item, created before payment and
// completed by the gateway webhook
type Order struct {
	ID                      uint          `gorm:"primaryKey" json:"id"`
	UserID                  *uint         `gorm:"index" json:"user_id,omitempty"` // nullable, guests have no account
	User                    *User         `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	ItemID                  uint          `gorm:"not null;index" json:"item_id"`
	Item                    Item          `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"item"`
	CustomerName            string        `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail           string        `gorm:"size:254;not null" json:"customer_email"`
	CustomerAddress         string        `gorm:"type:text;not null" json:"customer_address"`
	Quantity                int           `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	PickupHubID             *uint         `gorm:"index:idx_orders_hub_slot" json:"pickup_hub_id,omitempty"`
	PickupHub               *PickupHub    `gorm:"foreignKey:PickupHubID;constraint:OnDelete:SET NULL" json:"pickup_hub,omitempty"`
	PickupAt                *time.Time    `gorm:"index:idx_orders_hub_slot" json:"pickup_at,omitempty"`
	PaymentStatus           PaymentStatus `gorm:"size:20;not null;default:'pending';index" json:"payment_status"`
	StripeCheckoutSessionID *string       `gorm:"size:255;index" json:"stripe_checkout_session_id,omitempty"`
	StripePaymentIntent     *string       `gorm:"size:255" json:"stripe_payment_intent,omitempty"`
	PaidAt                  *time.Time    `json:"paid_at,omitempty"`
	FulfilledAt             *time.Time    `json:"fulfilled_at,omitempty"` // set with the stock decrement
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Fulfilled reports whether stock was taken for this order.
func (o Order) Fulfilled() bool {
	return o.FulfilledAt != nil
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Item{}, &PickupHub{}, &Order{}}
}
