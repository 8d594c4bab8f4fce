package models

import "time"

// PickupHub is a physical location where customers collect their order
type PickupHub struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Address    string    `gorm:"type:text;not null" json:"address"`
	TotalSlots int       `gorm:"not null;default:10" json:"total_slots"` // orders allowed per pickup time
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PickupHub model
func (PickupHub) TableName() string {
	return "pickup_hubs"
}
