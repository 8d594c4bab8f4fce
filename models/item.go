package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry that can be ordered for pickup
type Item struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null;index" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"` // only the fulfillment path decrements this
	ImageURL  string          `gorm:"size:255" json:"image_url"`                        // absolute URL, rooted path or storage key
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// InStock reports whether quantity units can currently be ordered.
func (i Item) InStock(quantity int) bool {
	return quantity > 0 && i.Stock >= quantity
}
