package models

import (
	"time"
)

// User is a signed-in customer, identified by their Auth0 subject
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Auth0ID   string    `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index" json:"email"` // may be empty; the order form then asks for one
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
