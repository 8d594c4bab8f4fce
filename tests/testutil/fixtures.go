package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// WebhookSecret signs every event built by SignedWebhookRequest
const WebhookSecret = "whsec_suite_test"

// NewTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every query on the same memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateItem inserts a catalog item
func CreateItem(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}
	return item
}

// CreateHub inserts a pickup hub
func CreateHub(t *testing.T, db *gorm.DB, name string, slots int) *models.PickupHub {
	t.Helper()
	hub := &models.PickupHub{Name: name, Address: name + " Street 1", TotalSlots: slots}
	if err := db.Create(hub).Error; err != nil {
		t.Fatalf("Failed to create hub: %v", err)
	}
	return hub
}

// CheckoutEventPayload builds a raw gateway event for a checkout session
// tied to orderID
func CheckoutEventPayload(eventID, eventType string, orderID uint) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": %q,
		"data": {"object": {
			"id": "cs_test_%d",
			"object": "checkout.session",
			"payment_intent": "pi_test_%d",
			"metadata": {"order_id": "%d"}
		}}
	}`, eventID, eventType, orderID, orderID, orderID))
}

// SignedWebhookRequest builds a webhook POST to url signed with WebhookSecret
func SignedWebhookRequest(t *testing.T, url string, payload []byte) *http.Request {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  WebhookSecret,
	})
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(signed.Payload))
	if err != nil {
		t.Fatalf("Failed to build webhook request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}
