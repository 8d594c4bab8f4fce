package services

import (
	"testing"
	"time"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every pooled connection to :memory: would be a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, stock, quantity int, withSlot bool) (*models.Item, *models.Order) {
	t.Helper()

	item := &models.Item{Name: "N95 Mask", Price: decimal.RequireFromString("10.00"), Stock: stock}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	order := &models.Order{
		ItemID:          item.ID,
		CustomerName:    "Dana Guest",
		CustomerEmail:   "dana@example.com",
		CustomerAddress: "1 Main St",
		Quantity:        quantity,
		PaymentStatus:   models.PaymentPending,
	}
	if withSlot {
		hub := &models.PickupHub{Name: "Central Library", Address: "5 Library Way", TotalSlots: 10}
		if err := db.Create(hub).Error; err != nil {
			t.Fatalf("Failed to create hub: %v", err)
		}
		at := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
		order.PickupHubID = &hub.ID
		order.PickupAt = &at
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	return item, order
}
