package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"gorm.io/gorm"
)

// FulfillmentResult says what a completed-checkout event did
type FulfillmentResult string

const (
	// FulfillmentCompleted: order marked paid, stock taken, confirmation sent
	FulfillmentCompleted FulfillmentResult = "fulfilled"
	// FulfillmentOutOfStock: order marked paid but stock could not cover it
	FulfillmentOutOfStock FulfillmentResult = "paid_unfulfilled"
	// FulfillmentDuplicate: the order was already paid or failed
	FulfillmentDuplicate FulfillmentResult = "already_processed"
	// FulfillmentOrderMissing: no order with that ID
	FulfillmentOrderMissing FulfillmentResult = "order_missing"
)

// FulfillmentService applies gateway outcomes to orders
type FulfillmentService struct {
	db       *gorm.DB
	notifier OrderNotifier
	now      func() time.Time
}

// NewFulfillmentService creates a fulfillment service; notifier may be nil
func NewFulfillmentService(db *gorm.DB, notifier OrderNotifier) *FulfillmentService {
	return &FulfillmentService{
		db:       db,
		notifier: notifier,
		now:      time.Now,
	}
}

// CompleteCheckout marks the order paid and takes stock in one transaction.
// Only a pending or canceled order can be claimed, so a redelivered event
// never decrements stock twice. The confirmation is sent after commit and
// its failure does not undo the payment.
func (s *FulfillmentService) CompleteCheckout(ctx context.Context, orderID uint, sessionID, paymentIntentID string) (FulfillmentResult, error) {
	var order models.Order
	result := FulfillmentOrderMissing

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		now := s.now().UTC()
		updates := map[string]interface{}{
			"payment_status": string(models.PaymentPaid),
			"paid_at":        now,
		}
		if sessionID != "" {
			updates["stripe_checkout_session_id"] = sessionID
		}
		if paymentIntentID != "" {
			updates["stripe_payment_intent"] = paymentIntentID
		}

		claim := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status IN ?", order.ID,
				[]string{string(models.PaymentPending), string(models.PaymentCanceled)}).
			Updates(updates)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			result = FulfillmentDuplicate
			return nil
		}

		take := tx.Model(&models.Item{}).
			Where("id = ? AND stock >= ?", order.ItemID, order.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", order.Quantity))
		if take.Error != nil {
			return take.Error
		}
		if take.RowsAffected == 0 {
			result = FulfillmentOutOfStock
			return nil
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("fulfilled_at", now).Error; err != nil {
			return err
		}
		result = FulfillmentCompleted
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to fulfil order %d: %w", orderID, err)
	}

	switch result {
	case FulfillmentCompleted:
		slog.Info("Order fulfilled", "order_id", orderID, "quantity", order.Quantity)
		s.notify(ctx, orderID)
	case FulfillmentOutOfStock:
		slog.Error("Order paid but stock is insufficient", "order_id", orderID, "item_id", order.ItemID, "quantity", order.Quantity)
	case FulfillmentDuplicate:
		slog.Info("Order already processed, ignoring event", "order_id", orderID)
	case FulfillmentOrderMissing:
		slog.Warn("Webhook referenced unknown order", "order_id", orderID)
	}

	return result, nil
}

// CancelCheckout moves a pending order to canceled. It reports whether the
// order changed.
func (s *FulfillmentService) CancelCheckout(ctx context.Context, orderID uint) (bool, error) {
	return s.transitionPending(ctx, orderID, models.PaymentCanceled)
}

// FailCheckout moves a pending order to failed.
func (s *FulfillmentService) FailCheckout(ctx context.Context, orderID uint) (bool, error) {
	return s.transitionPending(ctx, orderID, models.PaymentFailed)
}

func (s *FulfillmentService) transitionPending(ctx context.Context, orderID uint, to models.PaymentStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, string(models.PaymentPending)).
		Update("payment_status", string(to))
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %d %s: %w", orderID, to, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FulfillmentService) notify(ctx context.Context, orderID uint) {
	if s.notifier == nil {
		return
	}

	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Item").Preload("PickupHub").First(&order, orderID).Error; err != nil {
		slog.Warn("Failed to load order for confirmation", "order_id", orderID, "error", err)
		return
	}

	if err := s.notifier.SendOrderConfirmation(ctx, &order); err != nil {
		slog.Warn("Failed to send order confirmation", "order_id", orderID, "error", err)
	}
}
