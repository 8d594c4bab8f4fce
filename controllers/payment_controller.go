package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/kendall-kelly/ppe-pickup-api/models"
	"gorm.io/gorm"
)

// PaymentController handles the customer's return from the hosted checkout
type PaymentController struct {
	db      *gorm.DB
	flashes *middleware.FlashStore
}

// NewPaymentController creates a payment controller
func NewPaymentController(db *gorm.DB, flashes *middleware.FlashStore) *PaymentController {
	return &PaymentController{db: db, flashes: flashes}
}

// PaymentSuccess handles GET /payment/success. Fulfillment happens on the
// webhook, so this only acknowledges the return.
func (pc *PaymentController) PaymentSuccess(c *gin.Context) {
	if pc.flashes != nil {
		pc.flashes.Add(c, "success", "Payment received! A confirmation email with your pickup details is on its way.")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// PaymentCancel handles GET /payment/cancel/:id. The return link is public
// and carries only the order ID, so it never changes the order. The session
// stays payable until the gateway reports it expired.
func (pc *PaymentController) PaymentCancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		renderNotFound(c, pc.flashes, "That order")
		return
	}

	var order models.Order
	if err := pc.db.WithContext(c.Request.Context()).Select("id", "item_id").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(c, pc.flashes, "That order")
			return
		}
		slog.Error("Failed to load order", "order_id", id, "error", err)
		renderServerError(c, pc.flashes)
		return
	}

	slog.Info("Customer left checkout", "order_id", order.ID)
	if pc.flashes != nil {
		pc.flashes.Add(c, "info", "Payment canceled. You have not been charged.")
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/items/%d/buy", order.ItemID))
}
