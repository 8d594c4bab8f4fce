package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/kendall-kelly/ppe-pickup-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentSuccess_FlashesOnHome(t *testing.T) {
	app := newTestApp(t, services.NewMockPaymentGateway())

	w := app.get("/payment/success?session_id=cs_test_1")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = app.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment received!")
}

func TestPaymentCancel_LeavesOrderPending(t *testing.T) {
	app := newTestApp(t, services.NewMockPaymentGateway())
	item := createItem(t, app.db, "N95 Mask", "10.00", 5)

	order := models.Order{ItemID: item.ID, CustomerName: "A", CustomerEmail: "a@example.com",
		CustomerAddress: "x", Quantity: 1, PaymentStatus: models.PaymentPending}
	require.NoError(t, app.db.Create(&order).Error)

	w := app.get(fmt.Sprintf("/payment/cancel/%d", order.ID))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/items/%d/buy", item.ID), w.Header().Get("Location"))

	var reloaded models.Order
	require.NoError(t, app.db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.PaymentPending, reloaded.PaymentStatus, "only an expired session cancels the order")

	// The follow-up form page shows the notice
	req := httptest.NewRequest(http.MethodGet, w.Header().Get("Location"), nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = app.do(req)
	assert.Contains(t, w.Body.String(), "Payment canceled.")
}

func TestPaymentCancel_PaidOrderUnchanged(t *testing.T) {
	app := newTestApp(t, services.NewMockPaymentGateway())
	item := createItem(t, app.db, "N95 Mask", "10.00", 5)

	order := models.Order{ItemID: item.ID, CustomerName: "A", CustomerEmail: "a@example.com",
		CustomerAddress: "x", Quantity: 1, PaymentStatus: models.PaymentPaid}
	require.NoError(t, app.db.Create(&order).Error)

	w := app.get(fmt.Sprintf("/payment/cancel/%d", order.ID))
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var reloaded models.Order
	require.NoError(t, app.db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.PaymentPaid, reloaded.PaymentStatus)
}

func TestPaymentCancel_UnknownOrder(t *testing.T) {
	app := newTestApp(t, services.NewMockPaymentGateway())

	assert.Equal(t, http.StatusNotFound, app.get("/payment/cancel/424242").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/payment/cancel/nope").Code)
}
