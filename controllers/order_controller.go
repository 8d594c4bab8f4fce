package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/ppe-pickup-api/config"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/kendall-kelly/ppe-pickup-api/services"
	"github.com/kendall-kelly/ppe-pickup-api/utils"
	"gorm.io/gorm"
)

// PickupInputLayout is the datetime-local format of the pickup field
const PickupInputLayout = "2006-01-02T15:04"

// OrderForm represents the order form submission
type OrderForm struct {
	CustomerName    string `form:"customer_name" binding:"max=255"`
	CustomerEmail   string `form:"customer_email" binding:"omitempty,email,max=254"`
	CustomerAddress string `form:"customer_address" binding:"max=1000"`
	Quantity        int    `form:"quantity" binding:"required,gt=0"`
	PickupHubID     uint   `form:"pickup_hub_id"`
	PickupDateTime  string `form:"pickup_datetime"`
}

// OrderController handles the order form, checkout start and order history
type OrderController struct {
	db        *gorm.DB
	gateway   services.PaymentGateway
	customers *services.CustomerService
	flashes   *middleware.FlashStore
	currency  string
	baseURL   string
	location  *time.Location
	now       func() time.Time
}

// NewOrderController creates an order controller. customers may be nil when
// sign-in is not configured.
func NewOrderController(db *gorm.DB, gateway services.PaymentGateway, customers *services.CustomerService, flashes *middleware.FlashStore, cfg *config.Config) *OrderController {
	return &OrderController{
		db:        db,
		gateway:   gateway,
		customers: customers,
		flashes:   flashes,
		currency:  cfg.Currency,
		baseURL:   cfg.PublicBaseURL,
		location:  cfg.PickupLocation(),
		now:       time.Now,
	}
}

// OrderFormPage handles GET /items/:id/buy
func (oc *OrderController) OrderFormPage(c *gin.Context) {
	item, ok := oc.loadItem(c)
	if !ok {
		return
	}

	user, err := oc.currentUser(c)
	if err != nil {
		slog.Error("Failed to resolve customer", "error", err)
		renderServerError(c, oc.flashes)
		return
	}

	oc.renderForm(c, http.StatusOK, item, user, OrderForm{Quantity: 1}, nil)
}

// SubmitOrder handles POST /items/:id/buy. A valid submission creates a
// pending order and redirects to the hosted checkout.
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	ctx := c.Request.Context()

	item, ok := oc.loadItem(c)
	if !ok {
		return
	}

	user, err := oc.currentUser(c)
	if err != nil {
		slog.Error("Failed to resolve customer", "error", err)
		renderServerError(c, oc.flashes)
		return
	}

	var form OrderForm
	errs := bindOrderForm(c, &form)

	if user != nil {
		form.CustomerName = user.Name
		if user.Email != "" {
			form.CustomerEmail = user.Email
		}
	}
	form.CustomerName = strings.TrimSpace(form.CustomerName)
	form.CustomerEmail = strings.TrimSpace(form.CustomerEmail)
	form.CustomerAddress = strings.TrimSpace(form.CustomerAddress)

	if form.CustomerName == "" {
		errs = append(errs, "Please enter your name.")
	}
	if form.CustomerEmail == "" {
		errs = append(errs, "Please provide a valid email to receive your confirmation.")
	}
	if form.CustomerAddress == "" {
		errs = append(errs, "Please enter your address.")
	}
	if form.Quantity > 0 && !item.InStock(form.Quantity) {
		errs = append(errs, fmt.Sprintf("Only %d of %s left in stock.", item.Stock, item.Name))
	}

	hub, pickupAt, pickupErrs, err := oc.validatePickup(ctx, &form)
	if err != nil {
		slog.Error("Failed to validate pickup slot", "error", err)
		renderServerError(c, oc.flashes)
		return
	}
	errs = append(errs, pickupErrs...)

	if len(errs) > 0 {
		oc.renderForm(c, http.StatusUnprocessableEntity, item, user, form, errs)
		return
	}

	if !oc.gateway.Configured() {
		oc.renderForm(c, http.StatusServiceUnavailable, item, user, form,
			[]string{"Payments are not configured yet."})
		return
	}

	order := models.Order{
		ItemID:          item.ID,
		CustomerName:    form.CustomerName,
		CustomerEmail:   form.CustomerEmail,
		CustomerAddress: form.CustomerAddress,
		Quantity:        form.Quantity,
		PickupAt:        pickupAt,
		PaymentStatus:   models.PaymentPending,
	}
	if user != nil {
		order.UserID = &user.ID
	}
	if hub != nil {
		order.PickupHubID = &hub.ID
	}

	if err := oc.db.WithContext(ctx).Create(&order).Error; err != nil {
		slog.Error("Failed to create order", "error", err)
		renderServerError(c, oc.flashes)
		return
	}

	orderRef := strconv.FormatUint(uint64(order.ID), 10)
	session, err := oc.gateway.CreateCheckoutSession(ctx, &services.CheckoutRequest{
		OrderID:       order.ID,
		ItemName:      item.Name,
		Currency:      oc.currency,
		UnitAmount:    utils.AmountCents(item.Price),
		Quantity:      int64(order.Quantity),
		CustomerEmail: order.CustomerEmail,
		SuccessURL:    oc.absoluteURL(c, "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     oc.absoluteURL(c, "/payment/cancel/"+orderRef),
	})
	if err != nil {
		slog.Error("Failed to start checkout", "order_id", order.ID, "error", err)
		if updateErr := oc.db.WithContext(ctx).Model(&order).Update("payment_status", string(models.PaymentFailed)).Error; updateErr != nil {
			slog.Error("Failed to mark order failed", "order_id", order.ID, "error", updateErr)
		}
		oc.renderForm(c, http.StatusBadGateway, item, user, form,
			[]string{"We could not start the payment. Please try again."})
		return
	}

	if err := oc.db.WithContext(ctx).Model(&order).Update("stripe_checkout_session_id", session.ID).Error; err != nil {
		// The webhook correlates by order ID, so checkout can still complete
		slog.Warn("Failed to store checkout session id", "order_id", order.ID, "error", err)
	}

	slog.Info("Checkout started", "order_id", order.ID, "item_id", item.ID, "quantity", order.Quantity)
	c.Redirect(http.StatusSeeOther, session.URL)
}

// MyOrders handles GET /my-orders
func (oc *OrderController) MyOrders(c *gin.Context) {
	user, err := oc.currentUser(c)
	if err != nil {
		slog.Error("Failed to resolve customer", "error", err)
		renderServerError(c, oc.flashes)
		return
	}
	if user == nil {
		renderError(c, oc.flashes, http.StatusUnauthorized, "Sign in required", "Please sign in to see your orders.")
		return
	}

	var orders []models.Order
	err = oc.db.WithContext(c.Request.Context()).
		Preload("Item").
		Preload("PickupHub").
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		slog.Error("Failed to list orders", "user_id", user.ID, "error", err)
		renderServerError(c, oc.flashes)
		return
	}

	data := basePage(c, oc.flashes, "My orders")
	data["Orders"] = orders
	c.HTML(http.StatusOK, "my_orders.html", data)
}

func (oc *OrderController) loadItem(c *gin.Context) (*models.Item, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		renderNotFound(c, oc.flashes, "That item")
		return nil, false
	}

	var item models.Item
	if err := oc.db.WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(c, oc.flashes, "That item")
			return nil, false
		}
		slog.Error("Failed to load item", "item_id", id, "error", err)
		renderServerError(c, oc.flashes)
		return nil, false
	}
	return &item, true
}

func (oc *OrderController) currentUser(c *gin.Context) (*models.User, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || oc.customers == nil {
		return nil, nil
	}
	return oc.customers.Resolve(c.Request.Context(), id)
}

// validatePickup checks the optional hub and time. A returned error is a
// database failure; validation problems come back as messages.
func (oc *OrderController) validatePickup(ctx context.Context, form *OrderForm) (*models.PickupHub, *time.Time, []string, error) {
	var msgs []string
	var hub *models.PickupHub
	var pickupAt *time.Time

	if form.PickupHubID != 0 {
		var h models.PickupHub
		err := oc.db.WithContext(ctx).First(&h, form.PickupHubID).Error
		switch {
		case err == nil:
			hub = &h
		case errors.Is(err, gorm.ErrRecordNotFound):
			msgs = append(msgs, "Please choose a valid pickup hub.")
		default:
			return nil, nil, nil, err
		}
	}

	if raw := strings.TrimSpace(form.PickupDateTime); raw != "" {
		t, err := parsePickupTime(raw, oc.location)
		switch {
		case err != nil:
			msgs = append(msgs, "Please enter a valid pickup date and time.")
		case !t.After(oc.now()):
			msgs = append(msgs, "Pickup time must be in the future.")
		default:
			utc := t.UTC()
			pickupAt = &utc
		}
	}

	if hub != nil && pickupAt != nil {
		var booked int64
		err := oc.db.WithContext(ctx).Model(&models.Order{}).
			Where("pickup_hub_id = ? AND pickup_at = ? AND payment_status NOT IN ?", hub.ID, *pickupAt,
				[]string{string(models.PaymentCanceled), string(models.PaymentFailed)}).
			Count(&booked).Error
		if err != nil {
			return nil, nil, nil, err
		}
		if booked >= int64(hub.TotalSlots) {
			msgs = append(msgs, fmt.Sprintf("That pickup time at %s is fully booked. Please choose another time.", hub.Name))
		}
	}

	return hub, pickupAt, msgs, nil
}

func parsePickupTime(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(PickupInputLayout, raw, loc)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(PickupInputLayout+":05", raw, loc)
}

// bindOrderForm binds the posted form and turns binding failures into
// messages for the customer
func bindOrderForm(c *gin.Context, form *OrderForm) []string {
	err := c.ShouldBind(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Please check the form values and try again."}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Quantity":
			msgs = append(msgs, "Quantity must be at least 1.")
		case "CustomerEmail":
			msgs = append(msgs, "Please enter a valid email address.")
		case "CustomerName":
			msgs = append(msgs, "Name is too long.")
		case "CustomerAddress":
			msgs = append(msgs, "Address is too long.")
		}
	}
	return msgs
}

func (oc *OrderController) renderForm(c *gin.Context, status int, item *models.Item, user *models.User, form OrderForm, errs []string) {
	var hubs []models.PickupHub
	if err := oc.db.WithContext(c.Request.Context()).Order("name ASC").Find(&hubs).Error; err != nil {
		slog.Error("Failed to list pickup hubs", "error", err)
	}

	data := basePage(c, oc.flashes, "Order "+item.Name)
	data["Item"] = item
	data["Hubs"] = hubs
	data["Form"] = form
	data["Errors"] = errs
	data["Currency"] = strings.ToUpper(oc.currency)
	data["SignedIn"] = user != nil
	data["AskEmail"] = user == nil || user.Email == ""

	c.HTML(status, "order_form.html", data)
}

// absoluteURL prefixes path with the public base URL, or with the request's
// own scheme and host when none is configured
func (oc *OrderController) absoluteURL(c *gin.Context, path string) string {
	if oc.baseURL != "" {
		return oc.baseURL + path
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + path
}
