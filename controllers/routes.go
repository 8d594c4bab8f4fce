package controllers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every controller the router needs
type Handlers struct {
	Catalog  *CatalogController
	Orders   *OrderController
	Payments *PaymentController
	Webhooks *WebhookController
	Images   *ImageController
	Users    *UserController
}

// RouteMiddleware is applied per route group; nil entries are skipped
type RouteMiddleware struct {
	OptionalAuth gin.HandlerFunc
	RequireAuth  gin.HandlerFunc
	CSRF         gin.HandlerFunc
}

func present(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// RegisterRoutes mounts the storefront, the webhook and item images. The
// webhook sits outside CSRF protection; the gateway signature covers it.
func RegisterRoutes(router gin.IRouter, h *Handlers, mw RouteMiddleware) {
	pages := router.Group("", present(mw.CSRF, mw.OptionalAuth)...)
	{
		pages.GET("/", h.Catalog.ListItems)
		pages.GET("/items", h.Catalog.ListItems)
		pages.GET("/items/:id/buy", h.Orders.OrderFormPage)
		pages.POST("/items/:id/buy", h.Orders.SubmitOrder)
		pages.GET("/payment/success", h.Payments.PaymentSuccess)
		pages.GET("/payment/cancel/:id", h.Payments.PaymentCancel)
	}

	account := router.Group("", present(mw.CSRF, mw.RequireAuth)...)
	{
		account.GET("/my-orders", h.Orders.MyOrders)
	}

	api := router.Group("/api/v1", present(mw.RequireAuth)...)
	{
		api.GET("/users/me", h.Users.GetMyProfile)
	}

	router.POST("/stripe/webhook", h.Webhooks.HandleStripeEvent)
	router.GET("/static/items/:filename", h.Images.GetItemImage)
}
