package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/kendall-kelly/ppe-pickup-api/services"
)

// UserController exposes the signed-in customer's profile as JSON
type UserController struct {
	customers *services.CustomerService
}

// NewUserController creates a user controller
func NewUserController(customers *services.CustomerService) *UserController {
	return &UserController{customers: customers}
}

// GetMyProfile handles GET /api/v1/users/me
func (uc *UserController) GetMyProfile(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || uc.customers == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}

	user, err := uc.customers.Resolve(c.Request.Context(), id)
	if err != nil {
		slog.Error("Failed to resolve customer", "auth0_id", id.Subject, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load user profile",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
