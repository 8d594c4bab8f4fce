package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// APIPrefix is the path prefix that accepts cross-origin requests
const APIPrefix = "/api/"

// CORS allows browsers on origins to call the JSON API with a bearer token.
// Storefront pages are never shared cross-origin. It is installed on the
// engine so preflight requests for API routes are answered before routing.
func CORS(origins []string) (gin.HandlerFunc, error) {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS configuration: %w", err)
	}

	handler := cors.New(cfg)
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, APIPrefix) {
			c.Next()
			return
		}
		handler(c)
	}, nil
}
