package testutil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
)

// Headers read by MockAuthMiddleware
const (
	SubjectHeader = "X-Test-Subject"
	EmailHeader   = "X-Test-Email"
	NameHeader    = "X-Test-Name"
)

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, subject, email, name string) {
	middleware.SetIdentity(c, subject, &middleware.CustomClaims{Email: email, Name: name})
}

// MockAuthMiddleware stands in for middleware.Authenticate. The caller's
// identity comes from the SubjectHeader, EmailHeader and NameHeader headers.
func MockAuthMiddleware(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader(SubjectHeader)
		if subject == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "MISSING_TOKEN",
						"message": "Authentication required",
					},
				})
				return
			}
			c.Next()
			return
		}

		SetMockAuthContext(c, subject, c.GetHeader(EmailHeader), c.GetHeader(NameHeader))
		c.Next()
	}
}
