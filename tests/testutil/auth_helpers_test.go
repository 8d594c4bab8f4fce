package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/stretchr/testify/assert"
)

func TestMockAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		required   bool
		subject    string
		wantStatus int
		wantBody   string
	}{
		{name: "guest on optional route", required: false, wantStatus: http.StatusOK, wantBody: "guest"},
		{name: "guest on required route", required: true, wantStatus: http.StatusUnauthorized, wantBody: "MISSING_TOKEN"},
		{name: "signed in", required: true, subject: "auth0|kim", wantStatus: http.StatusOK, wantBody: "auth0|kim kim@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", MockAuthMiddleware(tt.required), func(c *gin.Context) {
				id, ok := middleware.CurrentIdentity(c)
				if !ok {
					c.String(http.StatusOK, "guest")
					return
				}
				c.String(http.StatusOK, id.Subject+" "+id.Email)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.subject != "" {
				req.Header.Set(SubjectHeader, tt.subject)
				req.Header.Set(EmailHeader, "kim@example.com")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
