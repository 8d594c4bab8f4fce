package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
)

// basePage returns the data every page template expects
func basePage(c *gin.Context, flashes *middleware.FlashStore, title string) gin.H {
	_, signedIn := middleware.CurrentIdentity(c)
	data := gin.H{
		"Title":     title,
		"SignedIn":  signedIn,
		"CSRFField": csrf.TemplateField(c.Request),
	}
	if flashes != nil {
		data["Flashes"] = flashes.Pop(c)
	}
	return data
}

// renderError shows the error page with status
func renderError(c *gin.Context, flashes *middleware.FlashStore, status int, title, message string) {
	data := basePage(c, flashes, title)
	data["Message"] = message
	c.HTML(status, "error.html", data)
}

func renderNotFound(c *gin.Context, flashes *middleware.FlashStore, what string) {
	renderError(c, flashes, http.StatusNotFound, "Not found", what+" could not be found.")
}

func renderServerError(c *gin.Context, flashes *middleware.FlashStore) {
	renderError(c, flashes, http.StatusInternalServerError, "Something went wrong", "Please try again in a moment.")
}
