package controller

import (
	"net/http"
	"strings"

	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// render negotiates between the HTML page (default) and a JSON body
// carrying the same view data.
func render(c *gin.Context, status int, template string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.GetCurrentUser(c); ok {
		data["user"] = user
	}
	if basket, ok := middleware.GetCurrentBasket(c); ok {
		data["basket_count"] = basket.Count()
	}

	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: template,
		Data:     data,
	})
}

// renderError shows the error page, or the JSON error body to API clients.
func renderError(c *gin.Context, status int, message string) {
	render(c, status, "error.html", gin.H{
		"status":  status,
		"message": message,
	})
}

func notFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "The requested page was not found.")
}

// safeNext returns the redirect target when it is a local path, otherwise "/".
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON
}

// bindForm fills form from the request; missing values are left to the form's Validate.
func bindForm(c *gin.Context, form interface{}) {
	if err := c.ShouldBind(form); err != nil {
		middleware.GetLoggerFromContext(c).Debug("Form binding failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
	}
}
