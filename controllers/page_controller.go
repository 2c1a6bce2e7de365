// File: controllers/page_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hspace-portal/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PageController serves the static pages and the health probe.
type PageController struct {
	db Pinger
}

func NewPageController(db Pinger) *PageController {
	return &PageController{db: db}
}

// Health answers OK while the database responds.
func (pc *PageController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := pc.db.Ping(ctx); err != nil {
		logger.Error.Printf("Health: database ping failed: %v", err)
		c.String(http.StatusServiceUnavailable, "database unavailable")
		return
	}
	logger.Debug.Println("Health: Health check requested")
	c.String(http.StatusOK, "OK")
}

// Index renders the landing page.
func (pc *PageController) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", nil)
}

// NotFound renders the 404 page for unknown routes.
func (pc *PageController) NotFound(c *gin.Context) {
	logger.Debug.Printf("NotFound: %s %s", c.Request.Method, c.Request.URL.Path)
	notFound(c)
}
