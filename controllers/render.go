// Package controllers provides the gin handlers of the portal.
// File: controllers/render.go
package controllers

import (
	"encoding/gob"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"hspace-portal/logger"
	"hspace-portal/middleware"
	"hspace-portal/models"
	"hspace-portal/services"
)

func init() {
	// flashes travel through the cookie store's gob encoding
	gob.Register(services.Notice{})
}

// ------------------ flash notices ------------------

// addFlash queues a notice for the next rendered page.
func addFlash(c *gin.Context, notice services.Notice) {
	session := sessions.Default(c)
	session.AddFlash(notice)
	if err := session.Save(); err != nil {
		logger.Error.Printf("addFlash: failed to save session: %v", err)
	}
}

func flash(c *gin.Context, level, message string) {
	addFlash(c, services.Notice{Level: level, Message: message})
}

// popFlashes drains the queued notices. The session must be saved before the
// response body is written for the removal to stick.
func popFlashes(session sessions.Session) []services.Notice {
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		logger.Error.Printf("popFlashes: failed to save session: %v", err)
	}

	notices := make([]services.Notice, 0, len(raw))
	for _, f := range raw {
		switch v := f.(type) {
		case services.Notice:
			notices = append(notices, v)
		case string:
			notices = append(notices, services.Notice{Level: services.NoticeInfo, Message: v})
		}
	}
	return notices
}

// ------------------ rendering ------------------

// render executes a page template with the layout data every page needs.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	session := sessions.Default(c)
	isAdmin, _ := session.Get(middleware.SessionIsAdmin).(bool)

	data["Flashes"] = popFlashes(session)
	data["CurrentUser"] = middleware.CurrentUser(c)
	data["IsAdmin"] = isAdmin
	c.HTML(status, name, data)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", nil)
}

func serverError(c *gin.Context, where string, err error) {
	logger.Error.Printf("%s: %v", where, err)
	render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Message": "Something went wrong. Please try again later.",
	})
}

// ------------------ request helpers ------------------

// viewerID returns the logged-in user's id, or nil for visitors.
func viewerID(c *gin.Context) *int64 {
	if user := middleware.CurrentUser(c); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(target string) (string, bool) {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "", false
	}
	return target, true
}
