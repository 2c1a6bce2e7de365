// File: controllers/wargame_controller.go
package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hspace-portal/logger"
	"hspace-portal/models"
	"hspace-portal/services"
)

const wargameHome = "/wargame/"

var wargameSorts = []string{models.SortNewest, models.SortOldest, models.SortReward, models.SortPopular}

// WargameController serves the wargame board. Browsing is public; attempts
// and publishing need a login.
type WargameController struct {
	wargame *services.WargameService
}

func NewWargameController(wargame *services.WargameService) *WargameController {
	return &WargameController{wargame: wargame}
}

func (wc *WargameController) Dashboard(c *gin.Context) {
	filter := models.ChallengeFilter{
		Difficulty: c.DefaultQuery("difficulty", "all"),
		Category:   c.DefaultQuery("category", "all"),
		Search:     c.Query("search"),
		Sort:       c.DefaultQuery("sort", models.SortNewest),
	}

	dash, err := wc.wargame.Dashboard(c.Request.Context(), filter, viewerID(c))
	if err != nil {
		serverError(c, "Dashboard", err)
		return
	}

	render(c, http.StatusOK, "wargame.html", gin.H{
		"Dashboard":    dash,
		"Difficulties": models.Levels,
		"Sorts":        wargameSorts,
	})
}

// requireLogin returns the current user, or queues a notice, redirects to the
// login page and returns nil.
func (wc *WargameController) requireLogin(c *gin.Context) *models.User {
	if user := currentUser(c); user != nil {
		return user
	}
	logger.Warn.Printf("requireLogin: anonymous %s %s", c.Request.Method, c.Request.URL.Path)
	flash(c, services.NoticeError, "Please log in to continue.")
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(wargameHome))
	return nil
}

func (wc *WargameController) Attempt(c *gin.Context) {
	user := wc.requireLogin(c)
	if user == nil {
		return
	}

	notice, err := wc.wargame.Attempt(c.Request.Context(), user.ID, c.PostForm("challenge_id"), c.PostForm("flag"))
	if err != nil {
		serverError(c, "Attempt", err)
		return
	}
	addFlash(c, notice)
	c.Redirect(http.StatusFound, wargameHome)
}

func (wc *WargameController) Publish(c *gin.Context) {
	user := wc.requireLogin(c)
	if user == nil {
		return
	}

	attachment, err := c.FormFile("attachment")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			logger.Warn.Printf("Publish: unreadable attachment: %v", err)
		}
		attachment = nil
	}

	notice, err := wc.wargame.Publish(c.Request.Context(), *user, services.PublishInput{
		Title:      c.PostForm("title"),
		Summary:    c.PostForm("summary"),
		Difficulty: c.PostForm("difficulty"),
		Category:   c.PostForm("category"),
		Flag:       c.PostForm("flag"),
		Hint:       c.PostForm("hint"),
		Attachment: attachment,
	})
	if err != nil {
		serverError(c, "Publish", err)
		return
	}
	addFlash(c, notice)
	c.Redirect(http.StatusFound, wargameHome)
}
