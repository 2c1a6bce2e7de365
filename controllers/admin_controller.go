// File: controllers/admin_controller.go
package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hspace-portal/dates"
	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/models"
	"hspace-portal/services"
)

const adminHome = "/admin"

// ---------------- Admin Controller ----------------

// AdminController lets admins curate the competition list.
type AdminController struct {
	competitions services.CompetitionStore
	board        *services.TeamBoardService
}

// NewAdminController initializes a new instance of AdminController
func NewAdminController(competitions services.CompetitionStore, board *services.TeamBoardService) *AdminController {
	return &AdminController{competitions: competitions, board: board}
}

// ---------------- admin panel ----------------

// AdminPanel lists every competition, approved or not.
func (ac *AdminController) AdminPanel(c *gin.Context) {
	competitions, err := ac.board.Competitions(c.Request.Context(), false)
	if err != nil {
		serverError(c, "AdminPanel", err)
		return
	}
	render(c, http.StatusOK, "admin.html", gin.H{
		"Competitions": competitions,
		"Levels":       models.Levels,
	})
}

// ---------------- competition management ----------------

// CreateCompetition inserts a competition directly. Dates are normalized.
func (ac *AdminController) CreateCompetition(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		flash(c, services.NoticeError, "A competition needs a title.")
		c.Redirect(http.StatusFound, adminHome)
		return
	}

	comp := models.Competition{
		Title:      title,
		Organizer:  strings.TrimSpace(c.PostForm("organizer")),
		ApplyStart: dates.Persist(c.PostForm("apply_start")),
		ApplyEnd:   dates.Persist(c.PostForm("apply_end")),
		EventStart: dates.Persist(c.PostForm("event_start")),
		EventEnd:   dates.Persist(c.PostForm("event_end")),
		Summary:    c.PostForm("summary"),
		Mode:       c.PostForm("mode"),
		Tags:       c.PostForm("tags"),
		CoverImage: strings.TrimSpace(c.PostForm("cover_image")),
		Approved:   c.PostForm("approved") == "on",
	}
	if models.IsLevel(c.PostForm("difficulty")) {
		comp.Difficulty = c.PostForm("difficulty")
	}

	if err := ac.competitions.CreateCompetition(c.Request.Context(), &comp); err != nil {
		serverError(c, "CreateCompetition", err)
		return
	}
	logger.Info.Printf("CreateCompetition: admin created competition %d (%q)", comp.ID, comp.Title)
	flash(c, services.NoticeSuccess, "Competition created.")
	c.Redirect(http.StatusFound, adminHome)
}

// ToggleApproval flips a competition's approval flag.
func (ac *AdminController) ToggleApproval(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := paramID(c, "id")
	if !ok {
		flash(c, services.NoticeError, "That competition could not be found.")
		c.Redirect(http.StatusFound, adminHome)
		return
	}

	comp, err := ac.competitions.GetCompetition(ctx, id)
	if dberrors.IsEntryNotFound(err) {
		flash(c, services.NoticeError, "That competition could not be found.")
		c.Redirect(http.StatusFound, adminHome)
		return
	}
	if err != nil {
		serverError(c, "ToggleApproval", err)
		return
	}

	if err := ac.competitions.SetCompetitionApproved(ctx, id, !comp.Approved); err != nil {
		serverError(c, "ToggleApproval", err)
		return
	}
	logger.Info.Printf("ToggleApproval: competition %d approved=%v", id, !comp.Approved)
	if comp.Approved {
		flash(c, services.NoticeInfo, "Competition hidden from the board.")
	} else {
		flash(c, services.NoticeSuccess, "Competition approved.")
	}
	c.Redirect(http.StatusFound, adminHome)
}
