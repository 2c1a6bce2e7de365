// File: controllers/research_controller.go
package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hspace-portal/catalog"
	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/models"
	"hspace-portal/services"
)

const qrCodeSize = 256

// EventCatalog is the read side of the catalog cache.
type EventCatalog interface {
	Fetch(ctx context.Context, limit int) []catalog.Event
	Get(ctx context.Context, id int64) (catalog.Event, bool)
}

// ResearchController serves the team board, the catalog and team pages.
type ResearchController struct {
	board          *services.TeamBoardService
	events         EventCatalog
	reconciler     *services.CompetitionReconciler
	applicationURL string
	pageLimit      int
	qrEncoder      services.QREncoder
}

func NewResearchController(
	board *services.TeamBoardService,
	events EventCatalog,
	reconciler *services.CompetitionReconciler,
	applicationURL string,
	pageLimit int,
) *ResearchController {
	return &ResearchController{
		board:          board,
		events:         events,
		reconciler:     reconciler,
		applicationURL: applicationURL,
		pageLimit:      pageLimit,
	}
}

// ------------------ team board ------------------

// Board lists the posts of the selected phase tab. prefill_* query
// parameters seed the new-post form.
func (rc *ResearchController) Board(c *gin.Context) {
	ctx := c.Request.Context()
	phase := models.SanitizePhase(c.DefaultQuery("phase", string(models.PhaseAll)))

	posts, err := rc.board.ListPosts(ctx, string(phase), viewerID(c))
	if err != nil {
		serverError(c, "Board", err)
		return
	}
	counts, err := rc.board.PhaseCounts(ctx)
	if err != nil {
		serverError(c, "Board", err)
		return
	}
	competitions, err := rc.board.Competitions(ctx, true)
	if err != nil {
		serverError(c, "Board", err)
		return
	}

	render(c, http.StatusOK, "research.html", gin.H{
		"Posts":        posts,
		"PhaseCounts":  counts,
		"Phases":       models.PhaseTabs,
		"ActivePhase":  phase,
		"Competitions": competitions,
		"Levels":       models.Levels,
		"Prefill":      services.PrefillFromQuery(c.Request.URL.Query()),
	})
}

// Submit dispatches the board's two forms on form_type.
func (rc *ResearchController) Submit(c *gin.Context) {
	switch c.PostForm("form_type") {
	case "team_post":
		rc.submitPost(c)
	case "team_application":
		rc.submitApplication(c)
	default:
		logger.Warn.Printf("Submit: unknown form_type %q", c.PostForm("form_type"))
		c.Redirect(http.StatusFound, "/research")
	}
}

func (rc *ResearchController) submitPost(c *gin.Context) {
	notice, err := rc.board.SubmitPost(c.Request.Context(), services.PostInput{
		Title:             c.PostForm("title"),
		Owner:             c.PostForm("owner"),
		Competition:       c.PostForm("competition_input"),
		EventStart:        c.PostForm("event_start"),
		EventEnd:          c.PostForm("event_end"),
		Summary:           c.PostForm("summary"),
		Requirements:      c.PostForm("requirements"),
		Tags:              c.PostForm("tags"),
		TeamSize:          c.PostForm("team_size"),
		Level:             c.PostForm("level"),
		UseRandomMatching: c.PostForm("use_random_matching") == "on",
		Phase:             c.PostForm("phase"),
	})
	if err != nil {
		serverError(c, "submitPost", err)
		return
	}
	addFlash(c, notice)
	c.Redirect(http.StatusFound, "/research")
}

// submitApplication returns to the local "next" path when the application
// was handled, and to the board's current tab otherwise.
func (rc *ResearchController) submitApplication(c *gin.Context) {
	phase := models.SanitizePhase(c.DefaultQuery("phase", string(models.PhaseAll)))
	back := "/research?phase=" + url.QueryEscape(string(phase))

	notice, err := rc.board.SubmitApplication(c.Request.Context(), services.ApplicationInput{
		PostID:        c.PostForm("post_id"),
		ApplicantName: c.PostForm("applicant_name"),
		Contact:       c.PostForm("contact"),
		Message:       c.PostForm("message"),
		DesiredRole:   c.PostForm("desired_role"),
		Level:         c.PostForm("level"),
	}, viewerID(c))
	if err != nil {
		serverError(c, "submitApplication", err)
		return
	}
	addFlash(c, notice)

	if next, ok := safeRedirect(c.PostForm("next")); ok && !notice.IsError() {
		back = next
	}
	c.Redirect(http.StatusFound, back)
}

// ------------------ catalog ------------------

// Catalog lists upcoming external events.
func (rc *ResearchController) Catalog(c *gin.Context) {
	events := rc.events.Fetch(c.Request.Context(), rc.pageLimit)
	render(c, http.StatusOK, "catalog.html", gin.H{
		"Events": events,
		"Levels": models.Levels,
	})
}

// CatalogTeam mirrors the event into a competition and opens the board with
// the new-post form prefilled from it.
func (rc *ResearchController) CatalogTeam(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := paramID(c, "id")
	var ev catalog.Event
	if ok {
		ev, ok = rc.events.Get(ctx, id)
	}
	if !ok {
		logger.Warn.Printf("CatalogTeam: catalog event %q not available", c.Param("id"))
		flash(c, services.NoticeError, "Could not load the competition details.")
		c.Redirect(http.StatusFound, "/catalog")
		return
	}

	if _, err := rc.reconciler.Reconcile(ctx, ev); err != nil {
		serverError(c, "CatalogTeam", err)
		return
	}

	c.Redirect(http.StatusFound, "/research?"+rc.board.Prefill(ev).Query().Encode())
}

// ------------------ team detail ------------------

func (rc *ResearchController) TeamDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	detail, err := rc.board.PostDetail(c.Request.Context(), id, viewerID(c))
	if dberrors.IsEntryNotFound(err) {
		notFound(c)
		return
	}
	if err != nil {
		serverError(c, "TeamDetail", err)
		return
	}

	render(c, http.StatusOK, "team_detail.html", gin.H{
		"Post":          detail.Post,
		"RawPost":       detail.Raw,
		"Applications":  detail.Applications,
		"MyApplication": detail.MyApplication,
		"Levels":        models.Levels,
		"ShareURL":      services.TeamShareURL(rc.applicationURL, id),
	})
}

// TeamQRCode serves a PNG QR code pointing at the team page.
func (rc *ResearchController) TeamQRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "team not found")
		return
	}
	if _, err := rc.board.PostDetail(c.Request.Context(), id, nil); err != nil {
		if dberrors.IsEntryNotFound(err) {
			c.String(http.StatusNotFound, "team not found")
			return
		}
		logger.Error.Printf("TeamQRCode: failed to load post %d: %v", id, err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	png, err := services.GenerateQRCode(services.TeamShareURL(rc.applicationURL, id), qrCodeSize, rc.qrEncoder)
	if err != nil {
		logger.Error.Printf("TeamQRCode: Error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"team-%d.png\"", id))
	c.Data(http.StatusOK, "image/png", png)
}

// ------------------ random match ------------------

// RandomMatch answers {"matches": [...]} for a JSON or form body with
// optional competition_id, competition_title and level.
func (rc *ResearchController) RandomMatch(c *gin.Context) {
	payload := matchPayload(c)

	filter := models.MatchFilter{
		CompetitionTitle: payload["competition_title"],
		Level:            payload["level"],
	}
	if raw := payload["competition_id"]; raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CompetitionID = &id
		}
	}

	matches, err := rc.board.RandomMatch(c.Request.Context(), filter)
	if err != nil {
		logger.Error.Printf("RandomMatch: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not search teams."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

var matchFields = []string{"competition_id", "competition_title", "level"}

// matchPayload reads the filter fields from a JSON object or a form. A
// malformed JSON body counts as empty.
func matchPayload(c *gin.Context) map[string]string {
	payload := make(map[string]string, len(matchFields))

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var raw map[string]interface{}
		if err := c.ShouldBindJSON(&raw); err != nil {
			logger.Debug.Printf("matchPayload: ignoring malformed JSON body: %v", err)
			return payload
		}
		for _, key := range matchFields {
			if v, ok := raw[key]; ok && v != nil {
				payload[key] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return payload
	}

	for _, key := range matchFields {
		payload[key] = strings.TrimSpace(c.PostForm(key))
	}
	return payload
}
