// controllers/research_controller_test.go
package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hspace-portal/catalog"
	"hspace-portal/middleware"
	"hspace-portal/services"
)

const testApplicationURL = "http://portal.test"

// fakeCatalog serves a fixed set of events.
type fakeCatalog struct {
	events []catalog.Event
}

func (f fakeCatalog) Fetch(_ context.Context, limit int) []catalog.Event {
	if limit > 0 && len(f.events) > limit {
		return f.events[:limit]
	}
	return f.events
}

func (f fakeCatalog) Get(_ context.Context, id int64) (catalog.Event, bool) {
	for _, ev := range f.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return catalog.Event{}, false
}

func orbitalEvent() catalog.Event {
	online := false
	return catalog.FormatEvent(catalog.RawEvent{
		ID:          101,
		Title:       "Orbital CTF",
		Description: "Jeopardy style qualifier",
		Format:      "Jeopardy",
		Onsite:      &online,
		Location:    "Seoul",
		Start:       "2024-03-01T09:00:00+09:00",
		Finish:      "2024-03-02T09:00:00+09:00",
	})
}

type researchApp struct {
	*testApp
	board *services.TeamBoardService
}

func researchRouter(t *testing.T) *researchApp {
	t.Helper()
	app := setupTestRouter(t)
	board := services.NewTeamBoardService(app.db, app.db)
	rc := NewResearchController(board, fakeCatalog{events: []catalog.Event{orbitalEvent()}},
		services.NewCompetitionReconciler(app.db), testApplicationURL, 30)

	protected := app.router.Group("/", middleware.AuthRequired)
	protected.GET("/research", rc.Board)
	protected.POST("/research", rc.Submit)
	protected.GET("/catalog", rc.Catalog)
	protected.GET("/catalog/:id/team", rc.CatalogTeam)
	protected.GET("/team/:id", rc.TeamDetail)
	protected.GET("/team/:id/qrcode", rc.TeamQRCode)
	protected.POST("/api/random-match", rc.RandomMatch)
	return &researchApp{testApp: app, board: board}
}

func (a *researchApp) seedPost(t *testing.T, title string) int64 {
	t.Helper()
	notice, err := a.board.SubmitPost(context.Background(), services.PostInput{
		Title:   title,
		Owner:   "nova",
		Summary: "Looking for a crypto player",
		Level:   "beginner",
	})
	require.NoError(t, err)
	require.False(t, notice.IsError(), notice.Message)

	posts, err := a.board.ListPosts(context.Background(), "all", nil)
	require.NoError(t, err)
	for _, p := range posts {
		if p.Title == title {
			return p.ID
		}
	}
	t.Fatalf("post %q not found after submit", title)
	return 0
}

// ------------------ board ------------------

func TestBoard_RequiresLogin(t *testing.T) {
	app := researchRouter(t)

	w := app.get("/research?phase=done", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fresearch%3Fphase%3Ddone", w.Header().Get("Location"))
}

func TestBoard_ListsPostsAndPrefill(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)
	app.seedPost(t, "Crypto squad")

	w := app.get("/research?phase=bogus&prefill_competition=Orbital+CTF", cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "research phase=all")
	assert.Contains(t, body, "post=Crypto squad")
	assert.Contains(t, body, "prefill=Orbital CTF")
}

func TestSubmit_TeamPost(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	w := app.postForm("/research", map[string]string{
		"form_type":           "team_post",
		"title":               "Pwn crew",
		"competition_input":   "Some local CTF",
		"use_random_matching": "on",
	}, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/research", w.Header().Get("Location"))
	assert.Contains(t, app.flashes(t, w, cookies), "[success] Your team post has been published.")

	posts, err := app.board.ListPosts(context.Background(), "all", nil)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Some local CTF", posts[0].CompetitionTitle)
	assert.True(t, posts[0].UseRandomMatching)
}

func TestSubmit_TeamPostWithoutTitle(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	w := app.postForm("/research", map[string]string{"form_type": "team_post"}, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, app.flashes(t, w, cookies), "[error] Please enter a team or project name.")
}

func TestSubmit_Application(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)
	postID := app.seedPost(t, "Crypto squad")
	next := "/team/" + strconv.FormatInt(postID, 10)

	t.Run("handled application follows next", func(t *testing.T) {
		w := app.postForm("/research", map[string]string{
			"form_type":      "team_application",
			"post_id":        strconv.FormatInt(postID, 10),
			"applicant_name": "Comet",
			"contact":        "comet@example.com",
			"next":           next,
		}, cookies)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, next, w.Header().Get("Location"))
		assert.Contains(t, app.flashes(t, w, cookies), "[success] Application received.")
	})

	t.Run("rejected application returns to the board", func(t *testing.T) {
		w := app.postForm("/research?phase=done", map[string]string{
			"form_type": "team_application",
			"post_id":   "9999",
			"next":      next,
		}, cookies)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/research?phase=done", w.Header().Get("Location"))
		assert.Contains(t, app.flashes(t, w, cookies), "[error] That team could not be found.")
	})

	t.Run("external next is ignored", func(t *testing.T) {
		w := app.postForm("/research", map[string]string{
			"form_type":      "team_application",
			"post_id":        strconv.FormatInt(postID, 10),
			"applicant_name": "Comet",
			"next":           "//evil.example",
		}, cookies)

		assert.Equal(t, "/research?phase=all", w.Header().Get("Location"))
	})
}

func TestSubmit_UnknownFormType(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	w := app.postForm("/research", map[string]string{"form_type": "other"}, cookies)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/research", w.Header().Get("Location"))
}

// ------------------ catalog ------------------

func TestCatalog_ListsEvents(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	w := app.get("/catalog", cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event=Orbital CTF")
}

func TestCatalogTeam_ReconcilesAndPrefills(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	w := app.get("/catalog/101/team", cookies)

	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/research?"), location)
	assert.Contains(t, location, "prefill_competition=Orbital+CTF")
	assert.Contains(t, location, "prefill_title=Orbital+CTF+team+recruitment")

	comp, err := app.db.GetCompetitionByTitle(context.Background(), "Orbital CTF")
	require.NoError(t, err)
	assert.True(t, comp.Approved)
	assert.Equal(t, "2024-03-01T00:00:00+00:00", comp.EventStart)

	// a second import updates nothing and creates nothing
	w = app.get("/catalog/101/team", cookies)
	require.Equal(t, http.StatusFound, w.Code)
	all, err := app.db.ListCompetitions(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCatalogTeam_UnknownEvent(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	for _, path := range []string{"/catalog/999/team", "/catalog/abc/team"} {
		w := app.get(path, cookies)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/catalog", w.Header().Get("Location"), path)
		assert.Contains(t, app.flashes(t, w, cookies), "[error] Could not load the competition details.", path)
	}
}

// ------------------ team detail ------------------

func TestTeamDetail(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)
	postID := app.seedPost(t, "Crypto squad")
	path := "/team/" + strconv.FormatInt(postID, 10)

	w := app.get(path, cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "team Crypto squad share="+testApplicationURL+path)
	assert.Contains(t, w.Body.String(), "applications=0")
}

func TestTeamDetail_NotFound(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)

	for _, path := range []string{"/team/999", "/team/zero"} {
		w := app.get(path, cookies)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "not found", w.Body.String(), path)
	}
}

func TestTeamQRCode(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)
	postID := app.seedPost(t, "Crypto squad")

	w := app.get("/team/"+strconv.FormatInt(postID, 10)+"/qrcode", cookies)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="team-`+strconv.FormatInt(postID, 10)+`.png"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), "body should be a PNG")

	w = app.get("/team/999/qrcode", cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "team not found", w.Body.String())
}

// ------------------ random match ------------------

func decodeMatches(t *testing.T, body []byte) []services.MatchView {
	t.Helper()
	var resp struct {
		Matches []services.MatchView `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Matches
}

func TestRandomMatch(t *testing.T) {
	app := researchRouter(t)
	_, cookies := app.loginAs(t, "nova", false)
	app.seedPost(t, "Crypto squad")
	app.seedPost(t, "Web squad")

	t.Run("json body", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/random-match",
			strings.NewReader(`{"level":"beginner","competition_id":null}`), "application/json", cookies)

		require.Equal(t, http.StatusOK, w.Code)
		matches := decodeMatches(t, w.Body.Bytes())
		assert.Len(t, matches, 2)
	})

	t.Run("form body", func(t *testing.T) {
		w := app.postForm("/api/random-match", map[string]string{"level": "beginner"}, cookies)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeMatches(t, w.Body.Bytes()), 2)
	})

	t.Run("malformed json counts as no filter", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/random-match",
			strings.NewReader(`{"level":`), "application/json", cookies)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeMatches(t, w.Body.Bytes()), 2)
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		w := app.postForm("/api/random-match", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Login required."}`, w.Body.String())
	})
}
