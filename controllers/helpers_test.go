package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"hspace-portal/db/sqlite"
	"hspace-portal/middleware"
	"hspace-portal/models"
	"hspace-portal/services"
)

const flashBlock = `{{range .Flashes}}[{{.Level}}] {{.Message}}
{{end}}`

// testTemplates print just enough of each page's data for assertions.
var testTemplates = map[string]string{
	"index.html":       `index{{if .CurrentUser}} user={{.CurrentUser.Username}}{{end}} admin={{.IsAdmin}}` + "\n" + flashBlock,
	"login.html":       `login next={{.Next}} username={{.Username}}` + "\n" + flashBlock,
	"register.html":    `register username={{.Username}}{{range .Errors}} error={{.}}{{end}}` + "\n" + flashBlock,
	"research.html":    `research phase={{.ActivePhase}}{{range .Posts}} post={{.Title}}{{end}} prefill={{.Prefill.Competition}}` + "\n" + flashBlock,
	"catalog.html":     `catalog{{range .Events}} event={{.Title}}{{end}}`,
	"team_detail.html": `team {{.Post.Title}} share={{.ShareURL}} applications={{len .Applications}}`,
	"wargame.html":     `wargame{{range .Dashboard.Challenges}} challenge={{.Title}}{{end}}` + "\n" + flashBlock,
	"minigame.html":    `minigame{{range .Leaderboard}} {{.Rank}}:{{.Username}}:{{.Score}}{{end}}`,
	"admin.html":       `admin{{range .Competitions}} comp={{.Title}}:{{.Approved}}{{end}}` + "\n" + flashBlock,
	"404.html":         `not found`,
	"error.html":       `error {{.Message}}`,
}

// testApp is a router backed by a migrated sqlite database.
type testApp struct {
	router *gin.Engine
	db     *sqlite.Database
	auth   *services.AuthService
}

// setupTestRouter builds a router with sessions, the user loader, dummy
// templates, "/" for reading flashes and a /set-session helper route.
func setupTestRouter(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "controllers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	templatesDir := t.TempDir()
	for name, body := range testTemplates {
		require.NoError(t, os.WriteFile(filepath.Join(templatesDir, name), []byte(body), 0o644))
	}

	auth := services.NewAuthService(db)
	router := gin.New()
	router.Use(sessions.Sessions("testsession", cookie.NewStore([]byte("test-secret"))))
	router.Use(middleware.LoadUser(auth))
	router.LoadHTMLGlob(filepath.Join(templatesDir, "*.html"))

	pages := NewPageController(db)
	router.GET("/", pages.Index)

	// Helper route to set session values.
	router.GET("/set-session", func(c *gin.Context) {
		session := sessions.Default(c)
		if raw := c.Query("user_id"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			session.Set(middleware.SessionUserID, id)
		}
		session.Set(middleware.SessionIsAdmin, c.Query("admin") == "1")
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "Failed to save session")
			return
		}
		c.String(http.StatusOK, "Session set")
	})

	return &testApp{router: router, db: db, auth: auth}
}

// createUser stores a user directly, bypassing password hashing.
func (a *testApp) createUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "unused"}
	require.NoError(t, a.db.CreateUser(context.Background(), &user))
	return user
}

// loginAs creates username and returns cookies for a session logged in as them.
func (a *testApp) loginAs(t *testing.T, username string, admin bool) (models.User, []*http.Cookie) {
	t.Helper()
	user := a.createUser(t, username)

	path := "/set-session?user_id=" + strconv.FormatInt(user.ID, 10)
	if admin {
		path += "&admin=1"
	}
	w := a.do(http.MethodGet, path, nil, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "Session cookie not found")
	return user, cookies
}

func (a *testApp) do(method, path string, body io.Reader, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, path, nil, "", cookies)
}

func (a *testApp) postForm(path string, form map[string]string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}
	return a.do(http.MethodPost, path, strings.NewReader(values.Encode()),
		"application/x-www-form-urlencoded", cookies)
}

// flashes renders "/" with the cookies a response set and returns the page.
func (a *testApp) flashes(t *testing.T, w *httptest.ResponseRecorder, fallback []*http.Cookie) string {
	t.Helper()
	page := a.get("/", latestCookies(w, fallback))
	require.Equal(t, http.StatusOK, page.Code)
	return page.Body.String()
}

// latestCookies prefers the cookies set by w over the ones sent with the request.
func latestCookies(w *httptest.ResponseRecorder, fallback []*http.Cookie) []*http.Cookie {
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		return cookies
	}
	return fallback
}
