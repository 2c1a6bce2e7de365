package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newSessionRouter returns a router with a cookie session store and a
// /set-session route that stores user_id and isAdmin from the query string.
func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("testsession", cookie.NewStore([]byte("test-secret"))))

	router.GET("/set-session", func(c *gin.Context) {
		session := sessions.Default(c)
		if raw := c.Query("user_id"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			session.Set(SessionUserID, id)
		}
		if c.Query("admin") == "1" {
			session.Set(SessionIsAdmin, true)
		}
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "Failed to save session")
			return
		}
		c.String(http.StatusOK, "Session set")
	})
	return router
}

// sessionCookies performs /set-session with query and returns its cookies.
func sessionCookies(t *testing.T, router *gin.Engine, query string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set-session?"+query, nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func doRequest(router *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
