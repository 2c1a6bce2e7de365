// file: middleware/auth_test.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	dberrors "hspace-portal/db/errors"
	"hspace-portal/models"
)

// Helper function to create a test router with a protected page and API route
func setupAuthTestRouter() *gin.Engine {
	router := newSessionRouter()

	router.GET("/protected", AuthRequired, func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the protected page")
	})
	router.POST("/api/protected", AuthRequired, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

// Test: Unauthenticated users should be redirected to `/login`
func TestAuthRequired_Unauthenticated(t *testing.T) {
	router := setupAuthTestRouter()

	w := doRequest(router, http.MethodGet, "/protected?tab=done", nil)

	assert.Equal(t, http.StatusFound, w.Code, "Expected 302 Redirect")
	assert.Equal(t, "/login?next=%2Fprotected%3Ftab%3Ddone", w.Header().Get("Location"))
}

func TestAuthRequired_UnauthenticatedAPI(t *testing.T) {
	router := setupAuthTestRouter()

	w := doRequest(router, http.MethodPost, "/api/protected", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Login required."}`, w.Body.String())
}

// Test: Authenticated users should access the protected route
func TestAuthRequired_Authenticated(t *testing.T) {
	router := setupAuthTestRouter()
	cookies := sessionCookies(t, router, "user_id=7")

	w := doRequest(router, http.MethodGet, "/protected", cookies)

	assert.Equal(t, http.StatusOK, w.Code, "Expected 200 OK for authenticated user")
	assert.Contains(t, w.Body.String(), "Welcome to the protected page")
}

// ------------------ LoadUser ------------------

type stubLoader struct {
	users map[int64]*models.User
	err   error
}

func (s stubLoader) UserByID(_ context.Context, id int64) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, dberrors.NewEntryNotFound("no entries for user")
}

func setupLoadUserRouter(loader UserLoader) *gin.Engine {
	router := newSessionRouter()
	router.Use(LoadUser(loader))
	router.GET("/whoami", func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return router
}

func TestLoadUser(t *testing.T) {
	loader := stubLoader{users: map[int64]*models.User{7: {ID: 7, Username: "space_cadet"}}}
	router := setupLoadUserRouter(loader)

	t.Run("anonymous", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/whoami", nil)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("known user", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/whoami", sessionCookies(t, router, "user_id=7"))
		assert.Equal(t, "space_cadet", w.Body.String())
	})

	t.Run("deleted user clears the session", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/whoami", sessionCookies(t, router, "user_id=99"))
		assert.Equal(t, "anonymous", w.Body.String())
		assert.NotEmpty(t, w.Result().Cookies(), "cleared session should be written back")
	})
}

func TestLoadUser_StoreErrorLeavesAnonymous(t *testing.T) {
	router := setupLoadUserRouter(stubLoader{err: errors.New("database is locked")})

	w := doRequest(router, http.MethodGet, "/whoami", sessionCookies(t, router, "user_id=7"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}
