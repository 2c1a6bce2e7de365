// Package middleware provides request filters and security checks for the application.
// File: middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/models"
)

// Session and context keys shared with the controllers.
const (
	SessionUserID  = "user_id"
	SessionIsAdmin = "isAdmin"
	CurrentUserKey = "currentUser"
)

// -------------- authentication middleware --------------

// AuthRequired ensures the user is logged in.
// How it works:
// - Reads "user_id" from the session.
// - Without it, API paths get a 401 JSON body and pages redirect to /login?next=<path>.
// - Otherwise, the request proceeds.
// Usage:
//
//	router.Use(AuthRequired)
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)

	// block request if user session is missing
	if _, ok := session.Get(SessionUserID).(int64); !ok {
		logger.Warn.Printf("AuthRequired: no user in session for %s %s", c.Request.Method, c.Request.URL.Path)
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Login required."})
			return
		}
		target := "/login"
		if c.Request.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		c.Redirect(http.StatusFound, target)
		c.Abort() // 🔴 prevents further execution
		return
	}

	logger.Debug.Println("[AuthRequired] User authenticated - proceeding with request")
	c.Next()
}

// -------------- current user --------------

// UserLoader resolves the account stored in a session.
type UserLoader interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// LoadUser puts the logged-in *models.User into the gin context under
// CurrentUserKey. A session pointing at a deleted account is cleared.
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(SessionUserID).(int64)
		if !ok {
			c.Next()
			return
		}

		user, err := users.UserByID(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(CurrentUserKey, user)
		case dberrors.IsEntryNotFound(err):
			logger.Warn.Printf("LoadUser: session refers to missing user %d, clearing", id)
			session.Clear()
			if err := session.Save(); err != nil {
				logger.Error.Printf("LoadUser: failed to save cleared session: %v", err)
			}
		default:
			logger.Error.Printf("LoadUser: failed to load user %d: %v", id, err)
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
