// File: controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"hspace-portal/logger"
	"hspace-portal/middleware"
	"hspace-portal/services"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	auth    *services.AuthService
	isAdmin func(username string) bool
}

func NewAuthController(auth *services.AuthService, isAdmin func(username string) bool) *AuthController {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthController{auth: auth, isAdmin: isAdmin}
}

// ------------------ registration ------------------

func (ac *AuthController) ShowRegister(c *gin.Context) {
	render(c, http.StatusOK, "register.html", nil)
}

// Register creates an account. A taken username re-renders the form without
// saying why, so account names are not disclosed.
func (ac *AuthController) Register(c *gin.Context) {
	in := services.RegisterInput{
		Username:        c.PostForm("username"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
	}

	res, err := ac.auth.Register(c.Request.Context(), in)
	if err != nil {
		serverError(c, "Register", err)
		return
	}
	if len(res.Errors) > 0 {
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Errors":   res.Errors,
			"Username": in.Username,
		})
		return
	}
	if res.User == nil {
		render(c, http.StatusOK, "register.html", gin.H{"Username": in.Username})
		return
	}

	flash(c, services.NoticeSuccess, "Registration complete. Please log in.")
	c.Redirect(http.StatusFound, "/login")
}

// ------------------ login handling ------------------

func (ac *AuthController) ShowLogin(c *gin.Context) {
	next, _ := safeRedirect(c.Query("next"))
	render(c, http.StatusOK, "login.html", gin.H{"Next": next})
}

// Login authenticates the user and starts a fresh session.
// If successful, it redirects to the local "next" path or to /.
// A failed attempt re-renders the form without a message.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	next, _ := safeRedirect(c.PostForm("next"))

	user, err := ac.auth.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		render(c, http.StatusOK, "login.html", gin.H{"Username": username, "Next": next})
		return
	}
	if err != nil {
		serverError(c, "Login", err)
		return
	}

	isAdmin := ac.isAdmin(user.Username)
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserID, user.ID)
	session.Set(middleware.SessionIsAdmin, isAdmin)
	if err := session.Save(); err != nil {
		serverError(c, "Login", err)
		return
	}
	logger.Info.Printf("Login: user %s logged in (isAdmin=%v)", user.Username, isAdmin)

	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout clears the session.
func (ac *AuthController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if id, ok := session.Get(middleware.SessionUserID).(int64); ok {
		logger.Info.Printf("Logout: user %d logged out", id)
	}

	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error.Printf("Logout: Error saving session during logout: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}
