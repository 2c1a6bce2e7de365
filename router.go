// router.go
package main

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"hspace-portal/config"
	"hspace-portal/controllers"
	"hspace-portal/middleware"
)

const sessionName = "hspace_session"

// handlers bundles the controllers the router dispatches to.
type handlers struct {
	users    middleware.UserLoader
	pages    *controllers.PageController
	auth     *controllers.AuthController
	research *controllers.ResearchController
	wargame  *controllers.WargameController
	minigame *controllers.MinigameController
	admin    *controllers.AdminController
}

// setupRouter builds the gin engine: middleware, templates, static files and routes.
func setupRouter(cfg *config.Config, h handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.SecurityHeaders())

	// Initialize session store
	store := cookie.NewStore(cfg.SecretKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, store))
	router.Use(middleware.LoadUser(h.users))

	router.MaxMultipartMemory = 16 << 20
	router.SetFuncMap(template.FuncMap{
		"deref": func(b *bool) bool { return b != nil && *b },
	})
	router.LoadHTMLGlob(filepath.Join(cfg.TemplatesDir, "*.html"))
	router.Static("/static", cfg.StaticDir)

	router.GET("/health", h.pages.Health)
	router.GET("/", h.pages.Index)
	router.NoRoute(h.pages.NotFound)

	// Public routes
	router.GET("/register", h.auth.ShowRegister)
	router.POST("/register", h.auth.Register)
	router.GET("/login", h.auth.ShowLogin)
	router.POST("/login", h.auth.Login)
	router.POST("/logout", h.auth.Logout)

	// Protected routes
	protected := router.Group("/", middleware.AuthRequired)
	{
		protected.GET("/research", h.research.Board)
		protected.POST("/research", h.research.Submit)
		protected.GET("/catalog", h.research.Catalog)
		protected.GET("/catalog/:id/team", h.research.CatalogTeam)
		protected.GET("/team/:id", h.research.TeamDetail)
		protected.GET("/team/:id/qrcode", h.research.TeamQRCode)
		protected.POST("/api/random-match", h.research.RandomMatch)
	}

	wargame := router.Group("/wargame")
	{
		wargame.GET("/", h.wargame.Dashboard)
		wargame.POST("/attempt", h.wargame.Attempt)
		wargame.POST("/publish", h.wargame.Publish)
	}

	minigame := router.Group("/mini_game")
	{
		minigame.GET("/", h.minigame.Page)
		minigame.POST("/submit_score", h.minigame.SubmitScore)
		minigame.GET("/leaderboard", h.minigame.Leaderboard)
		minigame.GET("/ws", h.minigame.Live)
	}

	admin := router.Group("/admin", middleware.AuthRequired, middleware.AdminRequired())
	{
		admin.GET("", h.admin.AdminPanel)
		admin.POST("/competitions", h.admin.CreateCompetition)
		admin.POST("/competitions/:id/approve", h.admin.ToggleApproval)
	}

	return router
}
