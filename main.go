// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hspace-portal/catalog"
	"hspace-portal/config"
	"hspace-portal/controllers"
	"hspace-portal/db/sqlite"
	"hspace-portal/logger"
	"hspace-portal/metrics"
	"hspace-portal/services"
	"hspace-portal/websocket"
)

const serviceName = "hspace-portal"

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("main: no .env file loaded: %v", err)
	}
	cfg := config.Load()

	if err := logger.InitLogger(cfg.LogDir); err != nil {
		logger.Error.Fatalf("main: failed to initialise log file: %v", err)
	}
	logger.SetLogLevel(cfg.Env)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error.Fatalf("main: failed to open database %s: %v", cfg.DatabasePath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error.Printf("main: failed to close database: %v", err)
		}
	}()
	if err := db.Migrate(); err != nil {
		logger.Error.Fatalf("main: failed to migrate database: %v", err)
	}

	publisher := newPublisher(cfg)

	var clientOpts []catalog.ClientOption
	if cfg.TracingEnabled {
		clientOpts = append(clientOpts, catalog.WithTracing())
	}
	catalogClient := catalog.NewClient(cfg.CatalogAPIURL, cfg.CatalogUserAgent, cfg.CatalogTimeout, cfg.CatalogLookahead, clientOpts...)
	events := catalog.NewCache(catalogClient, cfg.CatalogWindow, catalog.WithMetrics(publisher))

	hub := websocket.NewHub(publisher)
	done := make(chan struct{})
	go hub.HandleMessages(done)

	auth := services.NewAuthService(db)
	board := services.NewTeamBoardService(db, db)
	reconciler := services.NewCompetitionReconciler(db)
	wargame := services.NewWargameService(db, services.UploadConfig{
		Dir:               cfg.UploadDir,
		StaticDir:         cfg.StaticDir,
		AllowedExtensions: cfg.AllowedExtensions,
	}, publisher)
	minigame := services.NewMinigameService(db, hub, publisher)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := wargame.EnsureSeeds(seedCtx); err != nil {
		logger.Error.Fatalf("main: failed to seed wargame challenges: %v", err)
	}
	cancelSeed()

	router := setupRouter(cfg, handlers{
		users:    auth,
		pages:    controllers.NewPageController(db),
		auth:     controllers.NewAuthController(auth, cfg.IsAdmin),
		research: controllers.NewResearchController(board, events, reconciler, cfg.ApplicationURL, cfg.CatalogPageLimit),
		wargame:  controllers.NewWargameController(wargame),
		minigame: controllers.NewMinigameController(minigame, hub),
		admin:    controllers.NewAdminController(db, board),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info.Printf("main: server starting on port %s (env=%s, templates=%s)",
			cfg.Port, cfg.Env, filepath.Clean(cfg.TemplatesDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Fatalf("main: failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info.Println("main: server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error.Printf("main: server forced to shutdown: %v", err)
	}
	close(done)

	logger.Info.Println("main: server exited")
}

// newPublisher returns the CloudWatch publisher when metrics are enabled.
func newPublisher(cfg *config.Config) metrics.Publisher {
	if !cfg.MetricsEnabled {
		return metrics.Noop{}
	}
	publisher, err := metrics.NewCloudWatchPublisher(cfg.MetricsNamespace, serviceName)
	if err != nil {
		logger.Warn.Printf("main: CloudWatch unavailable, metrics disabled: %v", err)
		return metrics.Noop{}
	}
	return publisher
}
