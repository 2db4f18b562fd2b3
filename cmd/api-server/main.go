package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mediahub/internal/archive"
	"mediahub/internal/config"
	"mediahub/internal/explore"
	synchub "mediahub/internal/sync"
	"mediahub/pkg/database"
	"mediahub/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	db := database.MustOpen(cfg.DatabasePath)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DatabasePath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.Clients,
		})
	})

	providers := buildProviders(cfg, logger)

	repo := archive.NewRepo(db)
	handler := archive.NewHandler(repo, hub, providers, logger)
	handler.RegisterRoutes(router.Group("/api"))

	httpSrv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API server listening on :%s", cfg.ServerPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("shutdown signal received: %s", sig)
	case err := <-errCh:
		logger.Errorf("server error: %v", err)
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown error: %v", err)
	}
	logger.Info("server stopped")
}

func buildProviders(cfg *config.Config, logger *logrus.Logger) []explore.Provider {
	providers := []explore.Provider{
		explore.NewAniList(),
		explore.NewMangaDex(),
		explore.NewOpenLibrary(),
	}
	if cfg.TMDBAPIKey != "" {
		providers = append(providers, explore.NewTMDB(cfg.TMDBAPIKey))
	} else {
		logger.Warn("TMDB_API_KEY not set, movie/series search disabled")
	}
	return providers
}
