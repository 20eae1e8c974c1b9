package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/author"
	"bookhub/internal/edition"
	"bookhub/internal/events"
	"bookhub/internal/metadata"
	"bookhub/internal/search"
	"bookhub/internal/work"
	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

func main() {
	cfg := utils.LoadServerConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))

	// liveness
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hub.Count(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"db":         dbCfg.Path,
			"ws_clients": hub.Count(),
		})
	})

	editionRepo := edition.NewRepo(db)
	editionHandler := edition.NewHandler(editionRepo, hub)
	editionHandler.RegisterRoutes(router.Group("/editions"))
	editionHandler.RegisterDiscovery(router.Group("/discover"))

	authorRepo := author.NewRepo(db)
	authorHandler := author.NewHandler(authorRepo, editionRepo)
	authorHandler.RegisterRoutes(router.Group("/authors"))

	workRepo := work.NewRepo(db)
	workHandler := work.NewHandler(workRepo, editionRepo, hub)
	workHandler.RegisterRoutes(router.Group("/works"))
	workHandler.RegisterLinkRoute(router)

	provider := metadata.NewGoogleBooks(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderTimeout)
	cooldown := search.NewMemoryCooldown(cfg.SearchCooldown)
	searchSvc := search.NewService(db, provider, cooldown, search.NewIngestLog(db), hub)
	search.NewHandler(searchSvc).RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
