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
	"go.uber.org/zap"

	"bookhub/internal/accesslog"
	"bookhub/internal/auth"
	"bookhub/internal/books"
	"bookhub/internal/events"
	"bookhub/internal/reviews"
	"bookhub/pkg/store"
	"bookhub/pkg/utils"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := utils.LoadConfig()

	logFile, err := accesslog.Open(cfg.LogDir)
	if err != nil {
		logger.Fatal("open access log", zap.Error(err))
	}
	defer logFile.Close()

	st := store.Open(store.Config{
		BooksPath:   filepath.Join(cfg.DataDir, "books.json"),
		ReviewsPath: filepath.Join(cfg.DataDir, "reviews.json"),
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(accesslog.RequestID(), accesslog.Middleware(logFile), gin.Recovery())

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()

	api := router.Group("/api")
	api.GET("/events", events.WSHandler(hub, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "books": len(st.Books()), "reviews": len(st.Reviews())})
	})

	// Books (public reads)
	booksHandler := books.NewHandler(st, hub)
	booksHandler.RegisterPublicRoutes(api.Group("/books"))

	// Reviews (public reads)
	reviewsHandler := reviews.NewHandler(st, hub)
	reviewsHandler.RegisterPublicRoutes(api)

	// Writes require a configured API key
	protected := api.Group("")
	protected.Use(auth.RequireAPIKey(cfg.APIKeys))
	booksHandler.RegisterProtectedRoutes(protected)
	reviewsHandler.RegisterProtectedRoutes(protected)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
