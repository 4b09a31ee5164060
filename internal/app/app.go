package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arodri-go/events/internal/config"
	"github.com/arodri-go/events/internal/handler"
	"github.com/arodri-go/events/internal/middleware"
	"github.com/arodri-go/events/internal/obs"
	"github.com/arodri-go/events/internal/provider"
	"github.com/arodri-go/events/internal/search"
	"github.com/arodri-go/events/internal/search/ratelimit"
)

// Run initializes and runs the application.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	logger := config.NewLogger()
	slog.SetDefault(logger)

	// Initialize metrics
	metrics := obs.NewMetrics(logger)

	// Initialize upstream catalog client
	catalog := provider.NewHTTPCatalog(cfg.ProviderURL, cfg.ProviderTimeout)

	// Initialize search service
	service := search.NewService(catalog, metrics, logger)

	// Initialize rate limiter
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Close()

	// Initialize handler
	h := handler.New(service, limiter, metrics, logger)

	// Setup routes with logging middleware
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", h.SearchHandler)
	mux.HandleFunc("GET /healthz", obs.HealthHandler(logger))
	mux.HandleFunc("GET /metrics", metrics.MetricsHandler())

	// Wrap with middleware
	wrappedHandler := middleware.Logging(logger)(mux)

	// Configure server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrappedHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "provider_url", cfg.ProviderURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
