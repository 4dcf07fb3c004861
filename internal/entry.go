// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/halvard/skein/internal/api"
	"github.com/halvard/skein/internal/archive"
	"github.com/halvard/skein/internal/canvas"
	"github.com/halvard/skein/internal/engine"
	"github.com/halvard/skein/internal/mcpserver"
	"github.com/halvard/skein/internal/scriptheal"
	"github.com/halvard/skein/internal/sse"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP stdio mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpStdio {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("archive_path", cfg.Archive.Path),
		slog.String("exchange_dir", cfg.Archive.ExchangeDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize document archive.
	db, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}
	defer db.Close()

	// Live canvas behind the single-writer dispatcher.
	dispatcher := canvas.NewDispatcher(canvas.NewMemory())
	defer dispatcher.Close()

	heal := scriptheal.NewLoop(app.corrector, cfg.Heal.MaxRetries)
	eng := engine.New(dispatcher, heal)

	if app.mcpStdio {
		logger.Info("Serving MCP over stdio")
		return mcpserver.New(eng, db).ServeStdio()
	}

	// Exchange directory: initial sync, then watch.
	if cfg.Archive.ExchangeDir != "" {
		if err := os.MkdirAll(cfg.Archive.ExchangeDir, 0o755); err != nil {
			return fmt.Errorf("create exchange dir: %w", err)
		}
		if err := archive.Sync(db, cfg.Archive.ExchangeDir, logger); err != nil {
			logger.Warn("initial exchange sync failed", slog.String("error", err.Error()))
		}
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API router.
	apiRouter := api.NewRouter(eng, db, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start exchange watcher with SSE callback.
	if cfg.Archive.ExchangeDir != "" {
		g.Go(func() error {
			if err := archive.Watch(gCtx, db, cfg.Archive.ExchangeDir, logger, func(kind, name string) {
				broker.PublishDocEvent(kind, name)
			}); err != nil {
				logger.Warn("watcher stopped with error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
