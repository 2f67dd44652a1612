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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/gaocuixia/running-journal/internal/api"
	"github.com/gaocuixia/running-journal/internal/journal"
	"github.com/gaocuixia/running-journal/internal/mcpserver"
	"github.com/gaocuixia/running-journal/internal/persist"
	"github.com/gaocuixia/running-journal/internal/sse"
	"github.com/gaocuixia/running-journal/internal/web"
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

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend", cfg.Data.Backend),
		slog.String("data_path", cfg.Data.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the data directory exists.
	if err := os.MkdirAll(filepath.Dir(cfg.Data.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Open the persistence backend and load the journal.
	backend, err := persist.Open(cfg.Data.Backend, cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("init backend: %w", err)
	}
	defer backend.Close()

	store := journal.New(backend, logger)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	// MCP mode replaces the HTTP surface entirely.
	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(store).ServeStdio()
	}

	// SSE broker, fed by store mutations.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	store.OnChange(func(kind, collection string, id int64) {
		broker.PublishRecordEvent(kind, collection, id)
	})

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

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	// Static front-end for everything else.
	if cfg.Web.Root != "" {
		r.Handle("/*", web.NewHandler(cfg.Web.Root))
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the journal blob for external edits (file backend only).
	if fileBackend, ok := backend.(*persist.File); ok {
		g.Go(func() error {
			return persist.Watch(gCtx, fileBackend, logger, func(snap persist.Snapshot) {
				store.ReplaceAll(snap)
				broker.Publish(sse.Event{Type: "journal.reloaded", Data: map[string]string{}})
			})
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
