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
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/service"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/syncer"
	"github.com/starford/raido/internal/undo"
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
		slog.String("cache_dir", cfg.Cache.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("remote_configured", cfg.Remote.Configured()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize local document cache.
	dir, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	// Initialize SQLite search index.
	db, err := search.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init search index: %w", err)
	}
	defer db.Close()

	// Remote store client (nil when not configured).
	var remoteClient *remote.Client
	if cfg.Remote.Configured() {
		remoteClient = remote.NewClient(cfg.Remote.URL, cfg.Remote.Token)
	}

	// SSE broker carries the cross-page refresh signal.
	broker := sse.NewBroker()
	defer broker.Close()

	// Undo ledger, sync coordinator, and the service tying them together.
	ledger := undo.NewLedger(cfg.Undo.Grace())
	defer ledger.Close()

	// The snapshot closure resolves svc lazily: pushes only fire after
	// mutations, well past construction.
	var svc *service.Service
	coord := syncer.New(dir, remoteClient, logger, cfg.Sync.Debounce(), func() models.Document {
		return svc.Snapshot()
	})
	coord.SetStatusFunc(func(pushErr error) {
		if pushErr != nil {
			broker.Publish(sse.EventPushFailed)
		}
	})
	defer coord.Close()

	svc = service.New(coord, ledger, db, cfg.App.LocaleTag(), logger)

	// The broker subscribes to the coordinator's change signal; every
	// committed mutation surfaces as one payload-less SSE event.
	unsubscribe := coord.Subscribe(func() {
		broker.Publish(sse.EventDataChanged)
	})
	defer unsubscribe()

	// Initial load: remote-first when configured, local cache otherwise.
	svc.Load(ctx)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the shared cache directory: a second process writing it
	// triggers a reload from the authoritative source plus a broadcast.
	g.Go(func() error {
		return cache.Watch(gCtx, dir, logger, coord.OwnChecksum, func(string) {
			svc.Reload(gCtx)
		})
	})

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

		// Final flush so the last quiet-window of edits still reaches
		// the remote; failures are logged and abandoned as usual.
		coord.Flush(shutdownCtx)

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
