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

	"github.com/starford/linkorg/internal/api"
	"github.com/starford/linkorg/internal/index"
	"github.com/starford/linkorg/internal/mcpserver"
	"github.com/starford/linkorg/internal/noteservice"
	"github.com/starford/linkorg/internal/sse"
	"github.com/starford/linkorg/internal/storage"
)

// App holds the collaborators shared by every entry point.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Store   *storage.FS
	DB      *index.DB // nil when the index is disabled
	Service *noteservice.Service
	Events  *sse.Broker

	version string
}

// Open builds the application from opts: storage over the notes directory,
// the SQLite index when configured, and the note service on top.
func Open(opts ...Option) (*App, error) {
	a := &application{version: "dev"}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := a.config

	logger := a.logger
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.App)
	}

	// Ensure notes directory exists.
	if err := os.MkdirAll(cfg.Notes.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Notes.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, Store: store, version: a.version}

	var idx index.DocumentIndex
	if cfg.SQLite.Enabled() {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		app.DB = db
		idx = db
	}

	app.Service = noteservice.NewService(store, idx, cfg.Index.Workers, logger)
	app.Events = sse.NewBroker(2 * time.Second)
	app.Service.OnReindex(app.publishReport)
	return app, nil
}

// Close stops the event broker and releases the index connection, if any.
func (a *App) Close() error {
	a.Events.Close()
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) publishReport(r *index.Report) {
	failed := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		failed[i] = f.Path
	}
	err := a.Events.PublishSync(sse.SyncSummary{
		RunID:   r.RunID,
		Indexed: r.IndexedPaths,
		Removed: r.RemovedPaths,
		Failed:  failed,
	})
	if err != nil {
		a.Logger.Warn("publish sync event failed", slog.String("error", err.Error()))
	}
}

// initialSync brings the index up to date when configured to. Failures are
// logged and never stop startup.
func (a *App) initialSync(ctx context.Context) {
	if a.DB == nil || !a.Config.Index.SyncOnStart {
		return
	}
	if _, err := a.Service.Reindex(ctx); err != nil {
		a.Logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
}

// Handler builds the HTTP handler: health checks plus the API under /api.
func (a *App) Handler() http.Handler {
	cfg := a.Config
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if a.DB != nil {
			if err := a.DB.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(a.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, a.Events, a.Logger))
	return r
}

// Run starts the HTTP server with the given options and blocks until a
// shutdown signal arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app, err := Open(opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	logger := app.Logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Notes.Dir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	app.initialSync(ctx)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

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
		defer signal.Stop(quit)

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

// RunMCP serves the MCP tools over stdio. Logs go to stderr so stdout
// stays reserved for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := Open(opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	app.initialSync(ctx)
	app.Logger.Info("Starting MCP server on stdio")
	return mcpserver.New(app.Service, app.version).ServeStdio()
}
