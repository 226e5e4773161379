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

	"github.com/starford/ledgr/internal/api"
	"github.com/starford/ledgr/internal/articleservice"
	"github.com/starford/ledgr/internal/mcpserver"
	"github.com/starford/ledgr/internal/notion"
	"github.com/starford/ledgr/internal/sse"
	"github.com/starford/ledgr/internal/storage"
	"github.com/starford/ledgr/internal/termrender"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newSource builds the configured content source unless one was injected.
func (a *application) newSource(logger *slog.Logger) (storage.Source, error) {
	if a.source != nil {
		return a.source, nil
	}
	cfg := a.config
	switch cfg.Content.Source {
	case SourceExport:
		if err := os.MkdirAll(cfg.Content.ExportDir, 0o755); err != nil {
			return nil, fmt.Errorf("create export dir: %w", err)
		}
		return storage.NewExport(cfg.Content.ExportDir, cfg.Notion.StatusProperty, cfg.Notion.StatusPublished, logger)
	default:
		return notion.New(cfg.Notion.Options(), nil), nil
	}
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_source", cfg.Content.Source),
		slog.Duration("revalidate", cfg.Content.Revalidate),
		slog.String("log_level", cfg.App.LogLevel.String()))

	src, err := app.newSource(logger)
	if err != nil {
		return fmt.Errorf("init content source: %w", err)
	}
	svc := articleservice.NewService(src, cfg.Content.Revalidate, logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	watchExport := cfg.Content.Source == SourceExport && app.source == nil
	if !watchExport {
		// Polled sources only learn about changes by diffing refreshes.
		svc.OnChange(broker.PublishArticleEvent)
	}

	if n, err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	} else {
		logger.Info("articles loaded", slog.Int("count", n))
	}

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
		if !svc.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if watchExport {
		// Export directory changes are pushed straight to subscribers.
		g.Go(func() error {
			return storage.Watch(gCtx, cfg.Content.ExportDir, logger, func(kind, id string) {
				svc.Invalidate()
				broker.PublishArticleEvent(kind, id)
			})
		})
	} else if cfg.Content.Revalidate > 0 {
		g.Go(func() error {
			refreshLoop(gCtx, svc, cfg.Content.Revalidate, logger)
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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so background loops stop with the server.
var errShutdown = errors.New("shutdown")

// refreshLoop revalidates the list snapshot every interval so that change
// events reach subscribers without waiting for a list request.
func refreshLoop(ctx context.Context, svc *articleservice.Service, every time.Duration, logger *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := svc.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RenderArticle fetches one article and prints it to the configured output.
func RenderArticle(ctx context.Context, id string, ropts termrender.Options, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))

	src, err := app.newSource(logger)
	if err != nil {
		return fmt.Errorf("init content source: %w", err)
	}
	svc := articleservice.NewService(src, app.config.Content.Revalidate, logger)

	d, err := svc.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("get article %s: %w", id, err)
	}
	return termrender.Render(app.out, d.Article, d.Blocks, ropts)
}

// ServeMCP serves the MCP tools over stdin/stdout. Logs go to stderr since
// stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	src, err := app.newSource(logger)
	if err != nil {
		return fmt.Errorf("init content source: %w", err)
	}
	svc := articleservice.NewService(src, app.config.Content.Revalidate, logger)

	logger.Info("MCP server starting", slog.String("content_source", app.config.Content.Source))
	return mcpserver.New(svc, app.version).ServeStdio()
}
