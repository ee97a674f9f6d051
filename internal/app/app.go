package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/contentpulse/internal/cache"
	"github.com/vadim/contentpulse/internal/cache/store"
	"github.com/vadim/contentpulse/internal/config"
	httpcontroller "github.com/vadim/contentpulse/internal/controller/http"
	"github.com/vadim/contentpulse/internal/database"
	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/policy"
	"github.com/vadim/contentpulse/internal/domain/analytics/scheduler"
	"github.com/vadim/contentpulse/internal/domain/analytics/service"
	"github.com/vadim/contentpulse/internal/httpx/upstream/contentapi"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	// Domain policy (interface for HTTP handlers)
	dashboardPolicy *policy.Policy

	// Background snapshot refresher
	refresher *scheduler.Scheduler

	// Infrastructure owned for shutdown
	pg         *pgxpool.Pool
	redisStore *store.Redis
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Initialize router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	// A cold dashboard request runs a full corpus scan; the request timeout
	// must outlive the compute deadline.
	r.Use(middleware.Timeout(cfg.Analytics.ComputeDeadline + 30*time.Second))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	// Initialize snapshot store backend
	snapshotStore, err := app.initSnapshotStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing snapshot store: %w", err)
	}

	// Initialize domain layers
	app.initDomains(snapshotStore)

	// Register routes
	app.registerRoutes()

	// Initialize HTTP server
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Initialize background refresher
	if cfg.Refresher.Enabled {
		app.refresher = scheduler.New(app.dashboardPolicy, cfg.Refresher.Interval, logger)
	}

	return app, nil
}

// initSnapshotStore initializes the configured durable snapshot backend
func (a *App) initSnapshotStore(ctx context.Context) (dao.SnapshotStore, error) {
	switch a.cfg.Store.Backend {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, a.cfg.Store.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		a.pg = pool
		return store.NewPostgres(ctx, pool)

	case "s3":
		return store.NewS3(store.S3Config{
			Endpoint:        a.cfg.Store.S3Endpoint,
			AccessKeyID:     a.cfg.Store.S3AccessKeyID,
			SecretAccessKey: a.cfg.Store.S3SecretAccessKey,
			Bucket:          a.cfg.Store.S3Bucket,
			Region:          a.cfg.Store.S3Region,
		}), nil

	case "redis":
		rs, err := store.NewRedis(ctx, a.cfg.Store.RedisAddr, a.cfg.Store.RedisPassword, a.cfg.Store.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.redisStore = rs
		return rs, nil

	default:
		return store.NewMemory(), nil
	}
}

// initDomains initializes domain layers (client, service, policy)
func (a *App) initDomains(snapshotStore dao.SnapshotStore) {
	client := contentapi.New(
		a.cfg.ContentAPI.SpaceID,
		a.cfg.ContentAPI.AccessToken,
		contentapi.WithBaseURL(a.cfg.ContentAPI.BaseURL),
		contentapi.WithEnvironment(a.cfg.ContentAPI.Environment),
		contentapi.WithHTTPClient(&http.Client{Timeout: a.cfg.ContentAPI.Timeout}),
	)
	repo := contentapi.NewRetrying(client, a.cfg.ContentAPI.RetryAttempts, a.cfg.ContentAPI.RetryInterval)

	resolver := service.NewResolver(repo, a.cfg.Cache.DirectoryTTL, a.logger)

	svc := service.New(repo, repo, resolver, service.Config{
		RecentlyPublishedDays: a.cfg.Analytics.RecentlyPublishedDays,
		NeedsUpdateMonths:     a.cfg.Analytics.NeedsUpdateMonths,
		TimeToPublishDays:     a.cfg.Analytics.TimeToPublishDays,
		TrackedContentTypes:   a.cfg.Analytics.TrackedContentTypes,
		ExcludedContentTypes:  a.cfg.Analytics.ExcludedContentTypes,
		ScanPageSize:          a.cfg.ContentAPI.ScanPageSize,
		BatchPageSize:         a.cfg.ContentAPI.BatchPageSize,
	}, a.logger)

	memo := cache.NewMemo(a.cfg.Cache.MemoSize, a.cfg.Cache.MemoTTL)
	snapshots := cache.NewSnapshotCache(snapshotStore, a.cfg.Cache.SnapshotTTL)

	a.dashboardPolicy = policy.New(
		svc,
		memo,
		snapshots,
		a.cfg.Analytics.ComputeDeadline,
		a.cfg.Analytics.DefaultRange,
		a.logger,
	)
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	// Health check
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	// API v1
	a.router.Route("/api/v1", func(r chi.Router) {
		handler := httpcontroller.NewAnalyticsHandler(a.dashboardPolicy)
		handler.RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	// Start refresher if enabled
	if a.refresher != nil {
		a.refresher.Start(ctx)
	}

	// Channel to receive errors from server
	errCh := make(chan error, 1)

	// Start HTTP server in goroutine
	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	// Graceful shutdown
	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	// Stop refresher
	if a.refresher != nil {
		a.refresher.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	// Close infrastructure
	if a.pg != nil {
		a.pg.Close()
	}
	if a.redisStore != nil {
		if err := a.redisStore.Close(); err != nil {
			a.logger.Warn("closing redis", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
