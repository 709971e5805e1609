package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/config"
	"github.com/ysh4me/bibliotheque-interactif/internal/covers"
	"github.com/ysh4me/bibliotheque-interactif/internal/drag"
	http_controllers "github.com/ysh4me/bibliotheque-interactif/internal/http"
	"github.com/ysh4me/bibliotheque-interactif/internal/metadata"
	"github.com/ysh4me/bibliotheque-interactif/internal/scheduler"
	"github.com/ysh4me/bibliotheque-interactif/internal/tasks"
)

const (
	eventBuffer       = 64
	lookupMinInterval = 100 * time.Millisecond
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}

	timeout := cfg.ShutdownTimeout()
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing writes after the server is gone
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// Run wires every component and serves the HTTP API.
func Run(cfg *config.Config, version string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting bibliotheque", zap.String("version", version))

	app, err := Open(cfg, version, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("error closing library", zap.Error(err))
		}
	}()

	// Journal every committed change
	consumeCtx, stopConsuming := context.WithCancel(context.Background())
	events, unsubscribe := app.Store.Subscribe(eventBuffer)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		app.Journal.Consume(consumeCtx, events)
	}()

	googleBooks := metadata.NewGoogleBooksClient(metadata.GoogleBooksConfig{
		BaseURL:     cfg.Search.BaseURL,
		APIKey:      cfg.Search.APIKey,
		MaxResults:  cfg.Search.MaxResults,
		Timeout:     cfg.Search.Timeout,
		MinInterval: lookupMinInterval,
	})
	if cfg.Search.APIKey == "" {
		logger.Warn("GOOGLE_BOOKS_API_KEY is not set, lookups use the anonymous quota")
	}
	lookup := metadata.NewCache(googleBooks, cfg.Search.CacheTTL, metadata.WithCacheLogger(logger))
	refresher := metadata.NewRefresher(lookup, app.Store, logger)

	routerCfg := http_controllers.RouterConfig{
		Library:  app.Store,
		Settings: app.Settings,
		Database: app.DB,
		Lookup:   lookup,
		Data:     app.Data,
		Journal:  app.Journal,
		Activity: app.Journal,
		Version:  version,
		Logger:   logger,
	}

	coverCache, err := covers.NewCache(cfg.Covers.Dir, logger)
	if err != nil {
		logger.Warn("failed to initialize cover cache", zap.String("dir", cfg.Covers.Dir), zap.Error(err))
	} else {
		refresher.SetCoverInvalidator(coverCache)
		routerCfg.CoverCache = coverCache
	}

	backups := scheduler.NewBackupScheduler(scheduler.Config{
		Enabled:  cfg.Backup.Enabled,
		Schedule: cfg.Backup.Schedule,
		Dir:      cfg.Backup.Dir,
		Keep:     cfg.Backup.Keep,
	}, app.Data,
		scheduler.WithStatusRecorder(app.Settings),
		scheduler.WithAuditLogger(app.Journal),
		scheduler.WithLogger(logger))

	backupCtx, stopBackups := context.WithCancel(context.Background())
	defer stopBackups()
	if err := backups.Start(backupCtx); err != nil {
		logger.Error("failed to start backup scheduler", zap.Error(err))
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:            cfg.Tasks.Workers,
			ReleaseAfter:       cfg.Tasks.ReleaseAfter,
			CleanupInterval:    cfg.Tasks.CleanupInterval,
			AuditRetentionDays: cfg.Audit.RetentionDays,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(tasks.Queues(tasks.Dependencies{
			Refresher:          refresher,
			AuditCleaner:       app.Journal,
			ArchivePruner:      app.Auditor,
			Backupper:          backups,
			AuditRetentionDays: cfg.Audit.RetentionDays,
			Logger:             logger,
		})...)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)
		routerCfg.TaskQueue = taskClient
	}

	view := &drag.Recorder{}
	routerCfg.Drag = drag.NewCoordinator(app.Store, drag.WithView(view), drag.WithLogger(logger))
	routerCfg.DragView = view

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		backups.Stop()

		unsubscribe()
		stopConsuming()
		select {
		case <-consumerDone:
		case <-ctx.Done():
			logger.Warn("event consumer did not stop before the shutdown deadline")
		}
	}

	return Serve(router, cfg, logger, onShutdown)
}
