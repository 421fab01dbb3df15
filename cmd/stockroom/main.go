package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stockroom-ims/stockroom/cmd/stockroom/cli"
	"github.com/stockroom-ims/stockroom/internal/analytics"
	analytichttp "github.com/stockroom-ims/stockroom/internal/analytics/http"
	"github.com/stockroom-ims/stockroom/internal/app"
	"github.com/stockroom-ims/stockroom/internal/auth"
	"github.com/stockroom-ims/stockroom/internal/inventory"
	"github.com/stockroom-ims/stockroom/internal/locations"
	"github.com/stockroom-ims/stockroom/internal/masterdata/categories"
	"github.com/stockroom-ims/stockroom/internal/masterdata/products"
	"github.com/stockroom-ims/stockroom/internal/masterdata/reasons"
	"github.com/stockroom-ims/stockroom/internal/masterdata/suppliers"
	"github.com/stockroom-ims/stockroom/internal/observability"
	"github.com/stockroom-ims/stockroom/internal/platform/cache"
	"github.com/stockroom-ims/stockroom/internal/platform/db"
	"github.com/stockroom-ims/stockroom/internal/shared"
	"github.com/stockroom-ims/stockroom/internal/view"
	"github.com/stockroom-ims/stockroom/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobsCLI(ctx, cfg, logger, os.Args[2:]))
	}

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("stockroom stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func runJobsCLI(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	jobsCLI := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() {
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
	}()
	if err := jobsCLI.Run(ctx, args, os.Stdout); err != nil {
		logger.Error("jobs cli", slog.Any("error", err))
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	txm := db.NewTxManager(pool)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "stockroom_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	templates, err := view.NewEngine()
	if err != nil {
		return err
	}
	pages := view.Responder{Templates: templates, CSRF: csrfManager, Logger: logger}
	metrics := observability.NewMetrics()

	authService := auth.NewService(auth.NewRepository(txm), shared.UTCNow)
	if err := authService.EnsureDefaultAdmin(ctx, logger); err != nil {
		return err
	}

	reasonService := reasons.NewService(reasons.NewRepository(txm))
	inventoryService := inventory.NewService(inventory.NewRepository(txm), reasonService, inventory.ServiceConfig{
		MaxAttempts: cfg.StockRetryMax,
		Logger:      logger,
		Metrics:     metrics,
	})
	categoryService := categories.NewService(categories.NewRepository(txm), shared.UTCNow)
	supplierService := suppliers.NewService(suppliers.NewRepository(txm), shared.UTCNow)
	productService := products.NewService(products.NewRepository(txm), txm, inventoryService, shared.UTCNow)
	analyticsService := analytics.NewService(analytics.NewRepository(txm), shared.UTCNow, cfg.LowStockThreshold)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		HealthChecks: map[string]app.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		AuthHandler:      auth.NewHandler(logger, authService, pages, sessionManager),
		DashboardHandler: analytichttp.NewHandler(logger, analyticsService, pages),
		CategoryHandler:  categories.NewHandler(logger, categoryService, pages),
		SupplierHandler:  suppliers.NewHandler(logger, supplierService, pages),
		ProductHandler:   products.NewHandler(logger, productService, categoryService, supplierService, pages),
		ReasonHandler:    reasons.NewHandler(logger, reasonService, pages),
		StockHandler:     inventory.NewHandler(logger, inventoryService, productService, pages),
		LocationHandler:  locations.NewHandler(logger, locations.NewRepository(txm)),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
