package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/khovp/giaokho/internal/app"
	"github.com/khovp/giaokho/internal/appsheet"
	"github.com/khovp/giaokho/internal/dispatch"
	"github.com/khovp/giaokho/internal/dispatch/export"
	dispatchhttp "github.com/khovp/giaokho/internal/dispatch/http"
	"github.com/khovp/giaokho/internal/observability"
	"github.com/khovp/giaokho/internal/shared"
	"github.com/khovp/giaokho/jobs"
	"github.com/khovp/giaokho/report"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var auditLogger *shared.AuditLogger
	if cfg.PGDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		auditLogger = shared.NewAuditLogger(pool)
	}

	metrics := observability.NewMetrics()

	feed := appsheet.NewClient(appsheet.Config{
		Region:    cfg.AppSheetRegion,
		AppID:     cfg.AppSheetAppID,
		AccessKey: cfg.AppSheetAccessKey,
		Table:     cfg.AppSheetTable,
		Timeout:   cfg.AppSheetTimeout,
	})

	store := dispatch.NewStore()
	cache := dispatch.NewCache(redisClient, cfg.CacheTTL)
	service := dispatch.NewService(store, feed, cache, auditLogger, metrics, logger)

	if err := cache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	if err := cache.SubscribeRefresh(ctx, service.Refresh); err != nil {
		logger.Warn("refresh listener", slog.Any("error", err))
	}

	if err := service.Refresh(ctx); err != nil {
		logger.Warn("initial feed refresh failed, starting empty", slog.Any("error", err))
	}

	renderer, err := export.NewSheetRenderer()
	if err != nil {
		logger.Error("parse sheet template", slog.Any("error", err))
		os.Exit(1)
	}

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	dispatchHandler := dispatchhttp.NewHandler(logger, service, renderer, reportClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		DispatchHandler: dispatchHandler,
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
