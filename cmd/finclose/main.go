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

	"github.com/finclose/finclose/internal/app"
	"github.com/finclose/finclose/internal/consol"
	consolhttp "github.com/finclose/finclose/internal/consol/http"
	"github.com/finclose/finclose/internal/elimination"
	eliminationhttp "github.com/finclose/finclose/internal/elimination/http"
	"github.com/finclose/finclose/internal/ledger"
	ledgerhttp "github.com/finclose/finclose/internal/ledger/http"
	"github.com/finclose/finclose/internal/observability"
	"github.com/finclose/finclose/internal/platform/cache"
	"github.com/finclose/finclose/internal/platform/db"
	"github.com/finclose/finclose/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, queue features degraded", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	if err := consolhttp.SetupCacheMetrics(metrics.Registerer()); err != nil {
		logger.Warn("register cache metrics", slog.Any("error", err))
	}
	consolhttp.SetStatementCacheTTL(cfg.ReportCacheTTL)

	consolRepo := consol.NewRepository(pool)
	consolService := consol.NewService(consolRepo, logger)
	consolHandler := consolhttp.NewHandler(logger, consolService, consolRepo)

	var jobClient *jobs.Client
	if redisClient != nil {
		jobClient, err = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("init job client", slog.Any("error", err))
		} else {
			defer func() {
				if err := jobClient.Close(); err != nil {
					logger.Warn("job client close", slog.Any("error", err))
				}
			}()
		}
	}
	var enqueuer eliminationhttp.RefreshEnqueuer
	var ledgerEnqueuer ledgerhttp.RefreshEnqueuer
	if jobClient != nil {
		enqueuer = jobClient
		ledgerEnqueuer = jobClient
	}

	eliminationRepo := elimination.NewRepository(pool)
	eliminationService := elimination.NewService(eliminationRepo, logger)
	eliminationHandler := eliminationhttp.NewHandler(logger, eliminationService, enqueuer)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, logger)
	ledgerHandler := ledgerhttp.NewHandler(logger, ledgerService, ledgerEnqueuer)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ConsolHandler:      consolHandler,
		EliminationHandler: eliminationHandler,
		LedgerHandler:      ledgerHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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
