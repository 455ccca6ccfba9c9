package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridianmar/meridian/internal/app"
	jobmetrics "github.com/meridianmar/meridian/internal/jobs"
	"github.com/meridianmar/meridian/internal/ledger"
	"github.com/meridianmar/meridian/internal/platform/cache"
	"github.com/meridianmar/meridian/internal/platform/db"
	"github.com/meridianmar/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledgerCache := ledger.NewCache(redisClient, cfg.LedgerCacheTTL)
	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, ledger.AllocationPolicy{RejectOverpayment: cfg.RejectOverpayment})
	ledgerService.SetCacheBumper(ledgerCache)

	metrics := jobmetrics.NewMetrics(nil)
	overdueJob := jobs.NewOverdueScanJob(ledgerService, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueScan, Handler: overdueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.OverdueScanCron, Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
