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

	"github.com/meridianmar/meridian/internal/app"
	"github.com/meridianmar/meridian/internal/billing"
	"github.com/meridianmar/meridian/internal/ledger"
	"github.com/meridianmar/meridian/internal/observability"
	"github.com/meridianmar/meridian/internal/partners"
	"github.com/meridianmar/meridian/internal/platform/cache"
	"github.com/meridianmar/meridian/internal/platform/db"
	"github.com/meridianmar/meridian/internal/roles"
	"github.com/meridianmar/meridian/internal/treasury"
	"github.com/meridianmar/meridian/internal/users"
	"github.com/meridianmar/meridian/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	treasuryRepo := treasury.NewRepository(dbpool)
	treasuryService := treasury.NewService(treasuryRepo)
	treasuryHandler := treasury.NewHandler(logger, treasuryService)

	ledgerCache := ledger.NewCache(redisClient, cfg.LedgerCacheTTL)
	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, ledger.AllocationPolicy{RejectOverpayment: cfg.RejectOverpayment})
	ledgerService.SetCashRecorder(treasuryService)
	ledgerService.SetCacheBumper(ledgerCache)
	ledgerService.SetLogger(logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, ledgerCache)

	billingRepo := billing.NewRepository(dbpool)
	billingService := billing.NewService(billingRepo)
	billingService.SetCacheBumper(ledgerCache)
	billingHandler := billing.NewHandler(logger, billingService)

	partnersRepo := partners.NewRepository(dbpool)
	partnersService := partners.NewService(partnersRepo)
	partnersHandler := partners.NewHandler(logger, partnersService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		LedgerHandler:   ledgerHandler,
		BillingHandler:  billingHandler,
		PartnersHandler: partnersHandler,
		TreasuryHandler: treasuryHandler,
		UsersHandler:    usersHandler,
		RolesHandler:    rolesHandler,
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
