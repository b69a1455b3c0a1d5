package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/leasehub/leasehub/internal/api/http"
	"github.com/leasehub/leasehub/internal/application/lifecycle"
	"github.com/leasehub/leasehub/internal/application/notify"
	"github.com/leasehub/leasehub/internal/application/reconcile"
	"github.com/leasehub/leasehub/internal/application/scheduler"
	"github.com/leasehub/leasehub/internal/config"
	"github.com/leasehub/leasehub/internal/infrastructure/postgres"
	"github.com/leasehub/leasehub/internal/infrastructure/sepay"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	store := postgres.NewStore(pool)
	gateway := sepay.NewClient(cfg.SepayBaseURL, cfg.SepayTimeout, logger)

	// services
	notifySvc := notify.NewService(store.Notifications(), logger)
	reconcileSvc := reconcile.NewService(store.PaymentConfigs(), gateway, cfg.SepayTxLimit, cfg.SepayTimeout, logger)
	lifecycleSvc := lifecycle.NewService(store, reconcileSvc, notifySvc, lifecycle.Config{
		DepositWindow: cfg.DepositWindow,
		StaleAfter:    cfg.StaleAfter,
	}, logger)

	sched := scheduler.New(lifecycleSvc, store.Contracts(), notifySvc, scheduler.Config{
		PendingInterval: cfg.PendingSweepInterval,
		DailyInterval:   cfg.DailySweepInterval,
		BatchLimit:      cfg.SweepBatchLimit,
		Concurrency:     cfg.SweepConcurrency,
	}, logger)

	// API server
	apiServer := httpapi.NewServer(lifecycleSvc, reconcileSvc, notifySvc)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	schedCtx, stopSched := context.WithCancel(ctx)
	go func() {
		if err := sched.Run(schedCtx); err != nil && schedCtx.Err() == nil {
			logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopSched()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
