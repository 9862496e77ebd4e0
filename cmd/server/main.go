package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tillpoint/internal/config"
	"tillpoint/internal/infra"
	"tillpoint/internal/repository"
	"tillpoint/internal/router"
	"tillpoint/internal/service"
	"tillpoint/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Composition root: the register service instance is shared between the
	// HTTP surface and the auto-close scheduler — there is exactly one owner
	// of the in-memory current register.
	registerRepo := repository.NewRegisterRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	notifier := infra.NewRedisNotifier(rdb)
	registerSvc := service.NewRegisterService(registerRepo, movementRepo, saleRepo, notifier)

	// Resume a register left open by a previous run before the scheduler
	// starts polling.
	if reg, err := registerSvc.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("startup refresh failed")
	} else if reg != nil {
		log.Info().Str("register_id", reg.ID.String()).Msg("resumed open register")
	}

	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	workerHandlers := &worker.WorkerHandlers{
		CloseReport: worker.NewEmailWorker(mailer, smtpCB, rdb),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartAutoClose(ctx, worker.AutoCloseConfig{
		Registers:     registerSvc,
		Settings:      infra.NewRedisSettings(rdb),
		DefaultCutoff: cfg.AutoCloseCutoff,
		Interval:      time.Duration(cfg.AutoCloseInterval) * time.Second,
		Dispatcher:    dispatcher,
		ReportEmail:   cfg.CloseReportEmail,
	})

	r := router.New(cfg, db, rdb, registerSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("TillPoint register service listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
