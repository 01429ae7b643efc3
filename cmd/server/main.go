package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/infra"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"
	"github.com/silvioaquino/Gestao-PDV/internal/router"
	"github.com/silvioaquino/Gestao-PDV/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable: queues disabled, idempotency keys stored in the database")
		rdb = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Printer ──────────────────────────────────────────────────────────────
	p, err := printer.New(cfg.PrinterType, cfg.PrinterUSBPath, cfg.PrinterAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid printer configuration")
	}
	printerCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	impressora := worker.NewImpressora(p, printerCB, cfg.PrinterWidth)

	services := router.NewServices(cfg, db, rdb)

	// ── Idempotency store ────────────────────────────────────────────────────
	var idem repository.IdempotenciaRepository
	if rdb != nil {
		idem = repository.NewRedisIdempotenciaRepository(rdb)
	} else {
		dbIdem := repository.NewIdempotenciaRepository(db)
		worker.StartLimpezaCron(ctx, dbIdem, 0)
		idem = dbIdem
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	var pool *worker.Pool
	if rdb != nil {
		pool = worker.StartWorkerPool(ctx, rdb, worker.Handlers{
			worker.JobImpressao: worker.NewImpressaoWorker(services.Caixa, impressora),
			worker.JobRelatorio: worker.NewRelatorioWorker(services.Caixa, infra.NewMailer(cfg), cfg.PDFStoragePath),
		}, cfg.WorkerPoolSize)
		logDLQ(ctx, rdb)
	}

	r := router.New(cfg, db, rdb, router.Deps{
		Services:     services,
		Impressora:   impressora,
		Idempotencia: idem,
		Stop:         ctx.Done(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("PDV backend listening on :%d", cfg.Port)
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
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

// logDLQ reports jobs left in the dead-letter queues by previous runs.
func logDLQ(ctx context.Context, rdb *redis.Client) {
	lens, err := worker.DLQLengths(ctx, rdb)
	if err != nil {
		log.Warn().Err(err).Msg("dlq: failed to read lengths")
		return
	}
	for queue, n := range lens {
		if n > 0 {
			log.Warn().Str("queue", queue).Int64("jobs", n).Msg("dlq: jobs awaiting inspection")
		}
	}
}
