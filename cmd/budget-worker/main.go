package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneta/internal/amqp"
	"moneta/internal/backend"
	"moneta/internal/config"
	mlog "moneta/internal/log"
	"moneta/internal/metrics"
	"moneta/internal/services"
	"moneta/internal/timezone"
)

const amqpDialAttempts = 5

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := mlog.Setup(cfg.LogLevel, cfg.LogFormat, mlog.ComponentScheduler)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", mlog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Starting budget-worker")

	tz, err := timezone.New(cfg.Timezone, nil)
	if err != nil {
		logger.Error("Failed to load timezone", mlog.FieldError, err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", mlog.FieldError, err)
		os.Exit(1)
	}
	store, err := backend.Open(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open store", mlog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.New()
	opts := []services.SchedulerOption{
		services.WithObserver(m),
		services.WithWorkers(cfg.SweepWorkers),
	}

	// Rollover events are best effort: without a broker the sweep still runs.
	if cfg.AMQPURL != "" {
		client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpDialAttempts)
		if err != nil {
			logger.Warn("AMQP unavailable, rollover events will not be published", mlog.FieldError, err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - rollover events will not be published")
	}

	scheduler := services.NewRecurrenceScheduler(store, tz, opts...)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving worker metrics", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", mlog.FieldError, err)
		}
	}()

	// Start blocks until ctx is cancelled by a shutdown signal.
	if err := scheduler.Start(ctx, cfg.SweepSchedule, cfg.SweepOnStartup); err != nil {
		logger.Error("Scheduler failed", mlog.FieldError, err, "schedule", cfg.SweepSchedule)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown error", mlog.FieldError, err)
	}
	logger.Info("Budget-worker shutdown complete")
}
