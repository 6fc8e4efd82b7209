package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneta/internal/backend"
	"moneta/internal/config"
	apphttp "moneta/internal/http"
	mlog "moneta/internal/log"
	"moneta/internal/metrics"
	"moneta/internal/services"
	"moneta/internal/timezone"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := mlog.Setup(cfg.LogLevel, cfg.LogFormat, mlog.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", mlog.FieldError, err)
		os.Exit(1)
	}

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

	agg := services.NewLedgerAggregator(store)
	svc := apphttp.Services{
		Users:      services.NewUserService(store, tz),
		Categories: services.NewCategoryService(store),
		Ledger:     services.NewLedgerService(store, tz, cfg.DefaultPageSize),
		Budgets:    services.NewBudgetTracker(store, agg, tz, cfg.DefaultPageSize),
		Reports:    services.NewBalanceReporter(agg, tz),
	}

	m := metrics.New()
	srv := apphttp.NewServer(":"+cfg.Port, svc, tz, apphttp.Options{
		Logger:             logger.WithComponent(mlog.ComponentHTTP),
		Metrics:            m,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	root := http.NewServeMux()
	root.Handle("GET /metrics", m.Handler())
	root.Handle("/", srv.Handler)
	srv.Handler = root

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting moneta server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", tz.Location().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", mlog.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", mlog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
