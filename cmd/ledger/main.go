package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/cache"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/services"
)

const cacheSweepInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	publisher, err := cli.InitPublisher(logger, cfg)
	if err != nil {
		// The ledger works without events; the worker's resync catches up.
		logger.Error("Ledger events disabled", "error", err)
	}
	var eventPublisher services.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
		defer publisher.Close()
	}

	wiring, err := cli.WireServices(context.Background(), cfg, repo, eventPublisher)
	if err != nil {
		logger.Error("Failed to wire services", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Tags:      wiring.Tags,
		Ledger:    wiring.Ledger,
		Recurring: wiring.Recurring,
		Settings:  wiring.Settings,
		Reports:   wiring.Reports,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              repo.Ping,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	if wiring.TagCache != nil {
		janitor := cache.NewJanitor(wiring.TagCache)
		go janitor.Run(ctx, cacheSweepInterval)
	}

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		"export_backend", cfg.ExportBackend,
		"events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
