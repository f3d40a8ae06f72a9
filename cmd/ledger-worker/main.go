package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting ledger-worker")

	mirrorConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration", "error", err)
		os.Exit(1)
	}
	if mirrorConfig.Type == backend.MirrorNone {
		logger.Info("Spreadsheet mirror disabled, nothing to do")
		return
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	wiring, err := cli.WireServices(context.Background(), cfg, repo, nil)
	if err != nil {
		logger.Error("Failed to wire services", "error", err)
		os.Exit(1)
	}

	mirror, err := backend.NewFactory(logger).CreateMirror(context.Background(), mirrorConfig)
	if err != nil {
		logger.Error("Failed to create mirror", "error", err, "backend", mirrorConfig.Type)
		os.Exit(1)
	}
	if mirror.Cleanup != nil {
		defer mirror.Cleanup()
	}

	syncWorker := worker.NewSyncWorker(wiring.Ledger, mirror.Mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	resync := func(ctx context.Context) {
		today := core.DateOf(time.Now())
		if _, err := syncWorker.Resync(ctx, core.AddMonths(today, -cfg.ResyncMonths), today); err != nil && ctx.Err() == nil {
			logger.Error("Resync failed", "error", err)
		}
	}

	// Rows whose events were lost while the worker was down.
	logger.Info("Performing startup resync", "months", cfg.ResyncMonths)
	resync(ctx)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := cli.InitPublisher(logger, cfg)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.Consume(gctx, syncWorker.HandleEvent)
		})
	} else {
		logger.Info("AMQP not configured, relying on periodic resync")
	}

	if cfg.ResyncInterval > 0 {
		g.Go(func() error {
			runResyncLoop(gctx, cfg, resync)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

func runResyncLoop(ctx context.Context, cfg *config.Config, resync func(context.Context)) {
	ticker := time.NewTicker(cfg.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resync(ctx)
		}
	}
}
