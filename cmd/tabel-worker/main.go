package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tabel/internal/amqp"
	"tabel/internal/config"
	"tabel/internal/records/httpapi"
	"tabel/internal/storage"
	"tabel/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting tabel-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.DataURL == "" {
		logger.Error("DATA_URL is required for the import worker")
		os.Exit(1)
	}

	// The worker fills the local SQLite cache from the upstream report.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	source := httpapi.New(cfg.DataURL, cfg.FetchTimeout)
	importWorker := worker.NewImportWorker(source, repo, cfg.RefreshInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, import the report if the cache is still empty.
	if err := importWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup import check failed", "error", err)
		// Don't exit - the periodic refresh will retry
	}

	g, gctx := errgroup.WithContext(ctx)

	// Consume refresh requests published by the dashboard (optional).
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeRefresh(gctx, func(msg *amqp.RefreshMessage) error {
				return importWorker.HandleRefreshMessage(gctx, msg)
			})
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	} else {
		logger.Info("AMQP disabled - refresh requests from the dashboard will not be received")
	}

	// Periodic refresh on the configured interval.
	g.Go(func() error {
		return importWorker.Run(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
