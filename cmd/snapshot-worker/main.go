package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetplan/internal/amqp"
	"budgetplan/internal/cli"
	"budgetplan/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting snapshot-worker")

	kv := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer kv.Close()

	snapshots := services.NewSnapshotService(kv, cfg.SnapshotDir, cfg.SnapshotLabel)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Snapshot once on startup so a fresh deployment has a restore point
	if path, err := snapshots.WriteSnapshot(ctx); err != nil {
		logger.Error("Startup snapshot failed", "error", err)
	} else {
		logger.Info("Startup snapshot written", "path", path)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Consume change messages and snapshot on every committed mutation
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
		} else {
			defer amqpClient.Close()
			g.Go(func() error {
				return amqpClient.ConsumeBudgetChanged(gctx, func(msg *amqp.BudgetChangedMessage) error {
					path, err := snapshots.WriteSnapshot(gctx)
					if err != nil {
						return err
					}
					logger.Info("Snapshot after change",
						"path", path,
						"month_key", msg.MonthKey,
						"revision", msg.Revision)
					return nil
				})
			})
		}
	} else {
		logger.Info("AMQP disabled - falling back to interval snapshots only")
	}

	// Interval snapshots cover mutations whose messages were lost
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SnapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if _, err := snapshots.WriteSnapshot(gctx); err != nil {
					logger.Error("Interval snapshot failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Snapshot worker stopped gracefully")
}
