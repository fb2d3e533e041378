package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"budgetplan/internal/amqp"
	"budgetplan/internal/backend"
	"budgetplan/internal/cli"
	apphttp "budgetplan/internal/http"
	applog "budgetplan/internal/log"
	"budgetplan/internal/notify"
	"budgetplan/internal/services"
	"budgetplan/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	backendLog := logger.Logger.With(applog.FieldComponent, applog.ComponentBackend)
	result, err := backend.NewFactory(backendLog).Create(backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	planner, err := store.New(context.Background(), result.KV, store.UUIDSource{})
	if err != nil {
		logger.Error("Failed to load planner state", "error", err)
		os.Exit(1)
	}

	// AMQP is optional; mutations are committed locally either way
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without eventing", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	bus := notify.NewBus()
	defer bus.Close()

	// Surface notices in the server log
	notices, cancelNotices := bus.Subscribe()
	defer cancelNotices()
	go func() {
		for n := range notices {
			logger.Info("Notice", "level", string(n.Level), "title", n.Title, "detail", n.Detail)
		}
	}()

	svc := services.NewPlannerService(planner, publisher, bus, cfg.SnapshotLabel)
	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting budgetplan server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
