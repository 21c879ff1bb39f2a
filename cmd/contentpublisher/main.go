package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ContentPublisher/internal/app"
	"ContentPublisher/internal/config"
	"ContentPublisher/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("application close failed", "error", err)
		}
	}()

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		stop()
		_ = application.Close()
		os.Exit(1)
	}
}
