package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/lawdesk/internal/client/cli"
	"github.com/dmitrijs2005/lawdesk/internal/client/config"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error(context.Background(), "shutdown", "error", err)
		}
	}()

	app.Run(ctx)
}
