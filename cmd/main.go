package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if p := os.Getenv("SHELF_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	if err := shared.ApplyEnv(config); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	var storage repositories.Storage
	if err := config.Validate(); err != nil {
		logger.Warn("invalid configuration, only setup is available", "error", err)
	} else if s, err := repositories.Open(config.Storage); err != nil {
		logger.Warn("failed to open storage, only setup is available", "error", err)
	} else {
		storage = s
	}

	runner, err := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		Storage:     storage,
		Logger:      logger,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	})
	if err != nil {
		logger.Fatalf("failed to initialize: %v", err)
	}
	defer runner.Close()

	app := &cli.Command{
		Name:     "shelf",
		Usage:    "Track the books you read from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		exit(logger, err)
	}
}

func exit(logger *log.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("not implemented")
		os.Exit(0)
	case errors.Is(err, shared.ErrCancelled):
		logger.Warn("cancelled")
		os.Exit(130)
	default:
		logger.Fatalf("application error: %v", err)
	}
}
