package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the template when it is missing and prepares local storage.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, created, err := r.bootstrapConfig(configPath)
	if err != nil {
		return err
	}
	if err := shared.ApplyEnv(config); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	r.logger.Info("initializing storage", "driver", config.Storage.Driver, "path", config.Storage.Path)
	storage, err := repositories.Open(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer storage.Close()

	verb := "Using"
	if created {
		verb = "Created"
	}
	r.writePlain("✓ %s configuration: %s\n", verb, configPath)
	r.writePlain("✓ Storage (%s): %s\n", config.Storage.Driver, shared.ExpandPath(config.Storage.Path))
	if versioned, ok := storage.(interface{ SchemaVersion() (int, error) }); ok {
		if v, err := versioned.SchemaVersion(); err == nil {
			r.writePlain("✓ Schema version: %04d\n", v)
		}
	}

	r.writePlainln("\nNext steps:")
	r.writePlain("  1. Point api.base_url at your backend (currently %s)\n", config.API.BaseURL)
	r.writePlainln("  2. Run 'shelf auth login' or 'shelf auth register'")
	return nil
}

// bootstrapConfig loads path, creating it from the embedded template first when absent.
// Unreadable files fall back to defaults with a warning.
func (r *Runner) bootstrapConfig(path string) (*shared.Config, bool, error) {
	created := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "path", path, "error", err)
			return shared.DefaultConfig(), false, nil
		}
		r.logger.Info("config file created", "path", path)
		created = true
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		return shared.DefaultConfig(), created, nil
	}
	return config, created, nil
}
