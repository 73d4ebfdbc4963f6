package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/weicopy/cli/internal/shared"
)

// Setup creates the config file from the embedded template and
// initializes the local snapshot cache.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	r.config = config

	cachePath := config.CachePath()
	if cachePath == "" {
		r.logger.Info("cache disabled, skipping database setup")
		return r.writePlain("✓ Setup complete (no cache configured)\n")
	}

	r.logger.Info("initializing cache", "path", cachePath)

	cache, closeCache, err := r.openCache()
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer closeCache()

	// schema creation happens in the constructor; a quick read proves
	// the file is usable
	if _, err := cache.All(); err != nil {
		return fmt.Errorf("cache sanity check failed: %w", err)
	}

	r.logger.Infof("setup complete for cache: %v", cachePath)
	return r.writePlain("✓ Setup complete\n")
}
