package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/weicopy/cli/internal/services"
	"github.com/weicopy/cli/internal/session"
	"github.com/weicopy/cli/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to parse config, using defaults", "path", configPath, "err", err)
		}
	}

	store := session.NewStore(config.TokenPath())
	httpClient := &http.Client{Timeout: config.Timeout()}
	client := services.NewClient(config.Server.BaseURL, httpClient, store, config.Server.RateLimit, logger)
	auth := services.NewAuthService(client, store)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client:     client,
		Auth:       auth,
		Session:    store,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "weicopy",
		Usage:    "Share your clipboard across devices",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrUnauthorized) || errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Fatal("not signed in, run `weicopy auth login`")
		}
		logger.Fatalf("application error: %v", err)
	}
}
