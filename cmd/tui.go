package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/weicopy/cli/internal/clip"
	"github.com/weicopy/cli/internal/shared"
	"github.com/weicopy/cli/internal/tasks"
	"github.com/weicopy/cli/internal/ui"
)

// TUI launches the interactive clipboard browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil {
		return fmt.Errorf("%w: client not initialized", shared.ErrServiceUnavailable)
	}
	if _, ok := r.session.Token(); !ok {
		return shared.ErrNotAuthenticated
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/weicopy-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	var store tasks.SnapshotStore
	if cache, closeCache, err := r.openCache(); err == nil {
		defer closeCache()
		store = cache
	} else {
		r.logger.Debug("running without cache", "err", err)
	}

	backend := clip.New(r.logger)
	defer backend.Close()

	poller := tasks.NewPoller(r.client, store, r.config.PollInterval(), r.logger)
	router := tasks.NewRouter(r.client, r.logger)
	loader := tasks.NewLoader(r.client, "", r.logger)

	model := ui.NewModel(ctx, r.client, poller, router, loader, backend)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
