package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/weicopy/cli/internal/shared"
)

// AuthLogin signs in and persists the bearer token for later commands.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	password, err := r.resolvePassword(cmd)
	if err != nil {
		return err
	}

	user, err := r.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	r.logger.Info("session stored", "path", r.config.TokenPath())
	return r.writePlain("✓ Signed in as %s\n", user.Username)
}

// AuthRegister creates an account; the server signs the new user in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	password, err := r.resolvePassword(cmd)
	if err != nil {
		return err
	}

	user, err := r.auth.Register(ctx, username, password)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Account created for %s\n", user.Username)
}

// AuthLogout discards the stored session token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if _, ok := r.session.Token(); !ok {
		return r.writePlain("No active session\n")
	}
	if err := r.auth.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami validates the stored token against the server. A rejected
// token is cleared so the next command starts from a clean state.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	user, err := r.session.Validate(ctx, r.auth)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	return r.writePlain("Signed in as %s (id %s)\n", user.Username, user.ID)
}

func (r *Runner) resolvePassword(cmd *cli.Command) (string, error) {
	if password := cmd.String("password"); password != "" {
		return password, nil
	}

	r.writePlain("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}
	return password, nil
}
