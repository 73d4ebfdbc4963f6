package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/shared"
)

// AuthService handles login, registration and session validation.
type AuthService struct {
	client *Client
	creds  SessionWriter
}

// SessionWriter extends Credentials with the ability to install a new
// token after login.
type SessionWriter interface {
	Credentials
	Set(token string) error
}

// NewAuthService creates an AuthService sharing the given client's
// transport and rate limiter.
func NewAuthService(client *Client, creds SessionWriter) *AuthService {
	return &AuthService{client: client, creds: creds}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges a username and password for a bearer token and installs
// it in the session store.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	result, err := a.postCredentials(ctx, "/api/auth/login", username, password)
	if err != nil {
		return nil, err
	}

	if result.Token == "" {
		return nil, fmt.Errorf("%w: server returned no token", shared.ErrAuthFailed)
	}
	if err := a.creds.Set(result.Token); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &result.User, nil
}

// Register creates a new account. The server signs the user in on
// success, so the returned token is installed the same way Login does.
func (a *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	result, err := a.postCredentials(ctx, "/api/auth/register", username, password)
	if err != nil {
		return nil, err
	}

	if result.Token != "" {
		if err := a.creds.Set(result.Token); err != nil {
			return nil, fmt.Errorf("failed to store session: %w", err)
		}
	}
	return &result.User, nil
}

func (a *AuthService) postCredentials(ctx context.Context, path, username, password string) (*models.LoginResponse, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrValidation)
	}

	payload, err := json.Marshal(credentialsRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := a.client.doRequest(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}

	var result models.LoginResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the account behind the current session token.
func (a *AuthService) Me(ctx context.Context) (*models.User, error) {
	resp, err := a.client.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, "")
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := decodeJSON(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout discards the local session. The server holds no per-session
// state beyond the token itself, so no request is made.
func (a *AuthService) Logout() error {
	return a.creds.Clear()
}
