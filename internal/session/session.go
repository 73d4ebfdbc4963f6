// Package session persists the bearer token between runs and answers the
// single question every request path asks: is there a credential right now?
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/shared"
)

// WhoAmI is the slice of the auth service that Validate needs.
type WhoAmI interface {
	Me(ctx context.Context) (*models.User, error)
}

// Store holds the session token for the current user, backed by a JSON
// file so the session survives process restarts.
type Store struct {
	mu    sync.RWMutex
	path  string
	token *oauth2.Token
}

// NewStore creates a Store backed by the file at path. A missing or
// unreadable file leaves the store empty rather than failing; the first
// Set writes it.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return
	}
	if token.AccessToken != "" {
		s.token = &token
	}
}

// Token returns the current access token. The second return value is false
// when no session is active.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || s.token.AccessToken == "" {
		return "", false
	}
	return s.token.AccessToken, true
}

// Set stores the access token in memory and persists it to disk. The file
// is written via a temp file and rename so a crash never leaves a torn
// token behind.
func (s *Store) Set(accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = &oauth2.Token{AccessToken: accessToken}

	data, err := json.MarshalIndent(s.token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to chmod token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to persist token file: %w", err)
	}
	return nil
}

// Clear drops the in-memory token and removes the persisted file. Clearing
// an already-empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Validate confirms the stored token against the server. Any failure,
// network or otherwise, clears the session: a token that can't be
// confirmed is treated as invalid.
func (s *Store) Validate(ctx context.Context, auth WhoAmI) (*models.User, error) {
	if _, ok := s.Token(); !ok {
		return nil, shared.ErrNotAuthenticated
	}

	user, err := auth.Me(ctx)
	if err != nil {
		if clearErr := s.Clear(); clearErr != nil {
			return nil, fmt.Errorf("%w (and failed to clear session: %v)", err, clearErr)
		}
		return nil, err
	}
	return user, nil
}
