package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/shared"
)

type fakeAuth struct {
	user *models.User
	err  error
}

func (f *fakeAuth) Me(ctx context.Context) (*models.User, error) {
	return f.user, f.err
}

func TestStore(t *testing.T) {
	t.Run("empty store has no token", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "token.json"))
		if _, ok := store.Token(); ok {
			t.Error("expected no token in fresh store")
		}
	})

	t.Run("Set persists and reloads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		store := NewStore(path)

		if err := store.Set("abc123"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}

		token, ok := store.Token()
		if !ok || token != "abc123" {
			t.Errorf("expected abc123, got %q (ok=%v)", token, ok)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("token file should exist: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}

		reloaded := NewStore(path)
		token, ok = reloaded.Token()
		if !ok || token != "abc123" {
			t.Errorf("reloaded store: expected abc123, got %q (ok=%v)", token, ok)
		}
	})

	t.Run("Set rejects empty token", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Set(""); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Set creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "deep", "token.json")
		store := NewStore(path)
		if err := store.Set("abc123"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("token file should exist: %v", err)
		}
	})

	t.Run("Clear removes token and file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		store := NewStore(path)
		if err := store.Set("abc123"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}

		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error: %v", err)
		}
		if _, ok := store.Token(); ok {
			t.Error("token should be gone after Clear")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("token file should be removed")
		}

		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() should be a no-op, got %v", err)
		}
	})

	t.Run("corrupt token file leaves store empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		store := NewStore(path)
		if _, ok := store.Token(); ok {
			t.Error("corrupt file should not yield a token")
		}
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("no token short-circuits", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "token.json"))
		_, err := store.Validate(ctx, &fakeAuth{user: &models.User{ID: "1"}})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("valid token returns user", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Set("abc123"); err != nil {
			t.Fatal(err)
		}

		user, err := store.Validate(ctx, &fakeAuth{user: &models.User{ID: "1", Username: "wei"}})
		if err != nil {
			t.Fatalf("Validate() error: %v", err)
		}
		if user.Username != "wei" {
			t.Errorf("expected user wei, got %s", user.Username)
		}
	})

	t.Run("rejected token clears session", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		store := NewStore(path)
		if err := store.Set("stale"); err != nil {
			t.Fatal(err)
		}

		_, err := store.Validate(ctx, &fakeAuth{err: shared.ErrUnauthorized})
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if _, ok := store.Token(); ok {
			t.Error("session should be cleared after failed validation")
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("token file should be removed after failed validation")
		}
	})

	t.Run("network failure also clears session", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Set("abc123"); err != nil {
			t.Fatal(err)
		}

		netErr := errors.New("connection refused")
		_, err := store.Validate(ctx, &fakeAuth{err: netErr})
		if !errors.Is(err, netErr) {
			t.Errorf("expected wrapped network error, got %v", err)
		}
		if _, ok := store.Token(); ok {
			t.Error("session should be cleared when validation can't complete")
		}
	})
}
