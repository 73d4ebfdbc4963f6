package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/weicopy/cli/internal/services"
	"github.com/weicopy/cli/internal/shared"
)

// Fetcher is the slice of the clipboard API the loader needs.
type Fetcher interface {
	FetchItem(ctx context.Context, id string) (*services.Binary, error)
}

// Loader materializes binary clipboard payloads into temp files for
// display. Each viewing slot holds a [Handle]; loading a new item through
// a handle cancels the previous in-flight fetch and releases the
// superseded file exactly once.
type Loader struct {
	fetcher Fetcher
	dir     string
	logger  *log.Logger
}

// NewLoader creates a Loader writing payload files under dir, defaulting
// to the system temp directory.
func NewLoader(fetcher Fetcher, dir string, logger *log.Logger) *Loader {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Loader{fetcher: fetcher, dir: dir, logger: logger}
}

// NewHandle creates a viewing slot. The handle owns at most one
// materialized file at a time.
func (l *Loader) NewHandle() *Handle {
	return &Handle{loader: l}
}

// FetchOriginal downloads a payload without touching any handle, for
// one-shot saves to a user-chosen location.
func (l *Loader) FetchOriginal(ctx context.Context, id string) (*services.Binary, error) {
	return l.fetcher.FetchItem(ctx, id)
}

// Handle is one viewing slot. Load replaces its contents; Release frees
// them. Both are safe to call concurrently with an in-flight Load.
type Handle struct {
	loader *Loader

	mu       sync.Mutex
	cancel   context.CancelFunc
	path     string
	released bool
}

// Load fetches the payload behind itemID and returns the path of the
// materialized file. A Load issued while a previous one is in flight
// cancels it; the superseded call returns the cancellation error and its
// file, if it was already written, is removed.
func (h *Handle) Load(ctx context.Context, itemID string) (string, error) {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return "", fmt.Errorf("%w: handle released", shared.ErrFetchFailed)
	}
	if h.cancel != nil {
		h.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.mu.Unlock()

	bin, err := h.loader.fetcher.FetchItem(fetchCtx, itemID)
	if err != nil {
		return "", err
	}

	path, err := h.loader.materialize(bin)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	if h.released || fetchCtx.Err() != nil {
		// superseded or released while fetching; this file loses
		h.mu.Unlock()
		os.Remove(path)
		if h.released {
			return "", fmt.Errorf("%w: handle released", shared.ErrFetchFailed)
		}
		return "", fetchCtx.Err()
	}
	old := h.path
	h.path = path
	h.mu.Unlock()

	if old != "" {
		os.Remove(old)
	}
	return path, nil
}

// Path returns the currently materialized file, or "" when nothing is
// loaded.
func (h *Handle) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.path
}

// Release cancels any in-flight fetch and removes the materialized file.
// Releasing twice is a no-op.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	path := h.path
	h.path = ""
	h.mu.Unlock()

	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.loader.logger.Warn("failed to remove payload file", "path", path, "err", err)
		}
	}
}

// materialize writes a payload to a uniquely named file in the loader's
// directory, picking an extension from the filename or content type.
func (l *Loader) materialize(bin *services.Binary) (string, error) {
	if err := os.MkdirAll(l.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create payload directory: %w", err)
	}

	name := shared.GenerateID() + payloadExt(bin)
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, bin.Data, 0600); err != nil {
		return "", fmt.Errorf("failed to write payload file: %w", err)
	}
	return path, nil
}

func payloadExt(bin *services.Binary) string {
	if bin.Filename != "" {
		if ext := filepath.Ext(bin.Filename); ext != "" {
			return ext
		}
	}
	if idx := strings.Index(bin.ContentType, "/"); idx >= 0 && idx+1 < len(bin.ContentType) {
		sub := bin.ContentType[idx+1:]
		if semi := strings.IndexByte(sub, ';'); semi >= 0 {
			sub = sub[:semi]
		}
		if sub != "" && sub != "octet-stream" {
			return "." + sub
		}
	}
	return ""
}
