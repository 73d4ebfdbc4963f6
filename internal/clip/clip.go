// Package clip provides access to the local system clipboard. A single
// backend built on golang.design/x/clipboard covers Linux, macOS and
// Windows; when no display environment is available (headless servers,
// containers) a no-op backend is returned instead so that commands which
// never touch the clipboard keep working.
package clip

// Item is a typed chunk of clipboard content.
type Item struct {
	MIME string
	Data []byte
}

// Backend is the interface satisfied by clipboard implementations.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard contents as typed items.
	// Returns nil, nil when the clipboard is empty or holds only
	// unsupported formats.
	Read() ([]Item, error)

	// Write sets the clipboard contents to the provided items.
	Write(items []Item) error

	// Watch returns a channel that receives a signal whenever the
	// clipboard changes. The channel is never closed; callers should
	// Read() when it fires.
	Watch() <-chan struct{}

	// Close releases resources held by the backend.
	Close()
}
