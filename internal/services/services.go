// package services implements the HTTP clients for the WeiCopy server.
package services

import (
	"context"

	"github.com/weicopy/cli/internal/models"
)

// Credentials is the slice of the session store the HTTP layer needs:
// reading the current token before each request and discarding it when the
// server rejects it.
type Credentials interface {
	Token() (string, bool)
	Clear() error
}

// ClipboardAPI defines the clipboard operations offered by the server.
type ClipboardAPI interface {
	// List retrieves every clipboard item for the authenticated user,
	// newest first.
	List(ctx context.Context) ([]models.ClipboardItem, error)

	// Latest retrieves the most recent clipboard item.
	Latest(ctx context.Context) (*models.ClipboardItem, error)

	// AddText pushes a text snippet to the shared clipboard.
	AddText(ctx context.Context, text string) (*models.ClipboardItem, error)

	// AddFile uploads an arbitrary file.
	AddFile(ctx context.Context, filename string, data []byte) (*models.ClipboardItem, error)

	// AddImage uploads image bytes via the image endpoint.
	AddImage(ctx context.Context, filename string, data []byte) (*models.ClipboardItem, error)

	// FetchItem downloads the binary payload behind an image or file item.
	FetchItem(ctx context.Context, id string) (*Binary, error)

	// Delete removes an item. Deleting an item that is already gone is
	// not an error.
	Delete(ctx context.Context, id string) error
}

// Binary is a downloaded image or file payload.
type Binary struct {
	Data        []byte
	ContentType string
	Filename    string
}
