// package models defines the data model for the WeiCopy client.
package models

import (
	"strings"
	"time"
)

// Item type values as reported by the server.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeFile  = "file"
)

// ClipboardItem represents a single entry on the shared clipboard.
//
// Content holds the text for text items; for image and file items it is a
// short description and the payload is fetched separately by ID.
type ClipboardItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Filename  string    `json:"filename,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsBinary reports whether the item's payload lives behind the file
// download endpoint rather than inline in Content.
func (i ClipboardItem) IsBinary() bool {
	return i.Type == TypeImage || i.Type == TypeFile
}

// DisplayName returns the label shown in lists: the filename for binary
// items, otherwise a single line of the text content.
func (i ClipboardItem) DisplayName() string {
	if i.IsBinary() && i.Filename != "" {
		return i.Filename
	}
	line := i.Content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// User represents the authenticated account returned by the server.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResponse is the payload returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// FilterItems returns the items matching itemType. An empty itemType keeps
// everything. Input order is preserved and the input slice is never mutated.
func FilterItems(items []ClipboardItem, itemType string) []ClipboardItem {
	if itemType == "" {
		return items
	}
	filtered := make([]ClipboardItem, 0, len(items))
	for _, item := range items {
		if item.Type == itemType {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
