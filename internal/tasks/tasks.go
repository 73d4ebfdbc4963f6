// package tasks implements the background operations of the WeiCopy client.
//
// The package contains three long-lived workers and one batch operation:
// [Poller] keeps a local snapshot of the shared clipboard fresh, [Router]
// turns local paste events into clipboard pushes, [Loader] materializes
// binary payloads for display, and [Exporter] downloads the whole
// clipboard to disk. Workers emit updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"time"

	"github.com/weicopy/cli/internal/models"
)

// Snapshot is one settled view of the shared clipboard. Seq increases with
// every applied fetch; a snapshot with a lower Seq than the current one is
// stale and was discarded.
type Snapshot struct {
	Seq       uint64
	Items     []models.ClipboardItem
	FetchedAt time.Time
}

// SnapshotStore receives each settled snapshot for local persistence.
// Implemented by the sqlite cache; a nil store disables write-through.
type SnapshotStore interface {
	ReplaceAll(items []models.ClipboardItem) error
}
