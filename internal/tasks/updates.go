package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running
// operation, sent to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchItems Phase = iota
	DownloadItem
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchItems:
		return "fetch_items"
	case DownloadItem:
		return "download_item"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingItemsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    1,
		Total:   1,
		Message: "Fetching clipboard items...",
	}
}

func downloadCompletedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func downloadFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
