package ui

import (
	"github.com/weicopy/cli/internal/tasks"
)

// snapshotMsg carries a settled poll result into the update loop.
type snapshotMsg struct {
	snap tasks.Snapshot
}

// pastedTextMsg carries local clipboard text destined for the compose box.
type pastedTextMsg struct {
	text string
}

// actionDoneMsg reports the outcome of a push, delete or upload.
type actionDoneMsg struct {
	notice string
	err    error
}

// payloadLoadedMsg reports a materialized binary payload.
type payloadLoadedMsg struct {
	path string
	err  error
}

// noticeExpiredMsg clears the transient status line.
type noticeExpiredMsg struct{}
