// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI shows the shared clipboard as a tabbed list (All, Text, Image,
// File) that refreshes itself through the polling scheduler. A compose box
// pushes text snippets; ctrl+v captures the local clipboard, dropping text
// into the compose box and uploading images directly.
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Snapshots flow in through the poller's update channel, re-armed after
// every receive so the list stays live without blocking the UI loop.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, r, d, o,
// q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
