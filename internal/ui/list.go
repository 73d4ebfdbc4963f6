package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/weicopy/cli/internal/models"
)

var _ list.Item = clipItem{}

// clipItem wraps [models.ClipboardItem] to implement [list.Item].
type clipItem struct {
	item models.ClipboardItem
}

func (i clipItem) FilterValue() string { return i.item.DisplayName() }
func (i clipItem) Title() string       { return i.item.DisplayName() }
func (i clipItem) Description() string {
	return fmt.Sprintf("%s • %s", i.item.Type, i.item.CreatedAt.Local().Format("Jan 2 15:04"))
}
